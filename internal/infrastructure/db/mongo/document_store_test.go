package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCursorRoundTrip_ObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	token := cursorToken(oid)
	if token == oid.Hex() {
		t.Fatalf("ObjectID cursor must be distinguishable from a string id")
	}

	value := cursorValue(token)
	got, ok := value.(primitive.ObjectID)
	if !ok {
		t.Fatalf("expected typed ObjectID for range filter, got %T", value)
	}
	if got != oid {
		t.Fatalf("cursor round trip changed the id: %s != %s", got.Hex(), oid.Hex())
	}
}

func TestCursorRoundTrip_StringID(t *testing.T) {
	// Generated documents carry 24-hex string _ids; the cursor must keep
	// them as strings, not promote them to ObjectIDs.
	id := primitive.NewObjectID().Hex()

	token := cursorToken(id)
	if token != id {
		t.Fatalf("string id cursor changed: %q != %q", token, id)
	}
	if _, isString := cursorValue(token).(string); !isString {
		t.Fatalf("expected string id to stay a string, got %T", cursorValue(token))
	}
}

func TestCursorValue_PlainToken(t *testing.T) {
	if v := cursorValue("user-42"); v != "user-42" {
		t.Fatalf("expected plain token passthrough, got %v", v)
	}
}

func TestIDFilter(t *testing.T) {
	hex := primitive.NewObjectID().Hex()
	filter := idFilter(hex)
	in, ok := filter["_id"].(bson.M)
	if !ok {
		t.Fatalf("expected $in filter for hex id, got %v", filter)
	}
	values, ok := in["$in"].(bson.A)
	if !ok || len(values) != 2 {
		t.Fatalf("expected both string and ObjectID candidates, got %v", in)
	}

	plain := idFilter("average_rewards")
	if plain["_id"] != "average_rewards" {
		t.Fatalf("expected direct match for non-hex id, got %v", plain)
	}
}

func TestToDocument_Normalization(t *testing.T) {
	oid := primitive.NewObjectID()
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	doc := toDocument(bson.M{
		"_id":       oid,
		"createdAt": primitive.DateTime(ts.UnixMilli()),
		"timestamp": int64(1717243200000),
		"owner":     oid,
		"tags":      primitive.A{"a", "b"},
		"nested":    bson.M{"inner": primitive.DateTime(ts.UnixMilli())},
	})

	if doc.ID() != oid.Hex() {
		t.Fatalf("expected hex id, got %q", doc.ID())
	}
	if _, isTime := doc["createdAt"].(time.Time); !isTime {
		t.Fatalf("expected native timestamp conversion, got %T", doc["createdAt"])
	}
	if doc["timestamp"] != int64(1717243200000) {
		t.Fatalf("raw millis must pass through untouched, got %v", doc["timestamp"])
	}
	if doc["owner"] != oid.Hex() {
		t.Fatalf("expected nested ObjectID as hex, got %v", doc["owner"])
	}
	nested, ok := doc["nested"].(map[string]any)
	if !ok {
		t.Fatalf("expected plain map for nested document, got %T", doc["nested"])
	}
	if _, isTime := nested["inner"].(time.Time); !isTime {
		t.Fatalf("expected nested timestamp conversion, got %T", nested["inner"])
	}
}
