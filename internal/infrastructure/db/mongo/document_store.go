package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foundly/admin-backend/internal/core/domain"
	"github.com/foundly/admin-backend/internal/core/ports"
)

// queryOperators maps the store-facing operator set onto mongo operators.
// array-contains relies on mongo's implicit array-element matching.
var queryOperators = map[string]string{
	"==":             "$eq",
	"!=":             "$ne",
	"<":              "$lt",
	"<=":             "$lte",
	">":              "$gt",
	">=":             "$gte",
	"in":             "$in",
	"array-contains": "$eq",
}

// DocumentStore implements ports.DocumentStore over named mongo
// collections. Documents are opaque; ids are strings (hex object ids for
// generated documents). Errors are logged with collection/document context
// and rethrown.
type DocumentStore struct {
	db  *mongo.Database
	log zerolog.Logger
}

func NewDocumentStore(db *mongo.Database, log zerolog.Logger) *DocumentStore {
	return &DocumentStore{db: db, log: log}
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, idFilter(id)).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		s.log.Error().Err(err).Str("collection", collection).Str("document_id", id).Msg("get document failed")
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return toDocument(raw), nil
}

func (s *DocumentStore) GetAll(ctx context.Context, collection string) ([]domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := s.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		s.log.Error().Err(err).Str("collection", collection).Msg("get collection failed")
		return nil, fmt.Errorf("get collection %s: %w", collection, err)
	}
	return s.drain(ctx, collection, cur)
}

func (s *DocumentStore) Query(ctx context.Context, collection, field, operator string, value any) ([]domain.Document, error) {
	op, ok := queryOperators[operator]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidOperator, operator)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := s.db.Collection(collection).Find(ctx, bson.M{field: bson.M{op: value}})
	if err != nil {
		s.log.Error().Err(err).Str("collection", collection).Str("field", field).Msg("query failed")
		return nil, fmt.Errorf("query %s.%s: %w", collection, field, err)
	}
	return s.drain(ctx, collection, cur)
}

// GetPage returns up to limit documents ordered by id, starting after the
// opaque cursor. The cursor carries the _id type of the last document, so
// string ids and legacy ObjectID ids both page correctly.
func (s *DocumentStore) GetPage(ctx context.Context, collection string, limit int64, startAfter string) ([]domain.Document, string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if startAfter != "" {
		filter["_id"] = bson.M{"$gt": cursorValue(startAfter)}
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(limit)

	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		s.log.Error().Err(err).Str("collection", collection).Msg("paginated get failed")
		return nil, "", fmt.Errorf("paginate %s: %w", collection, err)
	}

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		s.log.Error().Err(err).Str("collection", collection).Msg("cursor drain failed")
		return nil, "", fmt.Errorf("read %s: %w", collection, err)
	}
	docs := make([]domain.Document, 0, len(raw))
	for _, r := range raw {
		docs = append(docs, toDocument(r))
	}

	next := ""
	if n := len(raw); n > 0 && int64(n) == limit {
		next = cursorToken(raw[n-1]["_id"])
	}
	return docs, next, nil
}

func (s *DocumentStore) Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	coll := s.db.Collection(collection)
	var err error
	if merge {
		_, err = coll.UpdateOne(ctx, idFilter(id), bson.M{"$set": bson.M(data)}, options.Update().SetUpsert(true))
	} else {
		_, err = coll.ReplaceOne(ctx, idFilter(id), bson.M(data), options.Replace().SetUpsert(true))
	}
	if err != nil {
		s.log.Error().Err(err).Str("collection", collection).Str("document_id", id).Msg("set document failed")
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DocumentStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id := primitive.NewObjectID().Hex()
	doc := bson.M{"_id": id}
	for k, v := range data {
		doc[k] = v
	}

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		s.log.Error().Err(err).Str("collection", collection).Msg("add document failed")
		return "", fmt.Errorf("add to %s: %w", collection, err)
	}
	return id, nil
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.db.Collection(collection).DeleteOne(ctx, idFilter(id)); err != nil {
		s.log.Error().Err(err).Str("collection", collection).Str("document_id", id).Msg("delete document failed")
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DocumentStore) drain(ctx context.Context, collection string, cur *mongo.Cursor) ([]domain.Document, error) {
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		s.log.Error().Err(err).Str("collection", collection).Msg("cursor drain failed")
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	docs := make([]domain.Document, 0, len(raw))
	for _, r := range raw {
		docs = append(docs, toDocument(r))
	}
	return docs, nil
}

// idFilter matches both string ids and legacy ObjectID ids for the same
// hex value.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

// oidCursorPrefix tags page cursors whose underlying _id is a typed
// ObjectID. A bare hex string is ambiguous: documents written by Add carry
// string hex _ids, legacy documents carry ObjectIDs, and the two compare
// differently in a $gt range.
const oidCursorPrefix = "oid:"

// cursorToken encodes a raw _id as an opaque page cursor.
func cursorToken(v any) string {
	switch t := v.(type) {
	case primitive.ObjectID:
		return oidCursorPrefix + t.Hex()
	case string:
		return t
	}
	return fmt.Sprintf("%v", v)
}

// cursorValue decodes a page cursor back into the typed _id for the range
// filter.
func cursorValue(token string) any {
	if rest, ok := strings.CutPrefix(token, oidCursorPrefix); ok {
		if oid, err := primitive.ObjectIDFromHex(rest); err == nil {
			return oid
		}
	}
	return token
}

// toDocument converts a decoded bson document into the driver-free
// domain.Document shape: object ids become hex strings, native timestamps
// become time.Time, nested bson containers become plain maps and slices.
// Raw epoch-millis numbers pass through untouched; the domain normalizes
// both shapes at the point of comparison.
func toDocument(raw bson.M) domain.Document {
	doc := make(domain.Document, len(raw)+1)
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		doc[k] = normalizeValue(v)
	}
	doc["id"] = idString(raw["_id"])
	return doc
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case primitive.ObjectID:
		return t.Hex()
	}
	return fmt.Sprintf("%v", v)
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeValue(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	}
	return v
}

var _ ports.DocumentStore = (*DocumentStore)(nil)
