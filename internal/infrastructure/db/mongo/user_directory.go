package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/foundly/admin-backend/internal/core/domain"
	"github.com/foundly/admin-backend/internal/core/ports"
)

const collAppUsers = "AppUsers"

// UserDirectory lists the platform's end users from the synchronized
// AppUsers collection. Paging is cursor-based: the opaque token from the
// previous page is passed forward until exhaustion.
type UserDirectory struct {
	db  *mongo.Database
	log zerolog.Logger
}

func NewUserDirectory(db *mongo.Database, log zerolog.Logger) *UserDirectory {
	return &UserDirectory{db: db, log: log}
}

func (d *UserDirectory) ListUsers(ctx context.Context, env domain.Environment, pageSize int, pageToken string) ([]ports.DirectoryUser, string, error) {
	if pageSize <= 0 {
		pageSize = 1000
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	collection := env.Collection(collAppUsers)
	filter := bson.M{}
	if pageToken != "" {
		filter["_id"] = bson.M{"$gt": cursorValue(pageToken)}
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(pageSize))

	cur, err := d.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		d.log.Error().Err(err).Str("collection", collection).Msg("list users failed")
		return nil, "", fmt.Errorf("list users %s: %w", collection, err)
	}

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		d.log.Error().Err(err).Str("collection", collection).Msg("list users drain failed")
		return nil, "", fmt.Errorf("list users %s: %w", collection, err)
	}

	users := make([]ports.DirectoryUser, 0, len(raw))
	for _, r := range raw {
		doc := toDocument(r)
		var createdAt time.Time
		if ms, ok := doc.Millis("createdAt"); ok {
			createdAt = time.UnixMilli(ms).UTC()
		}
		users = append(users, ports.DirectoryUser{
			UID:       doc.ID(),
			Email:     doc.Text("email"),
			CreatedAt: createdAt,
		})
	}

	next := ""
	if len(raw) == pageSize {
		next = cursorToken(raw[len(raw)-1]["_id"])
	}
	return users, next, nil
}

var _ ports.UserDirectory = (*UserDirectory)(nil)
