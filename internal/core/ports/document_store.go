package ports

import (
	"context"

	"github.com/foundly/admin-backend/internal/core/domain"
)

// DocumentStore is the generic pass-through CRUD surface over named
// collections. Callers resolve collection names through
// domain.Environment.Collection before every call; the store itself is
// environment-agnostic. Failures are logged with collection/document
// context and rethrown.
type DocumentStore interface {
	// Get returns the document, or nil (no error) when it does not exist.
	Get(ctx context.Context, collection, id string) (domain.Document, error)
	GetAll(ctx context.Context, collection string) ([]domain.Document, error)
	// Query runs a single field/operator/value predicate. Supported
	// operators: ==, !=, <, <=, >, >=, in, array-contains.
	Query(ctx context.Context, collection, field, operator string, value any) ([]domain.Document, error)
	// GetPage returns up to limit documents after the opaque cursor
	// returned by the previous page, plus the next cursor, "" when the
	// collection is exhausted.
	GetPage(ctx context.Context, collection string, limit int64, startAfter string) ([]domain.Document, string, error)
	// Set upserts a document; with merge, existing fields not present in
	// data are preserved, otherwise the document is replaced wholesale.
	Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error
	// Add inserts a document under a generated id and returns the id.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	Delete(ctx context.Context, collection, id string) error
}
