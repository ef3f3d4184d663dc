package dbclient

import (
	"context"
	"fmt"
	"time"

	"easyupdate-go/configs/config"
	"easyupdate-go/internal/cstmerr"
	"easyupdate-go/internal/logging"
)

var log = logging.L("dbclient")

const connectTimeout = 10 * time.Second

// QueryOptions carries the common query modifiers.
type QueryOptions struct {
	Limit  int
	Offset int
	Order  string // e.g., "createdAt desc"
}

// DBClient defines the interface for ORM-like database operations.
type DBClient interface {
	Connect(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Create inserts a new record. 'model' is a pointer to the struct to be created.
	Create(ctx context.Context, model any) error

	// Find retrieves a collection of models matching the given conditions.
	// 'collection' is a pointer to a slice of structs; opts may be nil.
	// 'conditions' can be a struct to build WHERE conditions, or query string + args.
	Find(ctx context.Context, collection any, opts *QueryOptions, conditions ...any) error

	// Delete removes the records of model's table matching conditions and
	// reports how many rows went away.
	Delete(ctx context.Context, model any, conditions ...any) (int64, error)
}

// NewDBClient returns a connected DBClient of the given type.
func NewDBClient(dbConfig *config.DatabaseConfig, dbType string) (DBClient, error) {
	if dbConfig == nil {
		return nil, cstmerr.NewConfigError("database configuration is nil", nil)
	}

	var adapter DBClient
	switch dbType {
	case "gorm":
		adapter = NewGORMAdapter(dbConfig)
	default:
		return nil, cstmerr.NewDBConnectionError(fmt.Sprintf("failed to find db type %s", dbType), nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := adapter.Connect(ctx); err != nil {
		return nil, cstmerr.NewDBConnectionError("failed to connect history store", err)
	}
	return adapter, nil
}
