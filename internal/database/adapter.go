package database

import "context"

// Adapter stores string keyed blobs in namespaces of a local database.
type Adapter interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	// EnsureNamespace creates the namespace and its version record when
	// missing. It fails if the stored version is newer than version.
	EnsureNamespace(ctx context.Context, namespace string, version int) error

	// Get returns found=false when nothing is stored under key.
	Get(ctx context.Context, namespace, key string) (value []byte, found bool, err error)
	// Put stores value under key in a single write transaction.
	Put(ctx context.Context, namespace, key string, value []byte) error
}
