package service

import "context"

// DocumentStore persists whole documents by key. Both the postgres and the
// file repositories satisfy it.
type DocumentStore interface {
	Load(ctx context.Context, key string, dest any) (bool, error)
	Save(ctx context.Context, key string, value any) error
}
