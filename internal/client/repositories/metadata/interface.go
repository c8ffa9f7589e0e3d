// Package metadata is the client's durable key/value store. It backs the
// session snapshot slot and the at-rest sealing salt.
package metadata

import (
	"context"
)

// Repository is a string-keyed blob store. Get reports found=false for an
// absent key; a present key may hold an empty value.
type Repository interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
