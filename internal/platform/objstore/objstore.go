// Package objstore is the blob contract the card collections are stored
// behind: one named object per collection, read and replaced whole.
package objstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound means the object has never been written.
var ErrNotFound = errors.New("object not found")

type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
)

type AccessErrorKind string

const (
	AccessErrorCredentials AccessErrorKind = "credentials"
	AccessErrorPermission  AccessErrorKind = "permission"
	AccessErrorBucket      AccessErrorKind = "bucket"
	AccessErrorEndpoint    AccessErrorKind = "endpoint"
	AccessErrorUnknown     AccessErrorKind = "unknown"
)

// AccessError is a classified backend failure.
type AccessError struct {
	Kind    AccessErrorKind
	Op      Op
	Backend string
	Key     string
	Err     error
}

func (e *AccessError) Error() string {
	if e == nil {
		return "object store access failed"
	}
	return fmt.Sprintf("%s %s %q failed (%s): %v", e.Backend, e.Op, e.Key, e.Kind, e.Err)
}

func (e *AccessError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// AsAccessError wraps err unless it already carries a classification.
func AsAccessError(backend string, op Op, key string, kind AccessErrorKind, err error) error {
	if err == nil {
		return nil
	}
	var ae *AccessError
	if errors.As(err, &ae) {
		return err
	}
	return &AccessError{Kind: kind, Op: op, Backend: backend, Key: key, Err: err}
}
