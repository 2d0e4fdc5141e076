package mirror

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Pull when the remote holds no value for a key.
var ErrNotFound = errors.New("mirror: key not found")

// Port is a remote copy of the local collections. Implementations must be
// safe for concurrent use. Pushes come from background goroutines, one at
// a time per key and in write order.
type Port interface {
	Pull(ctx context.Context, key string) ([]byte, error)
	Push(ctx context.Context, key string, data []byte) error
}

// Nop is a Port that stores nothing.
type Nop struct{}

func (Nop) Pull(context.Context, string) ([]byte, error) { return nil, ErrNotFound }
func (Nop) Push(context.Context, string, []byte) error    { return nil }

// Fanout pushes to every port and pulls from the first one that has the key.
type Fanout []Port

func (f Fanout) Pull(ctx context.Context, key string) ([]byte, error) {
	var errs []error
	for _, p := range f {
		data, err := p.Pull(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, ErrNotFound
}

func (f Fanout) Push(ctx context.Context, key string, data []byte) error {
	var errs []error
	for i, p := range f {
		if err := p.Push(ctx, key, data); err != nil {
			errs = append(errs, fmt.Errorf("mirror %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
