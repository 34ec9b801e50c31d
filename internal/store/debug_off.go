//go:build !pomdebug

package store

import (
	"context"
	"errors"
)

// DropAllRows is gated behind the pomdebug build tag and refuses to run in
// production builds.
func (s *Store) DropAllRows(ctx context.Context) error {
	return errors.New("drop all rows: disabled in production builds")
}
