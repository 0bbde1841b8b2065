package archive

import (
	"context"
	"fmt"
)

// WalkFunc is invoked once per unit during a traversal. Returning an
// error stops the walk and surfaces that error to the caller.
type WalkFunc func(context.Context, *ArchivalUnit) error

// Walk traverses the hierarchy rooted at unit depth-first, preserving
// archival sort order (a unit is visited before its children, children
// in document order). The traversal holds no state between calls so it
// can be restarted, or run concurrently, at will. Aliased units in a
// malformed (cyclic) tree fail with ErrMalformedFeedEntry rather than
// recursing without end.
func Walk(ctx context.Context, unit *ArchivalUnit, cb WalkFunc) error {

	seen := make(map[*ArchivalUnit]bool)

	var walk func(ctx context.Context, u *ArchivalUnit) error

	walk = func(ctx context.Context, u *ArchivalUnit) error {

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			// pass
		}

		if seen[u] {
			return fmt.Errorf("%w: unit '%s' appears more than once in the hierarchy", ErrMalformedFeedEntry, u.Code)
		}

		seen[u] = true

		err := cb(ctx, u)

		if err != nil {
			return err
		}

		for _, c := range u.Children {

			err := walk(ctx, c)

			if err != nil {
				return err
			}
		}

		return nil
	}

	return walk(ctx, unit)
}

// WalkFiles traverses the hierarchy and invokes cb for File-level units
// only, in document order.
func WalkFiles(ctx context.Context, unit *ArchivalUnit, cb WalkFunc) error {

	return Walk(ctx, unit, func(ctx context.Context, u *ArchivalUnit) error {

		if u.Kind != File {
			return nil
		}

		return cb(ctx, u)
	})
}
