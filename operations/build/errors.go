package build

import (
	"errors"
)

// ErrUnsupportedGranularity is returned when a unit's kind has no
// manifest rule for the requested granularity.
var ErrUnsupportedGranularity = errors.New("Unsupported granularity")

// ErrEmptyScanSet is returned when a unit's resolved scan list is
// empty. Callers may treat this as fatal or omit the unit, per policy.
var ErrEmptyScanSet = errors.New("Empty scan set")

// ErrGroupingKindMismatch is returned when a collection member's type
// does not match the declared grouping kind.
var ErrGroupingKindMismatch = errors.New("Grouping kind mismatch")
