package compact

import "errors"

// ErrInvariant indicates that the directory broke an ordering or bounds invariant
// while being compacted. The heap must be considered corrupt.
var ErrInvariant = errors.New("compact: directory invariant violated")
