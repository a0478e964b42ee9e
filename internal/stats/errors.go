package stats

import "errors"

// Correlation errors. All but ErrLengthMismatch describe valid data that cannot be analyzed and
// are distinct from malformed input reported by the dataset loader.
var (
	ErrInsufficientData = errors.New("insufficient data: at least two points are required")
	ErrZeroVariance     = errors.New("degenerate input: series has zero variance")
	ErrLengthMismatch   = errors.New("series lengths differ")
	ErrNonFinite        = errors.New("degenerate input: value is not finite")
)
