package contracts

import "errors"

// Error taxonomy shared by every layer.
// Wrap with fmt.Errorf("%w: ...") and test with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrInsufficientData = errors.New("insufficient data")
	ErrModelFit         = errors.New("model fit failed")
	ErrValidation       = errors.New("validation failed")
	ErrInternal         = errors.New("internal error")
)
