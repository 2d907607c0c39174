package econometrics

import "errors"

var (
	ErrDatasetNotFound  = errors.New("dataset not found")
	ErrDatasetExists    = errors.New("dataset already exists")
	ErrColumnNotFound   = errors.New("column not found")
	ErrInsufficientData = errors.New("insufficient observations")
	ErrSingularMatrix   = errors.New("design matrix is singular")
	ErrModelNotFitted   = errors.New("no fitted model of this type")
	ErrNotPanel         = errors.New("dataset has no entity/time index")
	ErrLengthMismatch   = errors.New("columns differ in length")
	ErrUnsupported      = errors.New("unsupported option")
)
