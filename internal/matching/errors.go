package matching

import (
	"errors"
	"fmt"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrInvalidJobOffer  = errors.New("invalid job offer")
	ErrInvalidProfileID = errors.New("invalid profile id")
)

// DataLoadError wraps a storage failure with the profile being loaded and the
// lookup that failed.
type DataLoadError struct {
	ProfileID int64
	Op        string
	Err       error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("loading %s for profile %d: %v", e.Op, e.ProfileID, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}
