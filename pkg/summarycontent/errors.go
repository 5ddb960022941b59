package summarycontent

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrNoMatchingConfiguration indicates a row no configuration claims
	ErrNoMatchingConfiguration = errors.New("no matching configuration found")

	// ErrAmbiguousConfiguration indicates a row claimed by more than one configuration
	ErrAmbiguousConfiguration = errors.New("more than one configuration claims row")

	// ErrInvalidSortColumn indicates a sort column not shared by every content type
	ErrInvalidSortColumn = errors.New("invalid sort column")

	// ErrInvalidSortDirection indicates a sort direction other than ASC or DESC
	ErrInvalidSortDirection = errors.New("invalid sort direction")

	// ErrInvalidPagination indicates a page or page size below 1
	ErrInvalidPagination = errors.New("invalid pagination")

	// ErrInvalidConfiguration indicates a registry or aggregator set up incorrectly
	ErrInvalidConfiguration = errors.New("invalid content configuration")
)

// RowError represents a failure to convert one summary row
type RowError struct {
	UUID        uuid.UUID
	ContentType ContentType
	Op          string
	Err         error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row operation %s failed for content row with uuid %s (type %s): %v", e.Op, e.UUID, e.ContentType, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// IsBadRequest reports whether err was caused by caller input rather than by
// storage or a defect.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrInvalidSortColumn) ||
		errors.Is(err, ErrInvalidSortDirection) ||
		errors.Is(err, ErrInvalidPagination)
}
