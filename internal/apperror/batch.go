package apperror

import (
	"errors"
	"fmt"
)

// ItemError records why one item of a batch failed.
type ItemError struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewItemError describes err for the batch item id.
func NewItemError(id string, err error) ItemError {
	item := ItemError{ID: id, Code: CodeInternalError, Message: err.Error()}
	var appErr *AppError
	if errors.As(err, &appErr) {
		item.Code = appErr.Code
		item.Message = appErr.Message
	}
	return item
}

// PartialBatchFailure is returned when some items of a batch failed. The
// remaining items were still processed.
type PartialBatchFailure struct {
	Succeeded int
	Failed    []ItemError
}

func (e *PartialBatchFailure) Error() string {
	return fmt.Sprintf("%d of %d items failed", len(e.Failed), e.Succeeded+len(e.Failed))
}
