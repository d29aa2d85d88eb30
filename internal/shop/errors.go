package shop

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrAdminNotFound   = errors.New("admin not found")

	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidFile       = errors.New("invalid file")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUploadFailed      = errors.New("upload failed")
)

// Validationf membungkus ErrValidation dengan detail supaya handler tetap
// bisa errors.Is ke kategori 400.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func InvalidFilef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidFile}, args...)...)
}
