package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ledger core. Callers branch with errors.Is.
var (
	ErrUnbalancedEntries       = errors.New("transaction entries do not balance")
	ErrClosingNotBalanced      = errors.New("closing entries do not balance")
	ErrDuplicateDocumentNumber = errors.New("document number already used for tenant")
	ErrAccountNotFound         = errors.New("account not found")
	ErrAccountExists           = errors.New("account code already exists for tenant")
	ErrAccountInUse            = errors.New("account has ledger entries")
	ErrAccountProtected        = errors.New("core account may not be deleted")
	ErrAssetNotFound           = errors.New("asset not found")
	ErrAssetExists             = errors.New("asset key already exists for tenant")
	ErrTransactionNotFound     = errors.New("transaction not found")
)

// ValidationError reports bad caller input (non-positive amount, missing
// required field). It is surfaced to the caller and never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validationf builds a ValidationError for a field.
func Validationf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
