package combination

import "errors"

// =============================================================================
// ERROR KINDS
// =============================================================================
// Validation runs in a fixed order and the first violation wins:
//   target -> invoice list -> invoice entries -> size bounds -> required ids

var (
	// ErrInvalidTarget: target missing or not greater than zero.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrInvalidInvoiceList: invoice list missing or empty.
	ErrInvalidInvoiceList = errors.New("invalid invoice list")

	// ErrInvalidInvoiceEntry: an entry with a blank id or a missing or
	// non-positive amount.
	ErrInvalidInvoiceEntry = errors.New("invalid invoice entry")

	// ErrInvalidSizeBound: minimum or maximum not positive, or maximum below
	// minimum.
	ErrInvalidSizeBound = errors.New("invalid size bound")

	// ErrMissingRequiredID: a required id that is not in the invoice list.
	ErrMissingRequiredID = errors.New("missing required invoice id")
)

// ValidationError carries one of the sentinel kinds above together with the
// message shown to the caller.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match the sentinel kind.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func reject(kind error, message string) error {
	return &ValidationError{Kind: kind, Message: message}
}

// IsValidationError reports whether err is a rejection produced by this
// package (as opposed to, say, a deadline from FindContext).
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
