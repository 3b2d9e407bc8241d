package combination

import (
	"errors"
	"fmt"
)

// ErrTooManyInvoices: the list is longer than the caller's configured cap.
// Search time grows exponentially with list length, so services refuse
// oversized lists before searching.
var ErrTooManyInvoices = errors.New("too many invoices")

// CheckSize rejects lists longer than limit. A limit of zero or less
// disables the check.
func CheckSize(n, limit int) error {
	if limit > 0 && n > limit {
		return reject(ErrTooManyInvoices,
			fmt.Sprintf("Too many invoices: %d supplied, at most %d allowed.", n, limit))
	}
	return nil
}
