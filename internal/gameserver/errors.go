package gameserver

import (
	"errors"
	"fmt"
)

// ErrSecurityViolation matches every *SecurityViolation via errors.Is.
var ErrSecurityViolation = errors.New("security violation")

// SecurityViolation reports a client acting on something it does not own.
// It is fatal to the connection and never retried.
type SecurityViolation struct {
	Account  string
	EntityID int64
	Reason   string
}

func (e *SecurityViolation) Error() string {
	return fmt.Sprintf("security violation: %s (account %q, entity 0x%016X)", e.Reason, e.Account, e.EntityID)
}

// Is makes errors.Is(err, ErrSecurityViolation) hold.
func (e *SecurityViolation) Is(target error) bool {
	return target == ErrSecurityViolation
}
