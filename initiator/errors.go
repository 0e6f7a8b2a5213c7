package initiator

import "github.com/go-errors/errors"

// Sentinel invariant-violation errors, following
// htlcswitch/switch_control.go's flat `var (Err... = errors.New(...))`
// block. These are never returned to a caller — assert/assertf panic with
// one when the invariant it names doesn't hold (spec.md §7: programmer
// errors abort loudly, not as ordinary error values).
var (
	// ErrCancelAfterReveal fires when code tries to cancel a route whose
	// secret has already been revealed, or that has already terminated
	// (spec.md §4.4, invariant 4).
	ErrCancelAfterReveal = errors.New("cannot cancel a route after the secret is revealed")

	// ErrAttemptOwnershipMismatch fires when a RouteAttempt's
	// Transfer.SecretHash doesn't match the key it's stored under in
	// PaymentOrchestratorState.InitiatorTransfers (spec.md §8.1
	// invariant 1).
	ErrAttemptOwnershipMismatch = errors.New("route attempt's secrethash does not match its map key")
)

// assert panics with err if cond is false.
func assert(cond bool, err error) {
	if !cond {
		panic(err)
	}
}

// assertf panics with a formatted, stack-capturing error if cond is
// false, for invariant violations that don't have a named sentinel.
func assertf(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(errors.Errorf(format, args...))
	}
}
