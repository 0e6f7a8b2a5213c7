package initiator

import (
	"github.com/hashlock/initiator/channel"
	"github.com/hashlock/initiator/secret"
)

// TransferDescription is the immutable intent behind a payment (a.k.a. the
// original's TransferDescriptionWithSecretState). Per SPEC_FULL.md §4.2,
// ActionInitInitiator always carries a description with a secret already
// attached — the caller chooses the secret before init, matching the
// original's split between a secret-less and a secret-bearing variant,
// collapsed here into one struct with Secret as the optional field.
type TransferDescription struct {
	PaymentNetworkID uint64
	TokenNetworkID   uint64
	PaymentID        uint64
	Amount           uint64
	Initiator        [20]byte
	Target           [20]byte
	Secret           secret.Secret
}

// SecretHash returns H(Description.Secret). Invariant: whenever Secret is
// non-zero, every RouteAttempt's transfer keyed to it must hash to the
// same value (spec.md §3.1).
func (d TransferDescription) SecretHash() secret.Hash {
	return secret.Of(d.Secret)
}

// Route is one hop in an ordered path from initiator to target: just the
// channel to send over, since mediator/target-side routing is out of
// scope for this module (spec.md §1 Non-goals).
type Route struct {
	Channel ChannelID
}

// ChannelID aliases channel.ID so callers of this package don't need to
// import channel just to build a Route.
type ChannelID = channel.ID

// Status enumerates a RouteAttempt's forward-only lifecycle. Ordering
// mirrors channeldb/htlcswitch's payment-status enums
// (StatusGrounded/StatusInFlight/StatusCompleted) adapted to the finer-
// grained states spec.md §3.1 calls out.
type Status int

const (
	// StatusPending: a locked transfer has been sent, awaiting the next
	// hop's secret request.
	StatusPending Status = iota
	// StatusSecretRequested: the next hop asked for the secret.
	StatusSecretRequested
	// StatusSecretRevealed: the secret has been disclosed to us; the
	// attempt can no longer be cancelled.
	StatusSecretRevealed
	// StatusFinalized: the attempt unlocked and the payment settled.
	StatusFinalized
	// StatusCancelled: the attempt was abandoned pre-reveal.
	StatusCancelled
	// StatusExpired: the lock on this attempt expired.
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSecretRequested:
		return "secret_requested"
	case StatusSecretRevealed:
		return "secret_revealed"
	case StatusFinalized:
		return "finalized"
	case StatusCancelled:
		return "cancelled"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// terminal reports whether Status ends the attempt's lifecycle.
func (s Status) terminal() bool {
	switch s {
	case StatusFinalized, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// Transfer is the locked transfer actually sent for a RouteAttempt: the
// concrete amount, expiration, secrethash and recipient committed to the
// chosen channel.
type Transfer struct {
	Channel    ChannelID
	Amount     uint64
	Expiration uint64
	SecretHash secret.Hash
	Recipient  [20]byte
	Identifier uint64
}

// RevealSecret records the secret-reveal message received from the next
// hop, the event that obligates us to unlock.
type RevealSecret struct {
	Secret secret.Secret
}

// RouteAttempt is a.k.a. InitiatorTransferState in spec.md §3.1: one try
// on one route. Created when a route is selected and a locked transfer is
// emitted; transitions forward-only through Status; destroyed when its
// Status is terminal and the owning payment decides to retire it.
type RouteAttempt struct {
	TransferDescription   TransferDescription
	Channel               ChannelID
	Transfer              Transfer
	RevealSecret          *RevealSecret
	ReceivedSecretRequest bool
	Status                Status
}

// CanCancel reports whether this attempt is cancellable: only until the
// secret is revealed and only while it hasn't already terminated (spec.md
// §4.4). A nil attempt is vacuously cancellable, matching the original's
// `initiator is None or ...`.
func CanCancel(a *RouteAttempt) bool {
	return a == nil || (a.RevealSecret == nil && !a.Status.terminal())
}

// PaymentOrchestratorState is a.k.a. InitiatorPaymentState in spec.md
// §3.1: the top-level per-payment state. Created on ActionInitInitiator
// when the first route is selected; retired (set back to nil by the
// caller) once InitiatorTransfers becomes empty.
type PaymentOrchestratorState struct {
	// InitiatorTransfers maps secrethash -> RouteAttempt. Keys are
	// unique; invariant: every key equals its attempt's
	// Transfer.SecretHash (spec.md §8.1 invariant 1).
	InitiatorTransfers map[secret.Hash]*RouteAttempt

	// CancelledChannels is the ordered sequence of channels already
	// tried and abandoned for this payment, consulted by
	// TryNewRoute to exclude re-selection (spec.md §9 open
	// question, resolved: the core only appends, TryNewRoute consumes).
	CancelledChannels []ChannelID
}

// clone returns a shallow copy of state suitable for functional updates:
// a new top-level map and slice, sharing *RouteAttempt pointers with the
// original (handlers that mutate an attempt must replace its pointer, not
// mutate through it, to preserve determinism under replay).
func (s *PaymentOrchestratorState) clone() *PaymentOrchestratorState {
	if s == nil {
		return nil
	}
	next := &PaymentOrchestratorState{
		InitiatorTransfers: make(map[secret.Hash]*RouteAttempt, len(s.InitiatorTransfers)),
		CancelledChannels:  append([]ChannelID(nil), s.CancelledChannels...),
	}
	for k, v := range s.InitiatorTransfers {
		next.InitiatorTransfers[k] = v
	}
	return next
}
