package initiator

import (
	"github.com/hashlock/initiator/channel"
	"github.com/hashlock/initiator/secret"
)

// Event is the closed tagged union of inputs this module's Transition
// accepts. Every concrete event type below implements the unexported
// marker method so the set is closed to this package's definitions,
// turning the original's runtime type dispatch into a compile-time
// enumerable switch (spec.md §9's "single most important re-architecture").
//
// Shape grounded on the Go port of Raiden's own state changes
// (other_examples' transfer/mediatedtransfer/statechange.go.go): one
// struct per variant, field names lifted from spec.md's data model.
type Event interface {
	isInitiatorEvent()
}

// Block announces a new chain tip height. Dispatched to every route
// attempt.
type Block struct {
	BlockNumber uint64
}

func (Block) isInitiatorEvent() {}

// ActionInitInitiator starts a new payment: select a route, lock funds on
// the first hop.
type ActionInitInitiator struct {
	Description TransferDescription
	Routes      []Route
}

func (ActionInitInitiator) isInitiatorEvent() {}

// ReceiveSecretRequest is a SecretRequest message received from the next
// hop, requesting disclosure of the secret.
type ReceiveSecretRequest struct {
	SecretHash secret.Hash
	Amount     uint64
	Sender     [20]byte
}

func (ReceiveSecretRequest) isInitiatorEvent() {}

// ReceiveTransferRefundCancelRoute is a refund from a mediator proving it
// could not forward the transfer, carrying a fresh secret to retry under.
type ReceiveTransferRefundCancelRoute struct {
	Transfer channel.RefundTransfer
	Routes   []Route
	Secret   secret.Secret
}

func (ReceiveTransferRefundCancelRoute) isInitiatorEvent() {}

// ActionCancelPayment is a user request to abandon the payment entirely.
type ActionCancelPayment struct{}

func (ActionCancelPayment) isInitiatorEvent() {}

// ReceiveSecretReveal is an off-chain RevealSecret message from the next
// hop.
type ReceiveSecretReveal struct {
	SecretHash secret.Hash
	Secret     secret.Secret
	Sender     [20]byte
}

func (ReceiveSecretReveal) isInitiatorEvent() {}

// ReceiveLockExpired is notice that the lock on a channel has expired
// on-chain or by timeout.
type ReceiveLockExpired struct {
	SecretHash secret.Hash
}

func (ReceiveLockExpired) isInitiatorEvent() {}

// ContractReceiveSecretReveal is a secret learned from an on-chain event
// rather than a peer message.
type ContractReceiveSecretReveal struct {
	SecretHash  secret.Hash
	Secret      secret.Secret
	BlockNumber uint64
}

func (ContractReceiveSecretReveal) isInitiatorEvent() {}
