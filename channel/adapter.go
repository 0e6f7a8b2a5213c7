// Package channel defines the boundary between the initiator's payment
// orchestrator and the channel-level state machine. The real channel
// collaborator — the component that validates transfers, tracks balances,
// and produces on-wire messages — lives outside this module. This package
// only pins down its contract, plus an in-memory reference implementation
// used by tests and the demo driver.
package channel

import "github.com/hashlock/initiator/secret"

// ID identifies a channel between this node and a direct peer.
type ID uint64

// Lock describes a single hash-timelocked commitment outstanding on a
// channel.
type Lock struct {
	SecretHash secret.Hash
	Amount     uint64
	Expiration uint64
}

// LockedTransfer is the off-chain message committing Amount tokens behind
// a Lock until Lock.Expiration.
type LockedTransfer struct {
	Channel    ID
	Recipient  [20]byte
	Lock       Lock
	Identifier uint64
}

// RefundTransfer is a counter-transfer from a mediator carrying the
// originally received lock, signaling an inability to forward.
type RefundTransfer struct {
	Channel ID
	Lock    Lock
}

// Effect is produced by the channel collaborator when it processes a
// command. The orchestrator treats these as opaque values to be forwarded
// to the host; it never inspects or interprets them itself.
type Effect interface {
	isChannelEffect()
}

// Adapter is the pure query/command facade the orchestrator uses to
// interact with the channel collaborator. Every method is side-effect
// free from the orchestrator's point of view: mutation happens inside the
// adapter's own implementation, the orchestrator only observes results.
type Adapter interface {
	// CanSend reports whether the channel identified by id currently has
	// enough capacity to send amount.
	CanSend(id ID, amount uint64) bool

	// SendLockedTransfer emits a new locked transfer on the given
	// channel, returning the transfer actually sent plus any effects the
	// channel collaborator produced while doing so.
	SendLockedTransfer(id ID, recipient [20]byte, lockHash secret.Hash,
		amount uint64, expiration uint64) (LockedTransfer, []Effect, bool)

	// RefundTransferMatchesReceived performs structural validation of a
	// refund against the transfer it is meant to refund.
	RefundTransferMatchesReceived(refund RefundTransfer, original LockedTransfer) bool

	// HandleReceiveRefundTransferCancelRoute applies a refund to the
	// channel state, returning whether it was accepted along with any
	// effects produced.
	HandleReceiveRefundTransferCancelRoute(id ID, refund RefundTransfer) (valid bool, effects []Effect)

	// HandleReceiveLockExpired applies a lock expiry notification to the
	// channel state.
	HandleReceiveLockExpired(id ID, secretHash secret.Hash, blockNumber uint64) []Effect

	// GetLock queries the partner's outstanding locks for secretHash on
	// the given channel. The second return value is false if no such
	// lock exists.
	GetLock(id ID, secretHash secret.Hash) (Lock, bool)
}
