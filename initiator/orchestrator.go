// Package initiator implements the initiator-side payment orchestrator of
// a hashed-timelock payment-channel network: route selection, locking
// funds on the first hop, coordinating secret revelation, and handling
// cancellations, refunds, and lock expiries.
//
// The core is a single pure function, Transition, layered over two nested
// state machines (PaymentOrchestratorState owning a set of RouteAttempts).
// It performs no I/O, owns no time or randomness source, and never raises:
// every invalid input produces either a no-op or an explicit failure
// effect, except for internal invariant violations, which panic (spec.md
// §7). Ported from raiden/transfer/mediated_transfer/initiator_manager.py,
// restructured per spec.md §9: exhaustive type switch instead of runtime
// type comparison, snapshot-then-delete instead of mutate-during-iterate,
// and (state', effects) return values instead of in-place mutation.
package initiator

import (
	"bytes"
	"sort"

	"github.com/hashlock/initiator/channel"
	"github.com/hashlock/initiator/secret"
)

// sortedSecretHashes returns the keys of m in a canonical, deterministic
// order. Go map iteration order is randomized per-process; spec.md §5's
// determinism/replay contract requires transition to produce byte-
// identical (state', effects) for identical inputs, so every place this
// package walks InitiatorTransfers sorts its keys first rather than
// relying on range order.
func sortedSecretHashes(m map[secret.Hash]*RouteAttempt) []secret.Hash {
	keys := make([]secret.Hash, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})
	return keys
}

// Context bundles the read-only collaborators a Transition call needs:
// the channel collaborator (borrowed, never mutated directly), the
// injected PRNG (must be the same instance across calls for a given
// payment, see spec.md §5), the current chain tip, the configured lock-
// expiry grace (initiatorcfg.Config.LockExpiryGrace; zero means "use
// DefaultLockExpiryBlocks"), and optional metrics.
type Context struct {
	Channels         channel.Adapter
	PRNG             PRNG
	BlockNumber      uint64
	LockExpiryBlocks uint64
	Metrics          *Metrics
}

func (c Context) metrics() *Metrics {
	if c.Metrics == nil {
		return noopMetrics()
	}
	return c.Metrics
}

// Transition is the orchestrator's single public entry point:
// transition(state, event, ctx) -> (state', effects). state may be nil
// (no payment started yet).
//
// Open question resolved per spec.md §9: a second ActionInitInitiator
// delivered while state is already present is silently ignored, matching
// the original's documented (if possibly unintentional) behavior.
func Transition(state *PaymentOrchestratorState, event Event, ctx Context) (*PaymentOrchestratorState, []Effect) {
	var (
		next    *PaymentOrchestratorState
		effects []Effect
	)

	switch e := event.(type) {
	case Block:
		next, effects = handleBlock(state, e, ctx)
	case ActionInitInitiator:
		next, effects = handleInit(state, e, ctx)
	case ReceiveSecretRequest:
		next, effects = handleSecretRequest(state, e, ctx)
	case ReceiveTransferRefundCancelRoute:
		next, effects = handleTransferRefundCancelRoute(state, e, ctx)
	case ActionCancelPayment:
		next, effects = handleCancelPayment(state, ctx)
	case ReceiveSecretReveal:
		next, effects = handleOffchainSecretReveal(state, e, ctx)
	case ReceiveLockExpired:
		next, effects = handleLockExpired(state, e, ctx)
	case ContractReceiveSecretReveal:
		next, effects = handleOnchainSecretReveal(state, e, ctx)
	default:
		// Unknown event type: no-op. The exhaustive type switch above
		// covers every event this package defines; this default arm is
		// the intentional, documented fallback for events from a future
		// version of the wire protocol this build doesn't know about
		// yet (spec.md §9).
		log.Tracef("initiator: ignoring unrecognized event %T", event)
		next, effects = state, nil
	}

	return clearIfFinalized(next, effects)
}

// clearIfFinalized retires the payment (state -> nil) once
// InitiatorTransfers is empty, run unconditionally after every handler
// including no-ops (spec.md §4.1.1).
func clearIfFinalized(state *PaymentOrchestratorState, effects []Effect) (*PaymentOrchestratorState, []Effect) {
	if state == nil {
		return nil, effects
	}
	if len(state.InitiatorTransfers) == 0 {
		return nil, effects
	}
	return state, effects
}

// cancelCurrentRoute cancels attempt: appends its channel to
// state.CancelledChannels, replaces its entry in state.InitiatorTransfers
// (keyed by secretHash) with a copy carrying Status = StatusCancelled so
// it stops being reachable by subdispatchToAll/StateTransition as a live
// attempt, and returns the UnlockFailed event for it. The cancelled copy
// is kept under its old secrethash rather than deleted here — spec.md
// §3.1: "historical attempts remain under their old secrethash until
// finalized" — callers that must remove it outright (handleCancelPayment,
// per §4.1.4) do so explicitly after calling this. Cancelling a
// post-reveal or already-terminal attempt is a programmer error: the
// caller must check CanCancel first (spec.md §4.4, §7).
func cancelCurrentRoute(state *PaymentOrchestratorState, secretHash secret.Hash, attempt *RouteAttempt) []Effect {
	assert(CanCancel(attempt), ErrCancelAfterReveal)
	assert(attempt.Transfer.SecretHash == secretHash, ErrAttemptOwnershipMismatch)

	state.CancelledChannels = append(state.CancelledChannels, attempt.Channel)

	cancelled := *attempt
	cancelled.Status = StatusCancelled
	state.InitiatorTransfers[secretHash] = &cancelled

	return []Effect{UnlockFailed{
		PaymentID:  attempt.TransferDescription.PaymentID,
		SecretHash: attempt.Transfer.SecretHash,
		Reason:     "route was canceled",
	}}
}

// maybeTryNewRoute cancels the current attempt (if still cancellable) and
// tries a new route with the updated description, inserting the result
// under its new secrethash. Spec.md §4.1.5.
func maybeTryNewRoute(state *PaymentOrchestratorState, attempt *RouteAttempt,
	desc TransferDescription, routes []Route, ctx Context) (*PaymentOrchestratorState, []Effect) {

	next := state.clone()

	var effects []Effect
	if CanCancel(attempt) {
		effects = append(effects, cancelCurrentRoute(next, attempt.Transfer.SecretHash, attempt)...)
		ctx.metrics().AttemptsCancelled.Inc()

		newAttempt, tryEffects := TryNewRoute(
			next.CancelledChannels, ctx.Channels, routes, desc, ctx.PRNG, ctx.BlockNumber,
			ctx.LockExpiryBlocks, ctx.metrics(),
		)
		effects = append(effects, tryEffects...)

		if newAttempt != nil {
			next.InitiatorTransfers[newAttempt.Transfer.SecretHash] = newAttempt
		}
	}

	return next, effects
}

// handleBlock broadcasts a new chain tip to every attempt (spec.md
// §4.1.1).
func handleBlock(state *PaymentOrchestratorState, e Block, ctx Context) (*PaymentOrchestratorState, []Effect) {
	if state == nil {
		return nil, nil
	}
	return subdispatchToAll(state, e, ctx)
}

// handleInit selects a route for a brand-new payment. If state is already
// present, init is silently ignored (spec.md §4.1.2, §9 open question).
func handleInit(state *PaymentOrchestratorState, e ActionInitInitiator, ctx Context) (*PaymentOrchestratorState, []Effect) {
	if state != nil {
		return state, nil
	}

	attempt, effects := TryNewRoute(nil, ctx.Channels, e.Routes, e.Description, ctx.PRNG, ctx.BlockNumber,
		ctx.LockExpiryBlocks, ctx.metrics())
	if attempt == nil {
		return nil, effects
	}

	newState := &PaymentOrchestratorState{
		InitiatorTransfers: map[secret.Hash]*RouteAttempt{
			attempt.Transfer.SecretHash: attempt,
		},
	}

	return newState, effects
}

// handleCancelPayment cancels every still-cancellable attempt and retires
// the payment; attempts past secret-reveal are left intact since the
// counterparty can unlock on-chain (spec.md §4.1.4).
func handleCancelPayment(state *PaymentOrchestratorState, ctx Context) (*PaymentOrchestratorState, []Effect) {
	if state == nil {
		return nil, nil
	}

	next := state.clone()
	var effects []Effect

	for _, secretHash := range sortedSecretHashes(state.InitiatorTransfers) {
		attempt := state.InitiatorTransfers[secretHash]
		if !CanCancel(attempt) {
			continue
		}

		cancelEffects := cancelCurrentRoute(next, secretHash, attempt)
		delete(next.InitiatorTransfers, secretHash)

		cancelEffects = append(cancelEffects, PaymentSentFailed{
			PaymentNetworkID: attempt.TransferDescription.PaymentNetworkID,
			TokenNetworkID:   attempt.TransferDescription.TokenNetworkID,
			PaymentID:        attempt.TransferDescription.PaymentID,
			Target:           attempt.TransferDescription.Target,
			Reason:           "user canceled payment",
		})

		ctx.metrics().AttemptsCancelled.Inc()
		ctx.metrics().PaymentsFailed.Inc()

		effects = append(effects, cancelEffects...)
	}

	return next, effects
}

// handleTransferRefundCancelRoute validates and applies a refund, then
// retries under a fresh secret (spec.md §4.1.3).
func handleTransferRefundCancelRoute(state *PaymentOrchestratorState, e ReceiveTransferRefundCancelRoute,
	ctx Context) (*PaymentOrchestratorState, []Effect) {

	if state == nil {
		return nil, nil
	}

	attempt, ok := state.InitiatorTransfers[e.Transfer.Lock.SecretHash]
	if !ok {
		return state, nil
	}

	original := attempt.Transfer
	isValidLock := e.Transfer.Lock.SecretHash == original.SecretHash &&
		e.Transfer.Lock.Amount == original.Amount &&
		e.Transfer.Lock.Expiration == original.Expiration

	if !isValidLock {
		return state, nil
	}

	originalLT := channel.LockedTransfer{
		Channel:   original.Channel,
		Recipient: original.Recipient,
		Lock: channel.Lock{
			SecretHash: original.SecretHash,
			Amount:     original.Amount,
			Expiration: original.Expiration,
		},
		Identifier: original.Identifier,
	}

	if !ctx.Channels.RefundTransferMatchesReceived(e.Transfer, originalLT) {
		return state, nil
	}

	valid, channelEffects := ctx.Channels.HandleReceiveRefundTransferCancelRoute(attempt.Channel, e.Transfer)
	effects := wrapChannelEffects(channelEffects)

	if !valid {
		return state, effects
	}

	newDescription := attempt.TransferDescription
	newDescription.Secret = e.Secret

	// The nested iteration's returned state is what is threaded back up,
	// per spec.md §9's resolution of its own open question about this
	// handler.
	nextState, tryEffects := maybeTryNewRoute(state, attempt, newDescription, e.Routes, ctx)
	effects = append(effects, tryEffects...)

	return nextState, effects
}

// handleLockExpired applies a lock expiry to the channel and, if the
// partner no longer holds the lock, reports a claim failure (spec.md
// §4.3).
func handleLockExpired(state *PaymentOrchestratorState, e ReceiveLockExpired, ctx Context) (*PaymentOrchestratorState, []Effect) {
	if state == nil {
		return nil, nil
	}

	attempt, ok := state.InitiatorTransfers[e.SecretHash]
	if !ok {
		return state, nil
	}

	channelEffects := ctx.Channels.HandleReceiveLockExpired(attempt.Channel, e.SecretHash, ctx.BlockNumber)
	effects := wrapChannelEffects(channelEffects)

	if _, stillHeld := ctx.Channels.GetLock(attempt.Channel, e.SecretHash); !stillHeld {
		effects = append(effects, UnlockClaimFailed{
			PaymentID:  attempt.TransferDescription.PaymentID,
			SecretHash: e.SecretHash,
			Reason:     "Lock expired",
		})
	}

	return state, effects
}

// handleOffchainSecretReveal broadcasts an off-chain RevealSecret message
// to every attempt (spec.md §4.1.1, §4.1.6).
func handleOffchainSecretReveal(state *PaymentOrchestratorState, e ReceiveSecretReveal, ctx Context) (*PaymentOrchestratorState, []Effect) {
	if state == nil {
		return nil, nil
	}
	return subdispatchToAll(state, e, ctx)
}

// handleOnchainSecretReveal broadcasts a secret learned from an on-chain
// event to every attempt (spec.md §4.1.1, §4.1.6).
func handleOnchainSecretReveal(state *PaymentOrchestratorState, e ContractReceiveSecretReveal, ctx Context) (*PaymentOrchestratorState, []Effect) {
	if state == nil {
		return nil, nil
	}
	return subdispatchToAll(state, e, ctx)
}

// handleSecretRequest routes a SecretRequest to its matching attempt
// (spec.md §4.1.1).
func handleSecretRequest(state *PaymentOrchestratorState, e ReceiveSecretRequest, ctx Context) (*PaymentOrchestratorState, []Effect) {
	if state == nil {
		return nil, nil
	}

	attempt, ok := state.InitiatorTransfers[e.SecretHash]
	if !ok {
		return state, nil
	}
	assert(attempt.Transfer.SecretHash == e.SecretHash, ErrAttemptOwnershipMismatch)

	next := state.clone()
	newAttempt, effects := StateTransition(attempt, e, ctx.Channels, ctx.PRNG, ctx.BlockNumber, ctx.metrics())

	if newAttempt == nil {
		delete(next.InitiatorTransfers, e.SecretHash)
	} else {
		next.InitiatorTransfers[e.SecretHash] = newAttempt
	}

	return next, effects
}

// subdispatchToAll forwards event to every attempt in state, removing any
// that terminate. The mapping is snapshotted (its keys copied) before
// iteration begins so deletions during the pass never alias a live
// iterator (spec.md §9's "mutation of shared dict during iteration" note).
// Effects are concatenated in the snapshot's iteration order for
// determinism (spec.md §4.1.6).
func subdispatchToAll(state *PaymentOrchestratorState, event Event, ctx Context) (*PaymentOrchestratorState, []Effect) {
	next := state.clone()

	keys := sortedSecretHashes(state.InitiatorTransfers)

	var effects []Effect
	for _, secretHash := range keys {
		attempt := next.InitiatorTransfers[secretHash]
		assert(attempt.Transfer.SecretHash == secretHash, ErrAttemptOwnershipMismatch)

		newAttempt, attemptEffects := StateTransition(attempt, event, ctx.Channels, ctx.PRNG, ctx.BlockNumber, ctx.metrics())
		effects = append(effects, attemptEffects...)

		if newAttempt == nil {
			delete(next.InitiatorTransfers, secretHash)
		} else {
			next.InitiatorTransfers[secretHash] = newAttempt
		}
	}

	return next, effects
}
