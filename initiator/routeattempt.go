package initiator

import (
	"github.com/hashlock/initiator/channel"
	"github.com/hashlock/initiator/secret"
)

// DefaultLockExpiryBlocks is how many blocks past the current tip a
// freshly selected route's lock expires at when the caller doesn't
// override it via Config.LockExpiryGrace (initiatorcfg.DefaultConfig's
// own default). A real deployment would derive this from the route's
// accumulated per-hop CLTV deltas (out of scope here, see spec.md §1); a
// single flat window is the simplest value that lets handleLockExpired
// (§4.3) be exercised end-to-end.
const DefaultLockExpiryBlocks = 50

// TryNewRoute implements the RouteAttempt sub-machine's route-selection
// contract (spec.md §4.2, concretized in SPEC_FULL.md §5). It collects
// every route in routes whose channel isn't in cancelledChannels and that
// currently has capacity for desc.Amount, then picks one of those viable
// candidates with prng; route order does not give any candidate
// precedence. On success it emits a locked transfer on
// the chosen channel, expiring lockExpiryBlocks past blockNumber, and
// returns a fresh RouteAttempt in StatusPending. With no viable route it
// returns (nil, [PaymentSentFailed]).
//
// cancelledChannels is PaymentOrchestratorState.CancelledChannels: the
// consumer side of the contract spec.md §9's open question calls out (the
// core only appends to that slice; this is where it gets consulted).
func TryNewRoute(cancelledChannels []ChannelID, adapter channel.Adapter, routes []Route,
	desc TransferDescription, prng PRNG, blockNumber uint64, lockExpiryBlocks uint64,
	metrics *Metrics) (*RouteAttempt, []Effect) {

	if metrics == nil {
		metrics = noopMetrics()
	}
	if lockExpiryBlocks == 0 {
		lockExpiryBlocks = DefaultLockExpiryBlocks
	}

	excluded := make(map[ChannelID]struct{}, len(cancelledChannels))
	for _, c := range cancelledChannels {
		excluded[c] = struct{}{}
	}

	var viable []Route
	for _, r := range routes {
		if _, skip := excluded[r.Channel]; skip {
			continue
		}
		if adapter.CanSend(r.Channel, desc.Amount) {
			viable = append(viable, r)
		}
	}

	if len(viable) == 0 {
		return nil, []Effect{PaymentSentFailed{
			PaymentNetworkID: desc.PaymentNetworkID,
			TokenNetworkID:   desc.TokenNetworkID,
			PaymentID:        desc.PaymentID,
			Target:           desc.Target,
			Reason:           "no route found",
		}}
	}

	// A tie-break draw is made even when there's only one candidate so
	// that the PRNG's call sequence is stable regardless of how many
	// routes were viable, matching the original's unconditional
	// `pseudo_random_generator.choice` over the candidate list.
	chosen := viable[prng.Intn(len(viable))]

	secretHash := desc.SecretHash()
	lt, chanEffects, ok := adapter.SendLockedTransfer(
		chosen.Channel, desc.Target, secretHash, desc.Amount,
		blockNumber+lockExpiryBlocks,
	)
	if !ok {
		return nil, []Effect{PaymentSentFailed{
			PaymentNetworkID: desc.PaymentNetworkID,
			TokenNetworkID:   desc.TokenNetworkID,
			PaymentID:        desc.PaymentID,
			Target:           desc.Target,
			Reason:           "channel rejected locked transfer",
		}}
	}

	attempt := &RouteAttempt{
		TransferDescription: desc,
		Channel:             chosen.Channel,
		Transfer: Transfer{
			Channel:    lt.Channel,
			Amount:     lt.Lock.Amount,
			Expiration: lt.Lock.Expiration,
			SecretHash: lt.Lock.SecretHash,
			Recipient:  lt.Recipient,
			Identifier: lt.Identifier,
		},
		Status: StatusPending,
	}

	metrics.AttemptsStarted.Inc()

	return attempt, wrapChannelEffects(chanEffects)
}

// StateTransition implements the RouteAttempt sub-machine's per-event
// contract (spec.md §4.2). It advances attempt.Status according to event,
// validating a secret request against the locked amount, recording a
// secret reveal, and finalizing on unlock. Events that don't apply to the
// attempt's current status are no-ops, mirroring §7's unknown-event
// policy applied at the sub-machine level.
func StateTransition(attempt *RouteAttempt, event Event, adapter channel.Adapter,
	prng PRNG, blockNumber uint64, metrics *Metrics) (*RouteAttempt, []Effect) {

	if metrics == nil {
		metrics = noopMetrics()
	}

	switch e := event.(type) {
	case ReceiveSecretRequest:
		return stateTransitionSecretRequest(attempt, e)
	case ReceiveSecretReveal:
		return stateTransitionSecretReveal(attempt, e, adapter, metrics)
	case ContractReceiveSecretReveal:
		return stateTransitionSecretReveal(attempt, ReceiveSecretReveal{
			SecretHash: e.SecretHash,
			Secret:     e.Secret,
		}, adapter, metrics)
	case Block:
		return attempt, nil
	default:
		return attempt, nil
	}
}

func stateTransitionSecretRequest(attempt *RouteAttempt, e ReceiveSecretRequest) (*RouteAttempt, []Effect) {
	if attempt.Status != StatusPending && attempt.Status != StatusSecretRequested {
		return attempt, nil
	}
	if e.SecretHash != attempt.Transfer.SecretHash {
		return attempt, nil
	}
	if e.Amount != attempt.Transfer.Amount {
		return attempt, nil
	}

	next := *attempt
	next.ReceivedSecretRequest = true
	next.Status = StatusSecretRequested
	return &next, nil
}

func stateTransitionSecretReveal(attempt *RouteAttempt, e ReceiveSecretReveal,
	adapter channel.Adapter, metrics *Metrics) (*RouteAttempt, []Effect) {

	if attempt.Status.terminal() {
		return attempt, nil
	}
	if e.SecretHash != attempt.Transfer.SecretHash {
		return attempt, nil
	}
	if secret.Of(e.Secret) != e.SecretHash {
		return attempt, nil
	}

	// Unlocking on-chain/off-chain once the secret is known is a channel-
	// level operation outside this module's scope (spec.md §1); the
	// sub-machine only needs the channel collaborator to validate
	// lock-expiry and refunds, both handled at the orchestrator level
	// (§4.1.3, §4.3), so adapter is accepted for interface-contract
	// parity with spec.md §4.2 but unused on this path.
	_ = adapter

	next := *attempt
	next.RevealSecret = &RevealSecret{Secret: e.Secret}
	next.Status = StatusFinalized
	metrics.PaymentsFinalized.Inc()

	effects := []Effect{PaymentSentSuccess{
		PaymentNetworkID: next.TransferDescription.PaymentNetworkID,
		TokenNetworkID:   next.TransferDescription.TokenNetworkID,
		PaymentID:        next.TransferDescription.PaymentID,
		Amount:           next.Transfer.Amount,
		Target:           next.TransferDescription.Target,
	}}

	// A finalized attempt is removed from the payment's map by the
	// orchestrator (clear_if_finalized / broadcast semantics), so
	// returning nil here signals the sub-machine considers itself done,
	// matching spec.md §4.1.6: "If an attempt's sub-transition returns
	// absent state [...] it is removed from the mapping."
	return nil, effects
}
