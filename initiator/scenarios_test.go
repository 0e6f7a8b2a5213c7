package initiator

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/hashlock/initiator/channel"
	"github.com/hashlock/initiator/secret"
	"github.com/stretchr/testify/require"
)

// dumpEffects renders effects with spew on test failure, since the effect
// list is a slice of unexported-field-bearing structs behind the Effect
// interface and %+v doesn't descend into it usefully.
func dumpEffects(t *testing.T, effects []Effect) {
	t.Helper()
	t.Logf("effects:\n%s", spew.Sdump(effects))
}

// S1 - happy path: init with one route, secret request then reveal
// finalizes the payment and retires the state.
func TestScenarioHappyPath(t *testing.T) {
	adapter := channel.NewMem(map[channel.ID]uint64{1: 100})
	ctx := testContext(adapter, 1, 10)

	init, s := initEvent(0x21, 1)
	state, effects := Transition(nil, init, ctx)
	require.NotNil(t, state)
	require.Len(t, effects, 1)
	require.Len(t, state.InitiatorTransfers, 1)

	secretHash := secret.Of(s)
	attempt, ok := state.InitiatorTransfers[secretHash]
	require.True(t, ok)
	require.Equal(t, StatusPending, attempt.Status)

	state, effects = Transition(state, ReceiveSecretRequest{
		SecretHash: secretHash,
		Amount:     attempt.Transfer.Amount,
	}, ctx)
	require.NotNil(t, state)
	require.Empty(t, effects)
	require.Equal(t, StatusSecretRequested, state.InitiatorTransfers[secretHash].Status)

	state, effects = Transition(state, ReceiveSecretReveal{
		SecretHash: secretHash,
		Secret:     s,
	}, ctx)

	require.Nil(t, state)
	require.Len(t, effects, 1)
	success, ok := effects[0].(PaymentSentSuccess)
	require.True(t, ok)
	require.Equal(t, uint64(50), success.Amount)
}

// S2 - no route available: init fails immediately, state never starts.
func TestScenarioNoRouteAvailable(t *testing.T) {
	adapter := channel.NewMem(map[channel.ID]uint64{1: 10})
	ctx := testContext(adapter, 1, 10)

	init, _ := initEvent(0x22, 1)
	state, effects := Transition(nil, init, ctx)

	require.Nil(t, state)
	require.Len(t, effects, 1)
	failed, ok := effects[0].(PaymentSentFailed)
	require.True(t, ok)
	require.Equal(t, "no route found", failed.Reason)
}

// S3 - refund on the first route, retried with a fresh secret on a second
// channel, succeeds.
func TestScenarioRefundThenRetrySucceeds(t *testing.T) {
	adapter := channel.NewMem(map[channel.ID]uint64{1: 100, 2: 100})
	ctx := testContext(adapter, 2, 10)

	init, s1 := initEvent(0x23, 1, 2)
	state, _ := Transition(nil, init, ctx)
	require.NotNil(t, state)
	require.Len(t, state.InitiatorTransfers, 1)

	var attempt *RouteAttempt
	var firstHash secret.Hash
	for h, a := range state.InitiatorTransfers {
		attempt, firstHash = a, h
	}
	require.Equal(t, secret.Of(s1), firstHash)

	var s2 secret.Secret
	s2[0] = 0x24

	refundTransfer := channel.RefundTransfer{
		Channel: attempt.Channel,
		Lock: channel.Lock{
			SecretHash: attempt.Transfer.SecretHash,
			Amount:     attempt.Transfer.Amount,
			Expiration: attempt.Transfer.Expiration,
		},
	}

	state, effects := Transition(state, ReceiveTransferRefundCancelRoute{
		Transfer: refundTransfer,
		Routes:   []Route{{Channel: 1}, {Channel: 2}},
		Secret:   s2,
	}, ctx)

	dumpEffects(t, effects)

	require.NotNil(t, state)

	// The old attempt stays in the map under its old secrethash, marked
	// cancelled rather than deleted (spec.md §3.1: "historical attempts
	// remain under their old secrethash until finalized"); the new
	// attempt lives alongside it under the new secrethash.
	require.Len(t, state.InitiatorTransfers, 2)

	var foundUnlockFailed, foundChannelEffect bool
	for _, e := range effects {
		switch e.(type) {
		case UnlockFailed:
			foundUnlockFailed = true
		case ChannelEffect:
			foundChannelEffect = true
		}
	}
	require.True(t, foundUnlockFailed)
	require.True(t, foundChannelEffect)

	oldAttempt, ok := state.InitiatorTransfers[firstHash]
	require.True(t, ok)
	require.Equal(t, StatusCancelled, oldAttempt.Status)

	newHash := secret.Of(s2)
	newAttempt, ok := state.InitiatorTransfers[newHash]
	require.True(t, ok)
	require.Equal(t, StatusPending, newAttempt.Status)
	require.NotEqual(t, attempt.Channel, newAttempt.Channel, "retry must avoid the cancelled channel")
}

// S4 - a refund whose lock fields don't match the original transfer is
// ignored outright, leaving state untouched.
func TestScenarioMalformedRefundIgnored(t *testing.T) {
	adapter := channel.NewMem(map[channel.ID]uint64{1: 100})
	ctx := testContext(adapter, 1, 10)

	init, _ := initEvent(0x25, 1)
	state, _ := Transition(nil, init, ctx)
	require.NotNil(t, state)

	var attempt *RouteAttempt
	for _, a := range state.InitiatorTransfers {
		attempt = a
	}

	badRefund := channel.RefundTransfer{
		Channel: attempt.Channel,
		Lock: channel.Lock{
			SecretHash: attempt.Transfer.SecretHash,
			Amount:     attempt.Transfer.Amount + 1, // mismatched amount
			Expiration: attempt.Transfer.Expiration,
		},
	}

	next, effects := Transition(state, ReceiveTransferRefundCancelRoute{
		Transfer: badRefund,
		Routes:   []Route{{Channel: 1}},
	}, ctx)

	require.Same(t, state, next)
	require.Empty(t, effects)
}

// S5 - user cancels a still-pending payment mid-flight.
func TestScenarioUserCancelMidFlight(t *testing.T) {
	adapter := channel.NewMem(map[channel.ID]uint64{1: 100})
	ctx := testContext(adapter, 1, 10)

	init, _ := initEvent(0x26, 1)
	state, _ := Transition(nil, init, ctx)
	require.NotNil(t, state)

	next, effects := Transition(state, ActionCancelPayment{}, ctx)

	require.Nil(t, next)
	require.Len(t, effects, 2)

	var foundFailed bool
	for _, e := range effects {
		if failed, ok := e.(PaymentSentFailed); ok {
			foundFailed = true
			require.Equal(t, "user canceled payment", failed.Reason)
		}
	}
	require.True(t, foundFailed)

	// Cancelling only stops the core from tracking the route; the
	// channel-level lock stays outstanding until a refund or expiry
	// releases it, so full capacity is not yet available again.
	require.False(t, adapter.CanSend(1, 100))
	require.True(t, adapter.CanSend(1, 50))
}

// S6 - after a secret request is received, the lock expires before reveal:
// handleLockExpired reports a claim failure once the channel no longer
// holds the lock, and the attempt stays tracked for any later reveal.
func TestScenarioLockExpiryAfterSecretRequest(t *testing.T) {
	adapter := channel.NewMem(map[channel.ID]uint64{1: 100})
	ctx := testContext(adapter, 1, 10)

	init, _ := initEvent(0x27, 1)
	state, _ := Transition(nil, init, ctx)
	require.NotNil(t, state)

	var attempt *RouteAttempt
	var secretHash secret.Hash
	for h, a := range state.InitiatorTransfers {
		attempt, secretHash = a, h
	}

	state, _ = Transition(state, ReceiveSecretRequest{
		SecretHash: secretHash,
		Amount:     attempt.Transfer.Amount,
	}, ctx)
	require.NotNil(t, state)

	next, effects := Transition(state, ReceiveLockExpired{SecretHash: secretHash}, ctx)

	require.NotNil(t, next)
	require.Len(t, effects, 1)
	claimFailed, ok := effects[0].(UnlockClaimFailed)
	require.True(t, ok)
	require.Equal(t, "Lock expired", claimFailed.Reason)
}
