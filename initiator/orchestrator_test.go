package initiator

import (
	"testing"

	"github.com/hashlock/initiator/channel"
	"github.com/hashlock/initiator/secret"
	"github.com/stretchr/testify/require"
)

func testContext(adapter channel.Adapter, seed int64, blockNumber uint64) Context {
	return Context{
		Channels:    adapter,
		PRNG:        NewPRNG(seed),
		BlockNumber: blockNumber,
	}
}

func initEvent(secretVal byte, channels ...channel.ID) (ActionInitInitiator, secret.Secret) {
	var s secret.Secret
	s[0] = secretVal

	routes := make([]Route, len(channels))
	for i, c := range channels {
		routes[i] = Route{Channel: c}
	}

	return ActionInitInitiator{
		Description: TransferDescription{
			PaymentNetworkID: 1,
			TokenNetworkID:   1,
			PaymentID:        7,
			Amount:           50,
			Initiator:        [20]byte{0xAA},
			Target:           [20]byte{0xBB},
			Secret:           s,
		},
		Routes: routes,
	}, s
}

func TestTransitionDoubleInitIsIgnored(t *testing.T) {
	adapter := channel.NewMem(map[channel.ID]uint64{1: 100})
	ctx := testContext(adapter, 1, 10)

	init, _ := initEvent(0x10, 1)
	state, _ := Transition(nil, init, ctx)
	require.NotNil(t, state)

	otherInit, _ := initEvent(0x11, 1)
	next, effects := Transition(state, otherInit, ctx)

	require.Same(t, state, next)
	require.Empty(t, effects)
}

func TestTransitionInitWithNoViableRouteStaysNil(t *testing.T) {
	adapter := channel.NewMem(map[channel.ID]uint64{1: 1})
	ctx := testContext(adapter, 1, 10)

	init, _ := initEvent(0x12, 1)
	state, effects := Transition(nil, init, ctx)

	require.Nil(t, state)
	require.Len(t, effects, 1)
	_, ok := effects[0].(PaymentSentFailed)
	require.True(t, ok)
}

func TestTransitionCancelPaymentRetiresState(t *testing.T) {
	adapter := channel.NewMem(map[channel.ID]uint64{1: 100})
	ctx := testContext(adapter, 1, 10)

	init, _ := initEvent(0x13, 1)
	state, _ := Transition(nil, init, ctx)
	require.NotNil(t, state)

	next, effects := Transition(state, ActionCancelPayment{}, ctx)

	require.Nil(t, next)
	require.Len(t, effects, 2)

	// Cancelling a route only stops the core from tracking it; it does
	// not unlock the channel-level lock (only a refund or lock expiry
	// does that), so the 50 units sent during init stay outstanding.
	require.False(t, adapter.CanSend(1, 100))
	require.True(t, adapter.CanSend(1, 50))
}

func TestTransitionBlockIsNoOpWithoutState(t *testing.T) {
	adapter := channel.NewMem(map[channel.ID]uint64{1: 100})
	ctx := testContext(adapter, 1, 10)

	next, effects := Transition(nil, Block{BlockNumber: 5}, ctx)

	require.Nil(t, next)
	require.Empty(t, effects)
}

func TestTransitionUnknownEventIsNoOp(t *testing.T) {
	adapter := channel.NewMem(map[channel.ID]uint64{1: 100})
	ctx := testContext(adapter, 1, 10)

	init, _ := initEvent(0x14, 1)
	state, _ := Transition(nil, init, ctx)

	next, effects := Transition(state, unrecognizedEvent{}, ctx)

	require.Same(t, state, next)
	require.Empty(t, effects)
}

type unrecognizedEvent struct{}

func (unrecognizedEvent) isInitiatorEvent() {}
