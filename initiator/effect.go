package initiator

import (
	"github.com/hashlock/initiator/channel"
	"github.com/hashlock/initiator/secret"
)

// Effect is a pure value returned from Transition describing something
// the host must act on (notify a user, retry a send, update a UI). The
// core never interprets its own effects.
type Effect interface {
	isInitiatorEffect()
}

// PaymentSentFailed reports that the payment could not be completed at
// all (no route, the channel rejecting the locked transfer, or user
// cancellation).
type PaymentSentFailed struct {
	PaymentNetworkID uint64
	TokenNetworkID   uint64
	PaymentID        uint64
	Target           [20]byte
	Reason           string
}

func (PaymentSentFailed) isInitiatorEffect() {}

// PaymentSentSuccess reports that a route attempt unlocked successfully
// and the payment is settled.
type PaymentSentSuccess struct {
	PaymentNetworkID uint64
	TokenNetworkID   uint64
	PaymentID        uint64
	Amount           uint64
	Target           [20]byte
}

func (PaymentSentSuccess) isInitiatorEffect() {}

// UnlockFailed reports that a route attempt was cancelled before it could
// unlock.
type UnlockFailed struct {
	PaymentID  uint64
	SecretHash secret.Hash
	Reason     string
}

func (UnlockFailed) isInitiatorEffect() {}

// UnlockClaimFailed reports that a lock expired before the partner's
// claim could be honored.
type UnlockClaimFailed struct {
	PaymentID  uint64
	SecretHash secret.Hash
	Reason     string
}

func (UnlockClaimFailed) isInitiatorEffect() {}

// ChannelEffect forwards an effect produced by the channel collaborator
// verbatim; the orchestrator never inspects its contents.
type ChannelEffect struct {
	Effect channel.Effect
}

func (ChannelEffect) isInitiatorEffect() {}

// wrapChannelEffects lifts a batch of channel.Effect values into the
// initiator Effect union.
func wrapChannelEffects(effects []channel.Effect) []Effect {
	if len(effects) == 0 {
		return nil
	}
	out := make([]Effect, len(effects))
	for i, e := range effects {
		out[i] = ChannelEffect{Effect: e}
	}
	return out
}
