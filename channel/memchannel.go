package channel

import (
	"sync"

	"github.com/hashlock/initiator/secret"
)

// balanceEffect is the only channel.Effect this reference implementation
// produces: a record of a balance change, analogous to the balance-proof
// events the real channel collaborator would emit on the wire.
type balanceEffect struct {
	Channel ID
	Delta   int64
	Reason  string
}

func (balanceEffect) isChannelEffect() {}

// BalanceEffect exposes balanceEffect under an exported name for callers
// that want to inspect what the in-memory adapter did. Being a type alias,
// it also lets callers construct the value directly.
type BalanceEffect = balanceEffect

// chanState tracks one channel's capacity and outstanding locks from this
// node's point of view.
type chanState struct {
	capacity    uint64
	outstanding uint64
	partnerLock map[secret.Hash]Lock
	sent        map[secret.Hash]LockedTransfer
}

// Mem is a deterministic, in-process ChannelAdapter used by tests and the
// demo driver. It is not a production channel implementation: it has no
// wire codec, no signatures, and no persistence. Grounded on
// htlcswitch/mock.go's mockChannelLink pattern — a hand-rolled fake behind
// the production interface, guarded by a single mutex.
type Mem struct {
	mu       sync.Mutex
	channels map[ID]*chanState
	nextMsg  uint64
}

// NewMem creates an in-memory adapter with the given per-channel starting
// capacities.
func NewMem(capacities map[ID]uint64) *Mem {
	m := &Mem{channels: make(map[ID]*chanState, len(capacities))}
	for id, capAmt := range capacities {
		m.channels[id] = &chanState{
			capacity:    capAmt,
			partnerLock: make(map[secret.Hash]Lock),
			sent:        make(map[secret.Hash]LockedTransfer),
		}
	}
	return m
}

func (m *Mem) state(id ID) (*chanState, bool) {
	cs, ok := m.channels[id]
	return cs, ok
}

// CanSend implements Adapter.
func (m *Mem) CanSend(id ID, amount uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cs, ok := m.state(id)
	if !ok {
		return false
	}
	return cs.capacity-cs.outstanding >= amount
}

// SendLockedTransfer implements Adapter.
func (m *Mem) SendLockedTransfer(id ID, recipient [20]byte, lockHash secret.Hash,
	amount uint64, expiration uint64) (LockedTransfer, []Effect, bool) {

	m.mu.Lock()
	defer m.mu.Unlock()

	cs, ok := m.state(id)
	if !ok || cs.capacity-cs.outstanding < amount {
		return LockedTransfer{}, nil, false
	}

	cs.outstanding += amount
	m.nextMsg++

	lt := LockedTransfer{
		Channel:   id,
		Recipient: recipient,
		Lock: Lock{
			SecretHash: lockHash,
			Amount:     amount,
			Expiration: expiration,
		},
		Identifier: m.nextMsg,
	}
	cs.sent[lockHash] = lt

	return lt, []Effect{balanceEffect{Channel: id, Delta: -int64(amount), Reason: "lock"}}, true
}

// RefundTransferMatchesReceived implements Adapter.
func (m *Mem) RefundTransferMatchesReceived(refund RefundTransfer, original LockedTransfer) bool {
	return refund.Lock.SecretHash == original.Lock.SecretHash &&
		refund.Lock.Amount == original.Lock.Amount &&
		refund.Lock.Expiration == original.Lock.Expiration
}

// HandleReceiveRefundTransferCancelRoute implements Adapter.
func (m *Mem) HandleReceiveRefundTransferCancelRoute(id ID, refund RefundTransfer) (bool, []Effect) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cs, ok := m.state(id)
	if !ok {
		return false, nil
	}

	sent, ok := cs.sent[refund.Lock.SecretHash]
	if !ok {
		return false, nil
	}

	cs.outstanding -= sent.Lock.Amount
	delete(cs.sent, refund.Lock.SecretHash)

	return true, []Effect{balanceEffect{Channel: id, Delta: int64(sent.Lock.Amount), Reason: "refund"}}
}

// HandleReceiveLockExpired implements Adapter.
func (m *Mem) HandleReceiveLockExpired(id ID, secretHash secret.Hash, blockNumber uint64) []Effect {
	m.mu.Lock()
	defer m.mu.Unlock()

	cs, ok := m.state(id)
	if !ok {
		return nil
	}

	sent, ok := cs.sent[secretHash]
	if !ok {
		return nil
	}

	if blockNumber < sent.Lock.Expiration {
		return nil
	}

	cs.outstanding -= sent.Lock.Amount
	delete(cs.sent, secretHash)
	delete(cs.partnerLock, secretHash)

	return []Effect{balanceEffect{Channel: id, Delta: int64(sent.Lock.Amount), Reason: "expired"}}
}

// GetLock implements Adapter.
func (m *Mem) GetLock(id ID, secretHash secret.Hash) (Lock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cs, ok := m.state(id)
	if !ok {
		return Lock{}, false
	}
	l, ok := cs.partnerLock[secretHash]
	return l, ok
}

// SetPartnerLock is a test-only helper that simulates the partner still
// holding (or no longer holding, if never called / explicitly cleared) an
// outstanding lock for secretHash. Production channel state would learn
// this from wire messages; the in-memory adapter exposes it directly so
// scenario tests can drive ReceiveLockExpired deterministically.
func (m *Mem) SetPartnerLock(id ID, l Lock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cs, ok := m.state(id); ok {
		cs.partnerLock[l.SecretHash] = l
	}
}

// ClearPartnerLock removes a simulated partner lock, e.g. once the
// partner's own timeout has elapsed.
func (m *Mem) ClearPartnerLock(id ID, secretHash secret.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cs, ok := m.state(id); ok {
		delete(cs.partnerLock, secretHash)
	}
}

var _ Adapter = (*Mem)(nil)
