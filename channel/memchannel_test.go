package channel

import (
	"testing"

	"github.com/hashlock/initiator/secret"
	"github.com/stretchr/testify/require"
)

func TestMemCanSendAndLock(t *testing.T) {
	m := NewMem(map[ID]uint64{1: 100})

	require.True(t, m.CanSend(1, 100))
	require.False(t, m.CanSend(1, 101))
	require.False(t, m.CanSend(2, 1))

	var hash secret.Hash
	hash[0] = 0xAB

	lt, effects, ok := m.SendLockedTransfer(1, [20]byte{1}, hash, 60, 500)
	require.True(t, ok)
	require.Equal(t, uint64(60), lt.Lock.Amount)
	require.Len(t, effects, 1)

	require.False(t, m.CanSend(1, 41))
	require.True(t, m.CanSend(1, 40))
}

func TestMemRefundRestoresCapacity(t *testing.T) {
	m := NewMem(map[ID]uint64{1: 100})

	var hash secret.Hash
	hash[0] = 0x01

	lt, _, ok := m.SendLockedTransfer(1, [20]byte{1}, hash, 60, 500)
	require.True(t, ok)

	valid, effects := m.HandleReceiveRefundTransferCancelRoute(1, RefundTransfer{
		Channel: 1,
		Lock:    lt.Lock,
	})
	require.True(t, valid)
	require.Len(t, effects, 1)
	require.True(t, m.CanSend(1, 100))
}

func TestMemPartnerLockSetAndClear(t *testing.T) {
	m := NewMem(map[ID]uint64{1: 100})

	var hash secret.Hash
	hash[0] = 0x02

	m.SetPartnerLock(1, Lock{SecretHash: hash, Amount: 10, Expiration: 5})
	_, ok := m.GetLock(1, hash)
	require.True(t, ok)

	m.ClearPartnerLock(1, hash)
	_, ok = m.GetLock(1, hash)
	require.False(t, ok)
}

func TestMemUnknownChannel(t *testing.T) {
	m := NewMem(map[ID]uint64{1: 100})

	_, _, ok := m.SendLockedTransfer(99, [20]byte{}, secret.Hash{}, 1, 1)
	require.False(t, ok)

	valid, effects := m.HandleReceiveRefundTransferCancelRoute(99, RefundTransfer{})
	require.False(t, valid)
	require.Nil(t, effects)
}
