package payload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tradenet/go-bulletin/codec"
	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/signing"
)

func newSigner(tb testing.TB) *signing.EdSigner {
	tb.Helper()
	signer, err := signing.NewEdSigner()
	require.NoError(tb, err)
	return signer
}

func newVerifier(tb testing.TB) *signing.EdVerifier {
	tb.Helper()
	verifier, err := signing.NewEdVerifier()
	require.NoError(tb, err)
	return verifier
}

func TestKind(t *testing.T) {
	for _, kind := range Kinds() {
		require.True(t, kind.Known())
		require.NotEqual(t, kind.Protected(), kind.AppendOnly(), kind.String())
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		require.Equal(t, kind, parsed)
	}
	_, err := ParseKind("rumor")
	require.ErrorIs(t, err, ErrUnknownKind)
	require.False(t, Kind(200).Known())
	require.False(t, Kind(200).Protected())
	require.Equal(t, "unknown(200)", Kind(200).String())
}

func TestEntry_Validity(t *testing.T) {
	verifier := newVerifier(t)
	owner := newSigner(t)
	other := newSigner(t)
	now := time.Now()

	offer := &Protected{Kind: Offer, Owner: owner.PublicKey(), Data: []byte("offer")}
	entry, err := Sign(owner, offer, 1, now)
	require.NoError(t, err)
	require.True(t, entry.ValidForAdd(verifier))
	require.True(t, entry.ValidForRemove(verifier))

	t.Run("foreign signer", func(t *testing.T) {
		hijack, err := Sign(other, offer, 2, now)
		require.NoError(t, err)
		require.False(t, hijack.ValidForAdd(verifier))
		require.False(t, hijack.ValidForRemove(verifier))
		require.False(t, hijack.MatchesRelevantKey(entry))
	})
	t.Run("tampered sequence", func(t *testing.T) {
		tampered := entry.Copy()
		tampered.Sequence = 7
		require.False(t, tampered.ValidForAdd(verifier))
	})
	t.Run("receiver on non mailbox", func(t *testing.T) {
		bad := entry.Copy()
		bad.Receiver = other.PublicKey()
		require.False(t, bad.ValidForAdd(verifier))
	})
}

func TestEntry_MailboxValidity(t *testing.T) {
	verifier := newVerifier(t)
	sender := newSigner(t)
	receiver := newSigner(t)
	now := time.Now()

	msg := &Protected{
		Kind:     Mailbox,
		Owner:    sender.PublicKey(),
		Receiver: receiver.PublicKey(),
		Data:     []byte("hello"),
	}
	added, err := Sign(sender, msg, 1, now)
	require.NoError(t, err)
	require.True(t, added.ValidForAdd(verifier))
	require.False(t, added.ValidForRemove(verifier))

	removed, err := Sign(receiver, msg, 2, now)
	require.NoError(t, err)
	require.False(t, removed.ValidForAdd(verifier))
	require.True(t, removed.ValidForRemove(verifier))
	require.True(t, removed.MatchesRelevantKey(added))

	noReceiver := &Protected{Kind: Mailbox, Owner: sender.PublicKey()}
	entry, err := Sign(sender, noReceiver, 1, now)
	require.NoError(t, err)
	require.False(t, entry.ValidForAdd(verifier))
}

func TestSign_Errors(t *testing.T) {
	signer := newSigner(t)
	_, err := Sign(signer, nil, 1, time.Now())
	require.ErrorIs(t, err, ErrMissingPayload)

	_, err = Sign(signer, &Protected{Kind: Kind(99)}, 1, time.Now())
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = Sign(signer, &Protected{Kind: TradeStatistics}, 1, time.Now())
	require.ErrorIs(t, err, ErrWrongClass)
}

func TestEntry_Expired(t *testing.T) {
	now := time.Now()
	entry := &Entry{Created: now.Add(-time.Hour)}
	require.False(t, entry.Expired(0, now))
	require.False(t, entry.Expired(2*time.Hour, now))
	require.False(t, entry.Expired(time.Hour, now))
	require.True(t, entry.Expired(time.Hour-time.Second, now))
}

func TestEntry_Backdate(t *testing.T) {
	now := time.Now()
	ttl := 10 * time.Minute

	t.Run("delta", func(t *testing.T) {
		entry := &Entry{Created: now}
		created, ok := entry.Backdate(ttl, time.Minute, time.Minute, now)
		require.True(t, ok)
		require.Equal(t, now.Add(-time.Minute), created)
	})
	t.Run("floor", func(t *testing.T) {
		entry := &Entry{Created: now.Add(-8 * time.Minute)}
		created, ok := entry.Backdate(ttl, 5*time.Minute, time.Minute, now)
		require.True(t, ok)
		require.Equal(t, now.Add(-9*time.Minute), created)
	})
	t.Run("below floor", func(t *testing.T) {
		entry := &Entry{Created: now.Add(-9*time.Minute - time.Second)}
		created, ok := entry.Backdate(ttl, 5*time.Minute, time.Minute, now)
		require.False(t, ok)
		require.Equal(t, entry.Created, created)
	})
	t.Run("no ttl", func(t *testing.T) {
		entry := &Entry{Created: now}
		_, ok := entry.Backdate(0, 5*time.Minute, time.Minute, now)
		require.False(t, ok)
	})
}

func TestEntry_Encoding(t *testing.T) {
	sender := newSigner(t)
	receiver := newSigner(t)
	msg := &Protected{
		Kind:         Mailbox,
		Owner:        sender.PublicKey(),
		Receiver:     receiver.PublicKey(),
		Capabilities: types.NewCapabilities(types.CapMailboxV2),
		Data:         []byte("hello"),
	}
	entry, err := Sign(sender, msg, 3, time.UnixMilli(1_700_000_000_000))
	require.NoError(t, err)

	var decoded Entry
	require.NoError(t, codec.Decode(codec.MustEncode(entry), &decoded))
	require.Equal(t, entry.Hash(), decoded.Hash())
	require.Equal(t, entry.Sequence, decoded.Sequence)
	require.Equal(t, entry.Signature, decoded.Signature)
	require.True(t, entry.Created.Equal(decoded.Created))
	require.True(t, decoded.ValidForAdd(newVerifier(t)))

	buf := codec.MustEncode(entry)
	buf[0] = 99
	require.ErrorIs(t, codec.Decode(buf, &decoded), ErrUnknownKind)
}

func TestAppendOnly(t *testing.T) {
	now := time.Now()
	p, err := NewAppendOnly(TradeStatistics, now, nil, []byte("trade"))
	require.NoError(t, err)
	require.True(t, p.VerifyHash())

	var decoded AppendOnly
	require.NoError(t, codec.Decode(codec.MustEncode(p), &decoded))
	require.True(t, decoded.VerifyHash())
	require.Equal(t, p.ID, decoded.ID)

	decoded.Data = []byte("forged")
	require.False(t, decoded.VerifyHash())

	_, err = NewAppendOnly(Offer, now, nil, nil)
	require.ErrorIs(t, err, ErrWrongClass)
	_, err = NewAppendOnly(Kind(77), now, nil, nil)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestAppendOnly_InTolerance(t *testing.T) {
	now := time.Now()
	tolerant, err := NewAppendOnly(AccountAgeWitness, now.Add(-2*time.Hour), nil, nil)
	require.NoError(t, err)
	require.False(t, tolerant.InTolerance(now, time.Hour))
	require.True(t, tolerant.InTolerance(now, 3*time.Hour))

	future, err := NewAppendOnly(AccountAgeWitness, now.Add(2*time.Hour), nil, nil)
	require.NoError(t, err)
	require.False(t, future.InTolerance(now, time.Hour))

	intolerant, err := NewAppendOnly(SignedWitness, now.Add(-48*time.Hour), nil, nil)
	require.NoError(t, err)
	require.True(t, intolerant.InTolerance(now, time.Hour))
}
