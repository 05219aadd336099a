package bridge

import (
	"crypto/rand"
	"crypto/sha256"
	"sync"

	"github.com/tidemark-io/tidemark/errors"
	"golang.org/x/crypto/ed25519"
)

// Transport carries envelopes between ledgers. Send is used by the
// outbound phase after the burn, Authenticate and Consume by the
// inbound phase before the mint. Authenticate must be free of side
// effects so it can run during transaction checks, which are not
// persisted. Consume marks the envelope as processed and must fail
// for an envelope consumed before, so a transfer is minted at most
// once.
type Transport interface {
	Send(env Envelope) error
	Authenticate(env Envelope, sig []byte) error
	Consume(env Envelope) error
}

// DeliverFunc receives an envelope on the destination side together
// with the transport signature over it.
type DeliverFunc func(env Envelope, sig []byte) error

// LoopbackTransport connects ledgers living in the same process. Each
// registered ledger gets its own signing key, envelopes are signed on
// send and delivered synchronously to the destination endpoint. A
// digest set enforces at most once semantics on both sides.
type LoopbackTransport struct {
	mu       sync.Mutex
	keys     map[string]ed25519.PrivateKey
	inbox    map[string]DeliverFunc
	sent     map[[sha256.Size]byte]bool
	consumed map[[sha256.Size]byte]bool
}

var _ Transport = (*LoopbackTransport)(nil)

// NewLoopbackTransport returns a transport with no ledgers attached.
func NewLoopbackTransport() *LoopbackTransport {
	return &LoopbackTransport{
		keys:     make(map[string]ed25519.PrivateKey),
		inbox:    make(map[string]DeliverFunc),
		sent:     make(map[[sha256.Size]byte]bool),
		consumed: make(map[[sha256.Size]byte]bool),
	}
}

// RegisterLedger attaches a ledger endpoint. Outbound envelopes from
// this ledger are signed with a fresh key and inbound envelopes
// addressed to it are handed to deliver. Deliver can be nil for a
// ledger that only sends.
func (t *LoopbackTransport) RegisterLedger(ledgerID string, deliver DeliverFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.keys[ledgerID]; ok {
		return errors.Wrapf(errors.ErrDuplicate, "ledger %q already registered", ledgerID)
	}
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return errors.Wrap(err, "cannot generate transport key")
	}
	t.keys[ledgerID] = priv
	if deliver != nil {
		t.inbox[ledgerID] = deliver
	}
	return nil
}

// Send signs the envelope with the source ledger key and delivers it
// to the destination endpoint. A duplicate envelope is dropped.
func (t *LoopbackTransport) Send(env Envelope) error {
	raw, err := env.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot serialize envelope")
	}

	t.mu.Lock()
	key, ok := t.keys[env.SourceLedger]
	if !ok {
		t.mu.Unlock()
		return errors.Wrapf(errors.ErrNotFound, "ledger %q not registered", env.SourceLedger)
	}
	digest := sha256.Sum256(raw)
	if t.sent[digest] {
		t.mu.Unlock()
		return errors.Wrap(errors.ErrDuplicate, "envelope already sent")
	}
	t.sent[digest] = true
	deliver := t.inbox[env.DestinationLedger]
	t.mu.Unlock()

	if deliver == nil {
		return errors.Wrapf(errors.ErrNotFound, "no endpoint for ledger %q", env.DestinationLedger)
	}
	sig := ed25519.Sign(key, raw)
	return deliver(env, sig)
}

// Authenticate verifies that the envelope was signed by the transport
// key of its claimed source ledger and that it was not consumed
// before. It never mutates transport state, so the same envelope
// authenticates any number of times until Consume is called.
func (t *LoopbackTransport) Authenticate(env Envelope, sig []byte) error {
	raw, err := env.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot serialize envelope")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key, ok := t.keys[env.SourceLedger]
	if !ok {
		return errors.Wrapf(ErrUnauthorizedSource, "unknown ledger %q", env.SourceLedger)
	}
	if !ed25519.Verify(key.Public().(ed25519.PublicKey), raw, sig) {
		return errors.Wrap(ErrUnauthorizedSource, "invalid transport signature")
	}
	if t.consumed[sha256.Sum256(raw)] {
		return errors.Wrap(errors.ErrDuplicate, "envelope already processed")
	}
	return nil
}

// Consume marks the envelope as processed. A second call for the same
// envelope fails, which is what stops a replay from minting twice.
func (t *LoopbackTransport) Consume(env Envelope) error {
	raw, err := env.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot serialize envelope")
	}
	digest := sha256.Sum256(raw)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.consumed[digest] {
		return errors.Wrap(errors.ErrDuplicate, "envelope already processed")
	}
	t.consumed[digest] = true
	return nil
}
