package meta

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// PublicKeySize matches an ed25519 public key; the core never
// verifies signatures over it (that's the client-transport
// collaborator's job), it only compares and hashes it.
const PublicKeySize = 32

type PublicKey [PublicKeySize]byte

func (k PublicKey) String() string { return hex.EncodeToString(k[:])[:12] }
func (k PublicKey) Equal(o PublicKey) bool { return k == o }

// Name derives the XorName a public key maps to, used when an adult
// identifies itself by its reward/node key (spec.md §4.4.5).
func (k PublicKey) Name() XorName {
	return blake2b256(k[:])
}

// EndUser is a client identity. id() in spec.md is ID() here.
type EndUser struct {
	PublicKey PublicKey
}

func (u EndUser) ID() PublicKey { return u.PublicKey }

// MessageId is a 256-bit opaque correlation id.
type MessageId XorName

func (m MessageId) String() string { return XorName(m).String() }

// InResponseTo derives a MessageId distinct from, but deterministic
// given, its parent - spec.md §3.
func InResponseTo(parent MessageId) MessageId {
	return MessageId(blake2b256(append([]byte("in-response-to:"), parent[:]...)))
}

// FromContent derives a deterministic fingerprint from length-prefixed
// parts, so independently-constructed requests for the same logical
// operation (e.g. a republish to the same targets) coalesce at the
// network layer - spec.md §3, §4.4.4.
func FromContent(parts ...[]byte) MessageId {
	h, _ := blake2b.New256(nil)
	var lenBuf [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(p)))
		h.Write(lenBuf[:])
		h.Write(p)
	}
	var out MessageId
	copy(out[:], h.Sum(nil))
	return out
}

// NewMessageId mints a fresh, effectively-unique id for section- or
// client-originated requests that are not content-addressed (e.g. a
// first-time client write). It is not required to be deterministic.
func NewMessageId(randSource []byte) MessageId {
	return MessageId(blake2b256(randSource))
}

func blake2b256(data []byte) XorName {
	sum := blake2b.Sum256(data)
	return XorName(sum)
}
