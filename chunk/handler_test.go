package chunk_test

import (
	"testing"

	"github.com/xornet-io/vault/chunk"
	"github.com/xornet-io/vault/cluster/meta"
	"github.com/xornet-io/vault/wire"
)

func newHandler(t *testing.T) *chunk.Handler {
	t.Helper()
	s, err := chunk.NewStore(t.TempDir(), 1<<30)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return chunk.NewHandler(s)
}

func msgID(b byte) meta.MessageId {
	var m meta.MessageId
	m[len(m)-1] = b
	return m
}

func TestHandlerStoreSuccess(t *testing.T) {
	h := newHandler(t)
	blob := meta.NewPublicBlob([]byte("payload"))

	duty := h.Store(blob, msgID(1))
	if duty.Send == nil || duty.Send.NodeEvent == nil {
		t.Fatalf("expected a NodeEvent duty, got %+v", duty)
	}
	if !duty.Send.NodeEvent.ChunkWriteHandled.IsSuccess() {
		t.Fatalf("expected a successful CmdResult")
	}
}

// A re-delivered store of the same content is idempotent success, not
// an error surfaced to the caller.
func TestHandlerStoreIdempotent(t *testing.T) {
	h := newHandler(t)
	blob := meta.NewPublicBlob([]byte("idempotent payload"))

	first := h.Store(blob, msgID(1))
	second := h.Store(blob, msgID(2))

	if !first.Send.NodeEvent.ChunkWriteHandled.IsSuccess() {
		t.Fatalf("expected first store to succeed")
	}
	if !second.Send.NodeEvent.ChunkWriteHandled.IsSuccess() {
		t.Fatalf("expected re-delivered store to be a silent success")
	}
}

func TestHandlerStoreForReplicationIsSilent(t *testing.T) {
	h := newHandler(t)
	blob := meta.NewPublicBlob([]byte("replicated payload"))

	if err := h.StoreForReplication(blob); err != nil {
		t.Fatalf("first StoreForReplication: %v", err)
	}
	if err := h.StoreForReplication(blob); err != nil {
		t.Fatalf("expected re-delivered replication to be a silent success, got %v", err)
	}
}

func TestHandlerGetFound(t *testing.T) {
	h := newHandler(t)
	blob := meta.NewPublicBlob([]byte("findable"))
	h.Store(blob, msgID(1))

	duty := h.Get(blob.Address(), msgID(2))
	if duty.Send == nil || duty.Send.QueryResponse == nil {
		t.Fatalf("expected a QueryResponse duty, got %+v", duty)
	}
	if !duty.Send.QueryResponse.GetBlob.IsSuccess() {
		t.Fatalf("expected a successful GetBlobResult")
	}
}

func TestHandlerGetNotFound(t *testing.T) {
	h := newHandler(t)
	addr := meta.NewPublicBlob([]byte("never stored")).Address()

	duty := h.Get(addr, msgID(1))
	result := duty.Send.QueryResponse.GetBlob
	if result.IsSuccess() {
		t.Fatalf("expected failure result for a missing blob")
	}
	if result.Err.Kind != wire.ErrDataNotFound {
		t.Fatalf("expected ErrDataNotFound, got %v", result.Err.Kind)
	}
}

func TestHandlerDeleteAbsentIsNoOp(t *testing.T) {
	h := newHandler(t)
	addr := meta.NewPublicBlob([]byte("absent")).Address()

	duty := h.Delete(addr, msgID(1), meta.EndUser{})
	if !duty.NoOp {
		t.Fatalf("expected a NoOp duty for deleting an absent blob, got %+v", duty)
	}
}

func TestHandlerDeletePublicIsInvalidOperation(t *testing.T) {
	h := newHandler(t)
	blob := meta.NewPublicBlob([]byte("immutable"))
	h.Store(blob, msgID(1))

	duty := h.Delete(blob.Address(), msgID(2), meta.EndUser{})
	result := duty.Send.NodeEvent.ChunkWriteHandled
	if result.IsSuccess() {
		t.Fatalf("expected deleting a Public blob to fail")
	}
	if result.Err.Data.Kind != wire.ErrInvalidOperation {
		t.Fatalf("expected ErrInvalidOperation, got %v", result.Err.Data.Kind)
	}
}

func TestHandlerDeletePrivateWrongOwnerIsInvalidOwners(t *testing.T) {
	h := newHandler(t)
	var owner meta.PublicKey
	owner[0] = 1
	blob := meta.NewPrivateBlob([]byte("secret"), owner)
	h.Store(blob, msgID(1))

	var impostor meta.PublicKey
	impostor[0] = 2
	duty := h.Delete(blob.Address(), msgID(2), meta.EndUser{PublicKey: impostor})

	result := duty.Send.NodeEvent.ChunkWriteHandled
	if result.IsSuccess() {
		t.Fatalf("expected deleting with the wrong owner to fail")
	}
	if result.Err.Data.Kind != wire.ErrInvalidOwners {
		t.Fatalf("expected ErrInvalidOwners, got %v", result.Err.Data.Kind)
	}
}

func TestHandlerDeletePrivateCorrectOwnerSucceeds(t *testing.T) {
	h := newHandler(t)
	var owner meta.PublicKey
	owner[0] = 9
	blob := meta.NewPrivateBlob([]byte("my own secret"), owner)
	h.Store(blob, msgID(1))

	duty := h.Delete(blob.Address(), msgID(2), meta.EndUser{PublicKey: owner})
	result := duty.Send.NodeEvent.ChunkWriteHandled
	if !result.IsSuccess() {
		t.Fatalf("expected delete by the correct owner to succeed, got %+v", result)
	}
}
