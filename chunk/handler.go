package chunk

import (
	"github.com/xornet-io/vault/cluster/meta"
	"github.com/xornet-io/vault/cmn/nlog"
	"github.com/xornet-io/vault/wire"
)

// Handler wraps a Store with the ownership checks and outbound-event
// construction spec.md §4.2 calls for. It runs on an adult.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler { return &Handler{store: store} }

// Store treats ErrDataExists as success (idempotent write); any other
// store failure surfaces as a Data command error in a
// ChunkWriteHandled event addressed to the blob's metadata section.
func (h *Handler) Store(blob meta.Blob, msgID meta.MessageId) wire.NodeDuty {
	err := h.store.Put(blob)
	var cmdResult wire.CmdResult
	switch {
	case err == nil, err == ErrDataExists:
		nlog.Debugln("chunk: stored or already present", blob.Address())
	default:
		nlog.Warningln("chunk: store failed", blob.Address(), err)
		cmdResult = wire.CmdResult{Err: &wire.CmdError{Data: wire.ErrorMessage{Kind: wire.ErrStoreFailure, Detail: err.Error()}}}
	}

	return wire.DutySend(wire.OutgoingMsg{
		NodeEvent: &wire.NodeEvent{
			ChunkWriteHandled: &cmdResult,
			Id:                meta.InResponseTo(msgID),
			CorrelationId:     msgID,
		},
		Dst:           wire.ToSection(blob.Address().Name),
		SectionSource: false,
		Aggregation:   wire.AggregationNone,
	})
}

// StoreForReplication is Store's fire-and-forget sibling: existing
// data is a silent success and no duty is produced at all, because
// replication is initiated by the section, not a client awaiting a
// reply.
func (h *Handler) StoreForReplication(blob meta.Blob) error {
	err := h.store.Put(blob)
	if err == ErrDataExists {
		return nil
	}
	return err
}

// Get answers a read, addressed to the chunk's own metadata section;
// the elder forwards it to the client after recording adult liveness
// (spec.md §4.2, §4.4.3).
func (h *Handler) Get(addr meta.BlobAddress, msgID meta.MessageId) wire.NodeDuty {
	blob, err := h.store.Get(addr)
	result := wire.GetBlobResult{Blob: blob}
	if err != nil {
		em := wire.ErrorMessage{Kind: wire.ErrDataNotFound, Addr: addr}
		result = wire.GetBlobResult{Err: &em}
	}

	return wire.DutySend(wire.OutgoingMsg{
		QueryResponse: &wire.QueryResponseMsg{
			GetBlob:       &result,
			Id:            meta.InResponseTo(msgID),
			CorrelationId: msgID,
		},
		Dst:           wire.ToSection(addr.Name),
		SectionSource: false,
		Aggregation:   wire.AggregationNone,
	})
}

// Delete implements the three-way policy from spec.md §4.2: silent
// no-op if absent, InvalidOperation if Public, ownership-checked
// delete if Private.
func (h *Handler) Delete(addr meta.BlobAddress, msgID meta.MessageId, origin meta.EndUser) wire.NodeDuty {
	if !h.store.Has(addr) {
		nlog.Debugln("chunk: delete of absent blob, no-op", addr)
		return wire.DutyNoOp()
	}

	blob, err := h.store.Get(addr)
	var cmdErr *wire.ErrorMessage
	switch {
	case err != nil:
		e := wire.ErrorMessage{Kind: wire.ErrNoSuchKey}
		cmdErr = &e
	case blob.Variant == meta.VariantPublic:
		e := wire.ErrorMessage{Kind: wire.ErrInvalidOperation, Detail: "cannot delete a Public (immutable) blob"}
		cmdErr = &e
	case blob.Owner != origin.ID():
		e := wire.ErrorMessage{Kind: wire.ErrInvalidOwners, Owner: origin.ID()}
		cmdErr = &e
	default:
		if derr := h.store.Delete(addr); derr != nil {
			e := wire.ErrorMessage{Kind: wire.ErrFailedToDelete}
			cmdErr = &e
		}
	}

	var result wire.CmdResult
	if cmdErr != nil {
		result.Err = &wire.CmdError{Data: *cmdErr}
	}

	return wire.DutySend(wire.OutgoingMsg{
		NodeEvent: &wire.NodeEvent{
			ChunkWriteHandled: &result,
			Id:                meta.InResponseTo(msgID),
			CorrelationId:     msgID,
		},
		Dst:           wire.ToSection(addr.Name),
		SectionSource: false,
		Aggregation:   wire.AggregationNone,
	})
}

func (h *Handler) Keys() []meta.BlobAddress      { return h.store.Keys() }
func (h *Handler) UsedSpaceRatio() float64       { return h.store.UsedSpaceRatio() }
func (h *Handler) String() string                { return "ChunkHandler" }
