package metadata

import (
	"sort"

	"github.com/xornet-io/vault/cluster/meta"
	"github.com/xornet-io/vault/cmn/nlog"
	"github.com/xornet-io/vault/liveness"
	"github.com/xornet-io/vault/wire"
)

// BlobRecords is the elder-side component (C4): placement, fan-out
// dispatch, response correlation, full-adult accounting, and
// republish on churn (spec.md §4.4).
type BlobRecords struct {
	reader         Reader
	full           *FullAdults
	liveness       *liveness.Tracker
	chunkCopyCount int
}

func NewBlobRecords(reader Reader, full *FullAdults, liveTracker *liveness.Tracker, chunkCopyCount int) *BlobRecords {
	return &BlobRecords{reader: reader, full: full, liveness: liveTracker, chunkCopyCount: chunkCopyCount}
}

// Write dispatches a client write command: a new blob to store, or a
// Private blob to delete (spec.md §4.4.1).
func (r *BlobRecords) Write(cmd wire.ChunksCmd, msgID meta.MessageId) wire.NodeDuty {
	switch {
	case cmd.Cmd.New != nil:
		return r.store(*cmd.Cmd.New, msgID, cmd.ClientSigned, cmd.Origin)
	case cmd.Cmd.DeletePrivate != nil:
		return r.delete(*cmd.Cmd.DeletePrivate, msgID, cmd.ClientSigned, cmd.Origin)
	default:
		return wire.DutyNoOp()
	}
}

// store places a new blob with the adults closest to it, excluding
// full ones, and fans out with AtDestination aggregation so each
// adult's ChunkWriteHandled event reaches this section independently
// (spec.md §4.4.1). A Private blob's owner must match the signing
// client before anything else happens - a mismatch is rejected here,
// at the elder, rather than left for the adult to catch.
func (r *BlobRecords) store(data meta.Blob, msgID meta.MessageId, signed wire.ClientSigned, origin meta.EndUser) wire.NodeDuty {
	if data.IsPrivate() && data.Owner != signed.PublicKey {
		em := wire.ErrorMessage{Kind: wire.ErrInvalidOwners, Owner: signed.PublicKey}
		return wire.DutySend(wire.BuildClientErrorResponse(wire.CmdError{Data: em}, msgID, origin))
	}

	targets := r.getHoldersForChunk(data.Name())
	if len(targets) == 0 {
		return r.sendNoAdults(msgID, origin)
	}

	if !r.liveness.NewWrite(msgID, &origin, data.Address(), targets) {
		nlog.Debugln("metadata: duplicate write delivery, dropping", msgID)
		return wire.DutyNoOp()
	}

	return wire.NodeDuty{SendToNodes: &wire.SendToNodes{
		Targets: targets,
		NodeCmd: &wire.NodeCmd{
			Chunks: &wire.ChunksCmd{Cmd: wire.NewBlobWrite(data), ClientSigned: signed, Origin: origin},
			MsgId:  msgID,
		},
		Aggregation: wire.AggregationAtDestination,
	}}
}

// delete targets the same placement set a store would have used -
// ownership/variant checks happen at the adult (spec.md §4.2) once the
// command reaches it.
func (r *BlobRecords) delete(addr meta.BlobAddress, msgID meta.MessageId, signed wire.ClientSigned, origin meta.EndUser) wire.NodeDuty {
	targets := r.getHoldersForChunk(addr.Name)
	if len(targets) == 0 {
		return r.sendNoAdults(msgID, origin)
	}

	if !r.liveness.NewWrite(msgID, &origin, addr, targets) {
		nlog.Debugln("metadata: duplicate delete delivery, dropping", msgID)
		return wire.DutyNoOp()
	}

	return wire.NodeDuty{SendToNodes: &wire.SendToNodes{
		Targets: targets,
		NodeCmd: &wire.NodeCmd{
			Chunks: &wire.ChunksCmd{Cmd: wire.DeletePrivateWrite(addr), ClientSigned: signed, Origin: origin},
			MsgId:  msgID,
		},
		Aggregation: wire.AggregationAtDestination,
	}}
}

// Read dispatches a client Get query (spec.md §4.4.2).
func (r *BlobRecords) Read(query wire.ChunksQuery, msgID meta.MessageId) wire.NodeDuty {
	get := query.Query.Get
	if get == nil {
		return wire.DutyNoOp()
	}
	return r.get(*get, msgID, query.Origin)
}

// get's placement set is unioned with FullAdults: a full adult may
// still hold a blob it stored before reaching capacity, so it remains
// a valid read target even though it is excluded from new writes
// (spec.md §4.4.2).
func (r *BlobRecords) get(addr meta.BlobAddress, msgID meta.MessageId, origin meta.EndUser) wire.NodeDuty {
	targets := unionNames(r.getHoldersForChunk(addr.Name), r.full.Snapshot())
	if len(targets) == 0 {
		return r.sendNoAdults(msgID, origin)
	}

	if !r.liveness.NewRead(msgID, addr, origin, targets) {
		nlog.Debugln("metadata: duplicate read delivery, dropping", msgID)
		return wire.DutyNoOp()
	}

	return wire.NodeDuty{SendToNodes: &wire.SendToNodes{
		Targets: targets,
		NodeQuery: &wire.NodeQuery{
			Chunks: &wire.ChunksQuery{Query: wire.GetRead(addr), Origin: origin},
			MsgId:  msgID,
		},
		Aggregation: wire.AggregationNone,
	}}
}

// RecordAdultWriteLiveness bookkeeps a ChunkWriteHandled event from
// src: it removes src as a pending target for msgID and reports
// whether msgID really was a write this elder is tracking. Unlike its
// read counterpart, the write path produces no forwarding duty of its
// own - client-facing write acknowledgement is out of this core's
// scope (spec.md §4.4.3, §1).
func (r *BlobRecords) RecordAdultWriteLiveness(msgID meta.MessageId, src meta.XorName) (meta.BlobAddress, *meta.EndUser, bool) {
	return r.liveness.RecordAdultWriteLiveness(msgID, src)
}

// RecordAdultReadLiveness correlates a QueryResponseMsg from src
// against the tracked read operation, forwards the result to the
// client unless src is a known-full adult reporting failure (spec.md
// §4.4.3's suppression rule - a full adult refusing a read it never
// promised to keep is not news), and runs the unresponsiveness check
// on every call so stalled adults get proposed offline promptly.
func (r *BlobRecords) RecordAdultReadLiveness(correlationID meta.MessageId, response wire.QueryResponseMsg, src meta.XorName) ([]wire.NodeDuty, error) {
	if response.GetBlob == nil {
		return nil, wire.LogicError{Msg: "RecordAdultReadLiveness: QueryResponseMsg has no GetBlob"}
	}

	_, origin, ok := r.liveness.RecordAdultReadLiveness(correlationID, src, response.GetBlob.IsSuccess())

	var duties []wire.NodeDuty
	if ok {
		suppressed := r.full.Contains(src) && !response.GetBlob.IsSuccess()
		if !suppressed {
			duties = append(duties, wire.DutySend(wire.BuildClientQueryResponse(*response.GetBlob, correlationID, origin)))
		} else {
			nlog.Debugln("metadata: suppressing failure from known-full adult", src)
		}
	}

	if unresponsive := r.liveness.FindUnresponsiveAdults(); len(unresponsive) > 0 {
		names := make([]meta.XorName, len(unresponsive))
		for i, u := range unresponsive {
			names[i] = u.Name
		}
		duties = append(duties, wire.DutyProposeOffline(names))
	}

	return duties, nil
}

// RepublishChunk re-sends a blob to its current placement set with a
// content-derived MessageId, so elders independently reacting to the
// same churn event coalesce into a single fan-out network-wide
// (spec.md §4.4.4).
func (r *BlobRecords) RepublishChunk(data meta.Blob) wire.NodeDuty {
	targets := r.getHoldersForChunk(data.Name())
	if len(targets) == 0 {
		return wire.DutyNoOp()
	}

	sorted := append([]meta.XorName(nil), targets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	name := data.Name()
	parts := [][]byte{name[:], data.Owner[:]}
	for _, t := range sorted {
		parts = append(parts, t[:])
	}
	msgID := meta.FromContent(parts...)

	return wire.NodeDuty{SendToNodes: &wire.SendToNodes{
		Targets: sorted,
		NodeCmd: &wire.NodeCmd{
			System: &wire.SystemCmd{ReplicateChunk: data},
			MsgId:  msgID,
		},
		Aggregation: wire.AggregationNone,
	}}
}

// IncreaseFullNodeCount records that nodePK has reported itself full
// (spec.md §4.4.5).
func (r *BlobRecords) IncreaseFullNodeCount(nodePK meta.PublicKey) {
	r.full.Insert(nodePK.Name())
}

// DecreaseFullNodeCountIfPresent clears a full marker, silently if
// absent (spec.md §4.4.5).
func (r *BlobRecords) DecreaseFullNodeCountIfPresent(name meta.XorName) {
	r.full.RemoveIfPresent(name)
}

// RetainMembersOnly drops section-absent adults from both the
// liveness tracker and the full-adult set (spec.md §4.4.6, S5).
func (r *BlobRecords) RetainMembersOnly(members []meta.XorName) {
	r.full.RetainMembersOnly(members)
	r.liveness.RetainMembersOnly(members)
	r.liveness.RecomputeClosestAdults()
}

// GetDataOf returns the subset of known full adults matching prefix,
// handed to a sibling section formed by a split (spec.md §4.4.6).
func (r *BlobRecords) GetDataOf(prefix meta.Prefix) []meta.XorName {
	return r.full.MatchingPrefix(prefix)
}

// Update merges a full-adult snapshot received from a sibling or
// merging section into this one's (spec.md §4.4.6).
func (r *BlobRecords) Update(fullAdults []meta.XorName) {
	r.full.Merge(fullAdults)
}

func (r *BlobRecords) getHoldersForChunk(target meta.XorName) []meta.XorName {
	fullSet := make(map[meta.XorName]struct{})
	for _, n := range r.full.Snapshot() {
		fullSet[n] = struct{}{}
	}
	return r.reader.NonFullAdultsClosestTo(target, fullSet, r.chunkCopyCount)
}

func (r *BlobRecords) sendNoAdults(msgID meta.MessageId, origin meta.EndUser) wire.NodeDuty {
	cmdErr := wire.CmdError{Data: wire.ErrorMessage{Kind: wire.ErrNoAdults, Prefix: r.reader.OurPrefix()}}
	return wire.DutySend(wire.BuildClientErrorResponse(cmdErr, msgID, origin))
}

func unionNames(a, b []meta.XorName) []meta.XorName {
	set := make(map[meta.XorName]struct{}, len(a)+len(b))
	for _, n := range a {
		set[n] = struct{}{}
	}
	for _, n := range b {
		set[n] = struct{}{}
	}
	out := make([]meta.XorName, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	return out
}
