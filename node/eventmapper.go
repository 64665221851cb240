// Package node is the glue layer (C6): it turns inbound routing
// events into calls against the chunk handler (adult side) or the
// blob-records component (elder side), and dispatches the resulting
// duties. Nothing here decides placement or liveness policy - it only
// routes to the component that does (spec.md §6).
/*
 * Copyright (c) 2024, the module authors. All rights reserved.
 */
package node

import (
	"github.com/xornet-io/vault/chunk"
	"github.com/xornet-io/vault/cluster/meta"
	"github.com/xornet-io/vault/cmn/nlog"
	"github.com/xornet-io/vault/metadata"
	"github.com/xornet-io/vault/wire"
)

// EventMapper dispatches the two inbound event families spec.md §6
// lists: adult-side commands/queries, and elder-side events/responses
// correlating against a tracked operation.
type EventMapper struct {
	handler *chunk.Handler
	records *metadata.BlobRecords
}

func NewEventMapper(handler *chunk.Handler, records *metadata.BlobRecords) *EventMapper {
	return &EventMapper{handler: handler, records: records}
}

// HandleNodeCmd is the adult side of spec.md §6: a NodeCmd arrives
// from this blob's metadata section, destined for the local store.
func (m *EventMapper) HandleNodeCmd(cmd wire.NodeCmd) wire.NodeDuty {
	switch {
	case cmd.Chunks != nil:
		return m.handleChunksCmd(*cmd.Chunks, cmd.MsgId)
	case cmd.System != nil:
		if err := m.handler.StoreForReplication(cmd.System.ReplicateChunk); err != nil {
			nlog.Warningln("node: replication store failed", err)
		}
		return wire.DutyNoOp()
	default:
		return wire.DutyNoOp()
	}
}

func (m *EventMapper) handleChunksCmd(cmd wire.ChunksCmd, msgID meta.MessageId) wire.NodeDuty {
	switch {
	case cmd.Cmd.New != nil:
		return m.handler.Store(*cmd.Cmd.New, msgID)
	case cmd.Cmd.DeletePrivate != nil:
		return m.handler.Delete(*cmd.Cmd.DeletePrivate, msgID, cmd.Origin)
	default:
		return wire.DutyNoOp()
	}
}

// HandleNodeQuery is the adult side's read path.
func (m *EventMapper) HandleNodeQuery(query wire.NodeQuery) wire.NodeDuty {
	if query.Chunks == nil || query.Chunks.Query.Get == nil {
		return wire.DutyNoOp()
	}
	return m.handler.Get(*query.Chunks.Query.Get, query.MsgId)
}

// HandleClientCmd is the elder side's write entry point: a client
// command arriving at the metadata section owning the target blob.
func (m *EventMapper) HandleClientCmd(cmd wire.ChunksCmd, msgID meta.MessageId) wire.NodeDuty {
	return m.records.Write(cmd, msgID)
}

// HandleClientQuery is the elder side's read entry point.
func (m *EventMapper) HandleClientQuery(query wire.ChunksQuery, msgID meta.MessageId) wire.NodeDuty {
	return m.records.Read(query, msgID)
}

// HandleNodeEvent correlates a ChunkWriteHandled event against the
// tracked write op; spec.md §4.4.3 assigns it no forwarding duty of
// its own, so there is nothing further to dispatch here beyond the
// liveness bookkeeping.
func (m *EventMapper) HandleNodeEvent(evt wire.NodeEvent, src meta.XorName) {
	if evt.ChunkWriteHandled == nil {
		return
	}
	if _, _, ok := m.records.RecordAdultWriteLiveness(evt.CorrelationId, src); !ok {
		nlog.Debugln("node: write event for untracked or non-write correlation id", evt.CorrelationId)
	}
}

// HandleQueryResponse correlates a query response and returns whatever
// duties fall out of it (a client forward, a ProposeOffline, both, or
// neither).
func (m *EventMapper) HandleQueryResponse(resp wire.QueryResponseMsg, src meta.XorName) []wire.NodeDuty {
	duties, err := m.records.RecordAdultReadLiveness(resp.CorrelationId, resp, src)
	if err != nil {
		nlog.Warningln("node: query response correlation failed", err)
		return nil
	}
	return duties
}
