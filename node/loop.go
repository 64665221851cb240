package node

import (
	"context"

	"github.com/xornet-io/vault/cluster/meta"
	"github.com/xornet-io/vault/cmn/nlog"
	"github.com/xornet-io/vault/wire"
)

// InboundEvent is the tagged union of events a Loop accepts, mirroring
// the wire.NodeDuty vocabulary EventMapper produces from them. Exactly
// one field is set.
type InboundEvent struct {
	NodeCmd       *NodeCmdEvent
	NodeQuery     *NodeQueryEvent
	ClientCmd     *ClientCmdEvent
	ClientQuery   *ClientQueryEvent
	NodeEvent     *NodeEventEvent
	QueryResponse *QueryResponseEvent
}

type NodeCmdEvent struct{ Cmd wire.NodeCmd }
type NodeQueryEvent struct{ Query wire.NodeQuery }

type ClientCmdEvent struct {
	Cmd   wire.ChunksCmd
	MsgId meta.MessageId
}

type ClientQueryEvent struct {
	Query wire.ChunksQuery
	MsgId meta.MessageId
}

type NodeEventEvent struct {
	Evt wire.NodeEvent
	Src meta.XorName
}

type QueryResponseEvent struct {
	Resp wire.QueryResponseMsg
	Src  meta.XorName
}

// Loop is the cooperative dispatch loop spec.md §4.6 calls for: a
// single goroutine that takes each inbound routing event to
// completion against EventMapper and the resulting Dispatcher calls
// before accepting the next one. The real transport collaborator is
// out of this core's scope (spec.md §1); Loop only assumes something
// feeds it events over Submit, a local channel standing in for that
// collaborator in the standalone binaries.
type Loop struct {
	mapper     *EventMapper
	dispatcher *Dispatcher
	events     chan InboundEvent
}

func NewLoop(mapper *EventMapper, dispatcher *Dispatcher, queueSize int) *Loop {
	return &Loop{mapper: mapper, dispatcher: dispatcher, events: make(chan InboundEvent, queueSize)}
}

// Submit enqueues an inbound event, blocking if the queue is full.
func (l *Loop) Submit(ev InboundEvent) {
	l.events <- ev
}

// Close stops the loop once its queue drains.
func (l *Loop) Close() {
	close(l.events)
}

// Run processes events until Close drains the queue or ctx is
// cancelled. Each event is mapped and dispatched in full before Run
// receives the next one - there is no concurrent processing within a
// single Loop.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case ev, ok := <-l.events:
			if !ok {
				return
			}
			l.process(ctx, ev)
		case <-ctx.Done():
			return
		}
	}
}

func (l *Loop) process(ctx context.Context, ev InboundEvent) {
	switch {
	case ev.NodeCmd != nil:
		l.dispatch(ctx, l.mapper.HandleNodeCmd(ev.NodeCmd.Cmd))
	case ev.NodeQuery != nil:
		l.dispatch(ctx, l.mapper.HandleNodeQuery(ev.NodeQuery.Query))
	case ev.ClientCmd != nil:
		l.dispatch(ctx, l.mapper.HandleClientCmd(ev.ClientCmd.Cmd, ev.ClientCmd.MsgId))
	case ev.ClientQuery != nil:
		l.dispatch(ctx, l.mapper.HandleClientQuery(ev.ClientQuery.Query, ev.ClientQuery.MsgId))
	case ev.NodeEvent != nil:
		l.mapper.HandleNodeEvent(ev.NodeEvent.Evt, ev.NodeEvent.Src)
	case ev.QueryResponse != nil:
		duties := l.mapper.HandleQueryResponse(ev.QueryResponse.Resp, ev.QueryResponse.Src)
		if err := l.dispatcher.DispatchAll(ctx, duties); err != nil {
			nlog.Warningln("node: dispatch of query-response duties failed:", err)
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, duty wire.NodeDuty) {
	if err := l.dispatcher.Dispatch(ctx, duty); err != nil {
		nlog.Warningln("node: dispatch failed:", err)
	}
}
