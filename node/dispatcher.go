package node

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/xornet-io/vault/cluster/meta"
	"github.com/xornet-io/vault/cmn/nlog"
	"github.com/xornet-io/vault/wire"
)

// Sender is the transport collaborator a Dispatcher hands outbound
// traffic to. Its implementation - serialization and the actual
// socket/stream - is out of this core's scope (spec.md §1); Dispatcher
// only knows it can send one message to one node, or to every member
// of a section.
type Sender interface {
	SendToNode(ctx context.Context, target meta.XorName, cmd *wire.NodeCmd, query *wire.NodeQuery) error
	SendOutgoing(ctx context.Context, msg wire.OutgoingMsg) error
	ProposeOffline(ctx context.Context, names []meta.XorName) error
}

// Dispatcher turns a single wire.NodeDuty into the send calls it
// describes, fanning SendToNodes out concurrently via
// golang.org/x/sync/errgroup - one in-flight call per target, the
// first failure cancels the rest's context but every target is still
// attempted before Dispatch returns.
type Dispatcher struct {
	sender Sender
}

func NewDispatcher(sender Sender) *Dispatcher { return &Dispatcher{sender: sender} }

// Dispatch executes duty against the configured Sender. A NoOp duty
// costs nothing; Send, SendToNodes and ProposeOffline are mutually
// exclusive per wire.NodeDuty's construction helpers.
func (d *Dispatcher) Dispatch(ctx context.Context, duty wire.NodeDuty) error {
	switch {
	case duty.NoOp:
		return nil
	case duty.Send != nil:
		return d.sender.SendOutgoing(ctx, *duty.Send)
	case duty.SendToNodes != nil:
		return d.dispatchFanout(ctx, *duty.SendToNodes)
	case duty.ProposeOffline != nil:
		return d.sender.ProposeOffline(ctx, duty.ProposeOffline)
	default:
		return nil
	}
}

// DispatchAll is Dispatch applied to a batch, e.g. the duties returned
// by a single RecordAdultReadLiveness call.
func (d *Dispatcher) DispatchAll(ctx context.Context, duties []wire.NodeDuty) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, duty := range duties {
		duty := duty
		g.Go(func() error { return d.Dispatch(gctx, duty) })
	}
	return g.Wait()
}

func (d *Dispatcher) dispatchFanout(ctx context.Context, fanout wire.SendToNodes) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, target := range fanout.Targets {
		target := target
		g.Go(func() error {
			err := d.sender.SendToNode(gctx, target, fanout.NodeCmd, fanout.NodeQuery)
			if err != nil {
				nlog.Warningln("node: send to", target, "failed:", err)
			}
			return err
		})
	}
	return g.Wait()
}
