package node

import (
	"context"

	"github.com/xornet-io/vault/cluster/meta"
	"github.com/xornet-io/vault/cmn/nlog"
	"github.com/xornet-io/vault/wire"
)

// LogSender is a Sender that logs the send it would have made instead
// of making it. It stands in for the real transport collaborator
// spec.md §1 declares out of scope, the same way StaticReader stands
// in for the routing/membership one - enough for a standalone process
// to drive its Dispatcher end-to-end without a network stack.
type LogSender struct{}

func (LogSender) SendToNode(_ context.Context, target meta.XorName, cmd *wire.NodeCmd, query *wire.NodeQuery) error {
	nlog.Infoln("node: (no transport) would send to", target, "cmd", cmd != nil, "query", query != nil)
	return nil
}

func (LogSender) SendOutgoing(_ context.Context, msg wire.OutgoingMsg) error {
	nlog.Infoln("node: (no transport) would send outgoing to", msg.Dst)
	return nil
}

func (LogSender) ProposeOffline(_ context.Context, names []meta.XorName) error {
	nlog.Infoln("node: (no transport) would propose offline", names)
	return nil
}
