package node_test

import (
	"context"
	"sync"
	"testing"

	"github.com/xornet-io/vault/cluster/meta"
	"github.com/xornet-io/vault/node"
	"github.com/xornet-io/vault/wire"
)

type recordingSender struct {
	mu        sync.Mutex
	sentTo    []meta.XorName
	sentOut   int
	proposed  []meta.XorName
	failTarget meta.XorName
}

func (s *recordingSender) SendToNode(_ context.Context, target meta.XorName, _ *wire.NodeCmd, _ *wire.NodeQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentTo = append(s.sentTo, target)
	if target == s.failTarget {
		return errBoom
	}
	return nil
}

func (s *recordingSender) SendOutgoing(context.Context, wire.OutgoingMsg) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentOut++
	return nil
}

func (s *recordingSender) ProposeOffline(_ context.Context, names []meta.XorName) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposed = append(s.proposed, names...)
	return nil
}

type boomErr struct{}

func (boomErr) Error() string { return "boom" }

var errBoom = boomErr{}

func xn(b byte) meta.XorName {
	var n meta.XorName
	n[len(n)-1] = b
	return n
}

func TestDispatchFanout(t *testing.T) {
	sender := &recordingSender{}
	d := node.NewDispatcher(sender)

	duty := wire.NodeDuty{SendToNodes: &wire.SendToNodes{
		Targets: []meta.XorName{xn(1), xn(2), xn(3)},
		NodeCmd: &wire.NodeCmd{},
	}}

	if err := d.Dispatch(context.Background(), duty); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sentTo) != 3 {
		t.Fatalf("expected 3 sends, got %d", len(sender.sentTo))
	}
}

func TestDispatchFanoutPartialFailure(t *testing.T) {
	sender := &recordingSender{failTarget: xn(2)}
	d := node.NewDispatcher(sender)

	duty := wire.NodeDuty{SendToNodes: &wire.SendToNodes{
		Targets: []meta.XorName{xn(1), xn(2), xn(3)},
		NodeCmd: &wire.NodeCmd{},
	}}

	if err := d.Dispatch(context.Background(), duty); err == nil {
		t.Fatalf("expected an error from the failing target")
	}
}

func TestDispatchNoOp(t *testing.T) {
	sender := &recordingSender{}
	d := node.NewDispatcher(sender)

	if err := d.Dispatch(context.Background(), wire.DutyNoOp()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sentTo) != 0 || sender.sentOut != 0 {
		t.Fatalf("expected no sends for a NoOp duty")
	}
}

func TestDispatchProposeOffline(t *testing.T) {
	sender := &recordingSender{}
	d := node.NewDispatcher(sender)

	names := []meta.XorName{xn(5), xn(6)}
	if err := d.Dispatch(context.Background(), wire.DutyProposeOffline(names)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.proposed) != 2 {
		t.Fatalf("expected 2 proposed names, got %d", len(sender.proposed))
	}
}
