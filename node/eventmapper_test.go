package node_test

import (
	"sort"
	"testing"

	"github.com/xornet-io/vault/chunk"
	"github.com/xornet-io/vault/cluster/meta"
	"github.com/xornet-io/vault/liveness"
	"github.com/xornet-io/vault/metadata"
	"github.com/xornet-io/vault/node"
	"github.com/xornet-io/vault/wire"
)

// fakeReader is the same fixed-membership Reader fixture the metadata
// package tests itself against, recreated here since it is unexported.
type fakeReader struct{ members []meta.XorName }

func (f *fakeReader) OurPrefix() meta.Prefix { return meta.Prefix{} }
func (f *fakeReader) OurName() meta.XorName  { return meta.XorName{} }
func (f *fakeReader) Members() []meta.XorName {
	return append([]meta.XorName(nil), f.members...)
}

func (f *fakeReader) NonFullAdultsClosestTo(target meta.XorName, full map[meta.XorName]struct{}, count int) []meta.XorName {
	candidates := make([]meta.XorName, 0, len(f.members))
	for _, m := range f.members {
		if _, isFull := full[m]; !isFull {
			candidates = append(candidates, m)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return meta.CmpDistance(target, candidates[i], candidates[j]) < 0
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return candidates
}

func newAdultMapper(t *testing.T) *node.EventMapper {
	t.Helper()
	store, err := chunk.NewStore(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("chunk.NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return node.NewEventMapper(chunk.NewHandler(store), nil)
}

func newElderMapper(members []meta.XorName) *node.EventMapper {
	reader := &fakeReader{members: members}
	records := metadata.NewBlobRecords(reader, metadata.NewFullAdults(), liveness.New(), 2)
	return node.NewEventMapper(nil, records)
}

// HandleNodeCmd's Chunks branch is the adult-side write path: a New
// command is stored and acknowledged with a ChunkWriteHandled event.
func TestHandleNodeCmdStoresAndAcknowledges(t *testing.T) {
	mapper := newAdultMapper(t)
	blob := meta.NewPublicBlob([]byte("payload"))
	msgID := meta.NewMessageId([]byte("cmd-1"))

	duty := mapper.HandleNodeCmd(wire.NodeCmd{
		Chunks: &wire.ChunksCmd{Cmd: wire.NewBlobWrite(blob)},
		MsgId:  msgID,
	})

	if duty.Send == nil || duty.Send.NodeEvent == nil {
		t.Fatalf("expected a NodeEvent duty, got %+v", duty)
	}
	if duty.Send.NodeEvent.ChunkWriteHandled.Err != nil {
		t.Fatalf("expected success, got %+v", duty.Send.NodeEvent.ChunkWriteHandled.Err)
	}
}

// HandleNodeCmd's System branch replicates without producing a duty.
func TestHandleNodeCmdReplicatesSilently(t *testing.T) {
	mapper := newAdultMapper(t)
	blob := meta.NewPublicBlob([]byte("replica"))

	duty := mapper.HandleNodeCmd(wire.NodeCmd{System: &wire.SystemCmd{ReplicateChunk: blob}})

	if !duty.NoOp {
		t.Fatalf("expected a NoOp duty for replication, got %+v", duty)
	}
}

// HandleNodeQuery is the adult-side read path, forwarding to Get.
func TestHandleNodeQueryReadsStoredBlob(t *testing.T) {
	mapper := newAdultMapper(t)
	blob := meta.NewPublicBlob([]byte("stored"))
	mapper.HandleNodeCmd(wire.NodeCmd{Chunks: &wire.ChunksCmd{Cmd: wire.NewBlobWrite(blob)}})

	msgID := meta.NewMessageId([]byte("q-1"))
	duty := mapper.HandleNodeQuery(wire.NodeQuery{
		Chunks: &wire.ChunksQuery{Query: wire.GetRead(blob.Address())},
		MsgId:  msgID,
	})

	if duty.Send == nil || duty.Send.QueryResponse == nil {
		t.Fatalf("expected a QueryResponse duty, got %+v", duty)
	}
	if string(duty.Send.QueryResponse.GetBlob.Blob.Contents) != string(blob.Contents) {
		t.Fatalf("expected the stored blob to come back")
	}
}

// HandleClientCmd is the elder-side write entry point: it forwards
// straight to BlobRecords.Write.
func TestHandleClientCmdFansOutToAdults(t *testing.T) {
	mapper := newElderMapper([]meta.XorName{xn(1), xn(2), xn(3)})
	blob := meta.NewPublicBlob([]byte("elder-write"))

	duty := mapper.HandleClientCmd(wire.ChunksCmd{Cmd: wire.NewBlobWrite(blob)}, meta.NewMessageId([]byte("cc-1")))

	if duty.SendToNodes == nil {
		t.Fatalf("expected a fan-out duty, got %+v", duty)
	}
}

// HandleClientQuery is the elder-side read entry point.
func TestHandleClientQueryFansOutToAdults(t *testing.T) {
	mapper := newElderMapper([]meta.XorName{xn(1), xn(2)})
	addr := meta.NewPublicBlob([]byte("elder-read")).Address()

	duty := mapper.HandleClientQuery(wire.ChunksQuery{Query: wire.GetRead(addr)}, meta.NewMessageId([]byte("cq-1")))

	if duty.SendToNodes == nil {
		t.Fatalf("expected a fan-out duty, got %+v", duty)
	}
}

// HandleNodeEvent correlates a write acknowledgement against a
// tracked write; an untracked correlation id is simply logged.
func TestHandleNodeEventCorrelatesTrackedWrite(t *testing.T) {
	members := []meta.XorName{xn(1), xn(2)}
	mapper := newElderMapper(members)
	blob := meta.NewPublicBlob([]byte("tracked"))
	msgID := meta.NewMessageId([]byte("ne-1"))

	duty := mapper.HandleClientCmd(wire.ChunksCmd{Cmd: wire.NewBlobWrite(blob)}, msgID)
	target := duty.SendToNodes.Targets[0]

	// Should not panic, and should not be observable beyond logging -
	// HandleNodeEvent returns nothing.
	mapper.HandleNodeEvent(wire.NodeEvent{ChunkWriteHandled: &wire.CmdResult{}, CorrelationId: msgID}, target)
	mapper.HandleNodeEvent(wire.NodeEvent{ChunkWriteHandled: &wire.CmdResult{}, CorrelationId: meta.NewMessageId([]byte("untracked"))}, target)
}

// HandleQueryResponse correlates a read response and returns the
// client-forwarding duty.
func TestHandleQueryResponseForwardsToClient(t *testing.T) {
	members := []meta.XorName{xn(1), xn(2)}
	mapper := newElderMapper(members)
	blob := meta.NewPublicBlob([]byte("round-trip"))
	origin := meta.EndUser{PublicKey: pk(3)}
	msgID := meta.NewMessageId([]byte("qr-1"))

	duty := mapper.HandleClientQuery(wire.ChunksQuery{Query: wire.GetRead(blob.Address()), Origin: origin}, msgID)
	target := duty.SendToNodes.Targets[0]

	resp := wire.QueryResponseMsg{GetBlob: &wire.GetBlobResult{Blob: blob}, CorrelationId: msgID}
	duties := mapper.HandleQueryResponse(resp, target)

	forwarded := false
	for _, d := range duties {
		if d.Send != nil && d.Send.QueryResponse != nil {
			forwarded = true
		}
	}
	if !forwarded {
		t.Fatalf("expected a forwarded QueryResponse duty, got %+v", duties)
	}
}

func pk(b byte) meta.PublicKey {
	var k meta.PublicKey
	k[len(k)-1] = b
	return k
}
