package wire

import "github.com/xornet-io/vault/cluster/meta"

// Aggregation is the reply-aggregation policy a fan-out is sent with
// (spec.md §4.4.1): AtDestination lets each target reply
// independently; None means the metadata section performs no
// aggregation at all (used for reads and republish).
type Aggregation int

const (
	AggregationNone Aggregation = iota
	AggregationAtDestination
)

// ClientSigned carries the signature metadata a client attached to a
// command; verifying it is the client-transport collaborator's job
// (spec.md §1, Out of scope) - the core only reads PublicKey off it.
type ClientSigned struct {
	PublicKey meta.PublicKey
}

// BlobWrite is the tagged union of write operations an elder can
// fan out to adults (spec.md §3).
type BlobWrite struct {
	New           *meta.Blob
	DeletePrivate *meta.BlobAddress
}

func NewBlobWrite(b meta.Blob) BlobWrite               { return BlobWrite{New: &b} }
func DeletePrivateWrite(a meta.BlobAddress) BlobWrite   { return BlobWrite{DeletePrivate: &a} }

// BlobRead is the tagged union of read operations (spec.md §3, §4.4.2).
type BlobRead struct {
	Get *meta.BlobAddress
}

func GetRead(a meta.BlobAddress) BlobRead { return BlobRead{Get: &a} }

// NodeCmd is a command an elder dispatches to adults.
type NodeCmd struct {
	Chunks   *ChunksCmd
	System   *SystemCmd
	MsgId    meta.MessageId
}

type ChunksCmd struct {
	Cmd          BlobWrite
	ClientSigned ClientSigned
	Origin       meta.EndUser
}

type SystemCmd struct {
	ReplicateChunk meta.Blob
}

// NodeQuery is a query an elder dispatches to adults.
type NodeQuery struct {
	Chunks *ChunksQuery
	MsgId  meta.MessageId
}

type ChunksQuery struct {
	Query  BlobRead
	Origin meta.EndUser
}

// NodeEvent is what an adult sends back to a metadata section after
// handling a command.
type NodeEvent struct {
	ChunkWriteHandled *CmdResult
	Id                meta.MessageId
	CorrelationId     meta.MessageId
}

// QueryResponseMsg is what an adult sends back after handling a query.
type QueryResponseMsg struct {
	GetBlob       *GetBlobResult
	Id            meta.MessageId
	CorrelationId meta.MessageId
}

// Dst is the destination of an OutgoingMsg: exactly one of Section or
// Client is set.
type Dst struct {
	Section *meta.XorName
	Client  *meta.EndUser
}

func ToSection(name meta.XorName) Dst { return Dst{Section: &name} }
func ToClient(u meta.EndUser) Dst     { return Dst{Client: &u} }

// OutgoingMsg is a single, fully-addressed reply envelope.
type OutgoingMsg struct {
	NodeEvent     *NodeEvent
	QueryResponse *QueryResponseMsg
	ClientError   *ClientErrorMsg
	Dst           Dst
	SectionSource bool
	Aggregation   Aggregation
}

// ClientErrorMsg is a command error routed straight to the client
// (spec.md §4.4.1 step 1/3, §4.4.3).
type ClientErrorMsg struct {
	Err           CmdError
	Id            meta.MessageId
	CorrelationId meta.MessageId
}

// NodeDuty is the outbound action vocabulary produced by C2/C4 and
// consumed by the host's sender (spec.md §6).
type NodeDuty struct {
	Send         *OutgoingMsg
	SendToNodes  *SendToNodes
	ProposeOffline []meta.XorName
	NoOp         bool
}

type SendToNodes struct {
	Targets     []meta.XorName
	NodeCmd     *NodeCmd
	NodeQuery   *NodeQuery
	Aggregation Aggregation
}

func DutySend(msg OutgoingMsg) NodeDuty { return NodeDuty{Send: &msg} }
func DutyNoOp() NodeDuty                { return NodeDuty{NoOp: true} }
func DutyProposeOffline(names []meta.XorName) NodeDuty {
	return NodeDuty{ProposeOffline: names}
}
