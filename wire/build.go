package wire

import "github.com/xornet-io/vault/cluster/meta"

// BuildClientQueryResponse wraps a query response addressed to
// end_user, stamping id=in_response_to(correlation_id),
// aggregation=None, section_source=false (spec.md §4.5).
func BuildClientQueryResponse(resp GetBlobResult, correlationID meta.MessageId, endUser meta.EndUser) OutgoingMsg {
	return OutgoingMsg{
		QueryResponse: &QueryResponseMsg{
			GetBlob:       &resp,
			Id:            meta.InResponseTo(correlationID),
			CorrelationId: correlationID,
		},
		Dst:           ToClient(endUser),
		SectionSource: false,
		Aggregation:   AggregationNone,
	}
}

// BuildClientErrorResponse is BuildClientQueryResponse's command-side
// analogue (spec.md §4.5).
func BuildClientErrorResponse(cmdErr CmdError, msgID meta.MessageId, endUser meta.EndUser) OutgoingMsg {
	return OutgoingMsg{
		ClientError: &ClientErrorMsg{
			Err:           cmdErr,
			Id:            meta.InResponseTo(msgID),
			CorrelationId: msgID,
		},
		Dst:           ToClient(endUser),
		SectionSource: false,
		Aggregation:   AggregationNone,
	}
}
