package types

import "time"

// Batch bundles every order bound for one destination chain into a single
// outbound message. A batch is constructed once, sent once, and carries
// exactly one nonce from its origin chain's sequence.
type Batch struct {
	Destination string  `json:"destination_chain_id"`
	Origin      string  `json:"origin_chain_id"`
	Orders      []Order `json:"orders"`
	Nonce       uint64  `json:"nonce"`
}

// BatchOutcome is the per-batch result of a dispatch: the transaction id
// returned by the destination, or the error that failed this batch alone.
type BatchOutcome struct {
	Batch         Batch         `json:"batch"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Err           error         `json:"-"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Succeeded reports whether the batch was accepted by its destination.
func (o BatchOutcome) Succeeded() bool {
	return o.Err == nil
}

// FailedOutcomes filters outcomes down to the batches that failed.
func FailedOutcomes(outcomes []BatchOutcome) []BatchOutcome {
	var failed []BatchOutcome
	for _, o := range outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}
