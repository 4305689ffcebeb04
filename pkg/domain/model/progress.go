package model

import "io"

// Phase names a stage of the retrieval pipeline.
type Phase string

const (
	PhaseSearching    Phase = "searching"
	PhaseScoring      Phase = "scoring"
	PhaseSelecting    Phase = "selecting"
	PhaseConfirming   Phase = "confirming"
	PhaseTransferring Phase = "transferring"
	PhaseVerifying    Phase = "verifying"
	PhaseDone         Phase = "done"
	PhaseCancelled    Phase = "cancelled"
	PhaseFailed       Phase = "failed"
)

// Payload is a package byte stream returned by a fetch. The caller owns Body
// and must close it.
type Payload struct {
	Body       io.ReadCloser
	TotalBytes int64 // -1 when the server did not announce a length
}

// TransferProgress is a point-in-time snapshot of a running transfer.
type TransferProgress struct {
	Phase      Phase
	Bytes      int64
	TotalBytes int64 // -1 when unknown
}

// Percent returns completion in [0,100], or -1 when the total is unknown.
func (p TransferProgress) Percent() float64 {
	if p.TotalBytes <= 0 {
		return -1
	}
	return float64(p.Bytes) / float64(p.TotalBytes) * 100
}

// ProgressFunc receives transfer progress updates.
type ProgressFunc func(TransferProgress)
