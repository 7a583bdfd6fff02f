// Package report turns a correlation Result into flat row sets with the
// derived columns the spreadsheet and the statistics share, and renders the
// summary text. Derivation happens here, outside the core, so the engine's
// output stays exactly what the log said.
package report

import (
	"time"

	"github.com/karvasek/cbrelay/pkg/core"
)

// ReceivedRow is one received compact block with derived columns.
type ReceivedRow struct {
	BlockHash          string
	TimeReceived       time.Time
	TimeReconstructed  time.Time
	ReceivedSize       int
	BytesMissing       int
	TxMissing          int
	ReconstructionTime time.Duration // zero when never reconstructed
}

// SentRow is one transmission joined with its block's receive columns.
type SentRow struct {
	BlockHash     string
	TimeSent      time.Time
	PeerID        int
	Trigger       string
	TCPWindowSize int
	ReceivedSize  int
	BytesMissing  int
	TxMissing     int
	SendSize      int

	// Derived.
	PrefillSize          int // send_size - received_size
	WindowBytesUsed      int // received_size % tcp_window_size
	WindowBytesAvailable int // tcp_window_size - window_bytes_used
	RTTsWithoutPrefill   int // received_size / tcp_window_size
}

// Frames flattens a Result into row sets ordered by receive time.
func Frames(res *core.Result) ([]ReceivedRow, []SentRow) {
	order := res.ReceiveOrder()

	received := make([]ReceivedRow, 0, len(res.Received))
	for _, hash := range order {
		rec := res.Received[hash]
		row := ReceivedRow{
			BlockHash:         hash,
			TimeReceived:      parseTime(rec.TimeReceived),
			TimeReconstructed: parseTime(rec.TimeReconstructed),
			ReceivedSize:      rec.ReceivedSize,
			BytesMissing:      rec.BytesMissing,
			TxMissing:         rec.TxMissing,
		}
		if !row.TimeReceived.IsZero() && !row.TimeReconstructed.IsZero() {
			row.ReconstructionTime = row.TimeReconstructed.Sub(row.TimeReceived)
		}
		received = append(received, row)
	}

	var sent []SentRow
	for _, hash := range order {
		rec := res.Received[hash]
		for _, bs := range res.Sent[hash] {
			row := SentRow{
				BlockHash:     hash,
				TimeSent:      parseTime(bs.TimeSent),
				PeerID:        bs.PeerID,
				Trigger:       bs.Trigger,
				TCPWindowSize: bs.TCPWindowSize,
				ReceivedSize:  rec.ReceivedSize,
				BytesMissing:  rec.BytesMissing,
				TxMissing:     rec.TxMissing,
				SendSize:      bs.SendSize,
			}
			row.PrefillSize = row.SendSize - row.ReceivedSize
			if row.TCPWindowSize > 0 {
				row.WindowBytesUsed = row.ReceivedSize % row.TCPWindowSize
				row.WindowBytesAvailable = row.TCPWindowSize - row.WindowBytesUsed
				row.RTTsWithoutPrefill = row.ReceivedSize / row.TCPWindowSize
			}
			sent = append(sent, row)
		}
	}

	return received, sent
}

// parseTime parses a log timestamp like 2025-06-25T20:15:37.882709Z.
// Absent or unparseable timestamps come back zero.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
