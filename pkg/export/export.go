// Package export writes the analysis rows out as a spreadsheet or CSV.
// Column names match the original sheets so downstream notebooks keep
// working against either format.
package export

import (
	"strconv"
	"time"

	"github.com/karvasek/cbrelay/pkg/report"
)

var receivedHeader = []string{
	"blockhash",
	"time_received",
	"time_reconstructed",
	"received_size",
	"bytes_missing",
	"received_tx_missing",
	"reconstruction_time_ns",
}

var sentHeader = []string{
	"blockhash",
	"time_sent",
	"peer_id",
	"trigger",
	"tcp_window_size",
	"received_size",
	"received_bytes_missing",
	"received_tx_missing",
	"send_size",
	"prefill_size",
	"window_bytes_used",
	"window_bytes_available",
	"rtts_without_prefill",
}

// timestamps are written timezone-less; spreadsheet tools choke on the Z.
const timeLayout = "2006-01-02 15:04:05.000000"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func receivedStrings(r report.ReceivedRow) []string {
	return []string{
		r.BlockHash,
		formatTime(r.TimeReceived),
		formatTime(r.TimeReconstructed),
		strconv.Itoa(r.ReceivedSize),
		strconv.Itoa(r.BytesMissing),
		strconv.Itoa(r.TxMissing),
		strconv.FormatInt(r.ReconstructionTime.Nanoseconds(), 10),
	}
}

func sentStrings(r report.SentRow) []string {
	return []string{
		r.BlockHash,
		formatTime(r.TimeSent),
		strconv.Itoa(r.PeerID),
		r.Trigger,
		strconv.Itoa(r.TCPWindowSize),
		strconv.Itoa(r.ReceivedSize),
		strconv.Itoa(r.BytesMissing),
		strconv.Itoa(r.TxMissing),
		strconv.Itoa(r.SendSize),
		strconv.Itoa(r.PrefillSize),
		strconv.Itoa(r.WindowBytesUsed),
		strconv.Itoa(r.WindowBytesAvailable),
		strconv.Itoa(r.RTTsWithoutPrefill),
	}
}
