package report

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// WriteStats renders the full statistics summary.
func WriteStats(w io.Writer, received []ReceivedRow, sent []SentRow) {
	ReceivedStats(w, received)
	SentStats(w, sent)
	WindowStats(w, sent)
	OverRTTStats(w, sent)
}

// ReceivedStats summarizes the receive side: reconstruction rate and sizes.
func ReceivedStats(w io.Writer, received []ReceivedRow) {
	total := len(received)
	if total == 0 {
		return
	}

	var failed []ReceivedRow
	for _, r := range received {
		if r.TxMissing > 0 {
			failed = append(failed, r)
		}
	}

	failRate := float64(len(failed)) / float64(total)
	fmt.Fprintf(w, "%d out of %d blocks received failed reconstruction. (%.2f%%)\n", len(failed), total, failRate*100)
	fmt.Fprintf(w, "Reconstruction rate was %.2f%%\n", (1-failRate)*100)

	fmt.Fprintf(w, "Avg size of received block: %.2f bytes\n", meanInt(received, func(r ReceivedRow) int { return r.ReceivedSize }))
	fmt.Fprintf(w, "Avg bytes missing from received blocks: %.2f bytes\n", meanInt(received, func(r ReceivedRow) int { return r.BytesMissing }))
	if len(failed) > 0 {
		fmt.Fprintf(w, "Avg bytes missing from blocks that failed reconstruction: %.2f bytes\n", meanInt(failed, func(r ReceivedRow) int { return r.BytesMissing }))
	}

	var sum time.Duration
	n := 0
	for _, r := range received {
		if r.ReconstructionTime > 0 {
			sum += r.ReconstructionTime
			n++
		}
	}
	if n > 0 {
		avg := sum / time.Duration(n)
		fmt.Fprintf(w, "Avg reconstruction time: %.3fms\n", float64(avg.Nanoseconds())/1e6)
	}
}

// SentStats summarizes the send side: sizes and prefill fit rates.
func SentStats(w io.Writer, sent []SentRow) {
	total := len(sent)
	if total == 0 {
		return
	}

	fmt.Fprintf(w, "The average CMPCTBLOCK we sent was %.2f bytes.\n", meanInt(sent, func(r SentRow) int { return r.SendSize }))

	var prefilled, plain []SentRow
	for _, r := range sent {
		if r.PrefillSize > 0 {
			prefilled = append(prefilled, r)
		} else {
			plain = append(plain, r)
		}
	}
	if len(prefilled) > 0 {
		fmt.Fprintf(w, "The average prefilled CMPCTBLOCK we sent was %.2f bytes.\n", meanInt(prefilled, func(r SentRow) int { return r.SendSize }))
	}
	if len(plain) > 0 {
		fmt.Fprintf(w, "The average non-prefilled CMPCTBLOCK we sent was %.2f bytes.\n", meanInt(plain, func(r SentRow) int { return r.SendSize }))
	}

	rate := float64(len(prefilled)) / float64(total)
	fmt.Fprintf(w, "%d/%d blocks were sent with prefills. (%.2f%%)\n", len(prefilled), total, rate*100)
	fmt.Fprintf(w, "Avg available prefill bytes for all CMPCTBLOCK's we sent: %.2f bytes\n", meanInt(sent, func(r SentRow) int { return r.WindowBytesAvailable }))

	// Nothing more to say for a node that never prefills.
	if len(prefilled) == 0 {
		return
	}

	fmt.Fprintf(w, "Avg available prefill bytes for prefilled CMPCTBLOCK's we sent: %.2f bytes\n", meanInt(prefilled, func(r SentRow) int { return r.WindowBytesAvailable }))
	fmt.Fprintf(w, "Avg total prefill size for CMPCTBLOCK's we prefilled: %.2f bytes\n", meanInt(prefilled, func(r SentRow) int { return r.PrefillSize }))

	fit := 0
	for _, r := range prefilled {
		if r.PrefillSize <= r.WindowBytesAvailable {
			fit++
		}
	}
	fitRate := float64(fit) / float64(len(prefilled))
	fmt.Fprintf(w, "%d/%d prefilled blocks sent fit in the available bytes. (%.2f%%)\n", fit, len(prefilled), fitRate*100)
}

// WindowStats summarizes the observed per-RTT send windows.
func WindowStats(w io.Writer, sent []SentRow) {
	if len(sent) == 0 {
		return
	}

	windows := make([]int, len(sent))
	for i, r := range sent {
		windows[i] = r.TCPWindowSize
	}
	sort.Ints(windows)

	median := float64(windows[len(windows)/2])
	if len(windows)%2 == 0 {
		median = float64(windows[len(windows)/2-1]+windows[len(windows)/2]) / 2
	}
	mode, modeFreq := modeOf(windows)

	fmt.Fprintf(w, "TCP Window Size: Avg: %.2f bytes, Median: %.1f, Mode: %d\n", meanInt(sent, func(r SentRow) int { return r.TCPWindowSize }), median, mode)
	fmt.Fprintf(w, "The mode represented %d/%d windows. (%.2f%%)\n", modeFreq, len(windows), float64(modeFreq)/float64(len(windows))*100)
	fmt.Fprintf(w, "Avg. TCP window bytes used: %.2f bytes\n", meanInt(sent, func(r SentRow) int { return r.WindowBytesUsed }))
	fmt.Fprintf(w, "Avg. TCP window bytes available: %.2f bytes\n", meanInt(sent, func(r SentRow) int { return r.WindowBytesAvailable }))
}

// OverRTTStats summarizes blocks that exceeded one RTT before any prefill.
func OverRTTStats(w io.Writer, sent []SentRow) {
	total := len(sent)
	if total == 0 {
		return
	}

	var excessive []SentRow
	for _, r := range sent {
		if r.RTTsWithoutPrefill > 1 {
			excessive = append(excessive, r)
		}
	}
	rate := float64(len(excessive)) / float64(total)
	fmt.Fprintf(w, "%d/%d CMPCTBLOCK's sent were already over the window for a single RTT before prefilling. (%.2f%%)\n", len(excessive), total, rate*100)

	if len(excessive) == 0 {
		return
	}

	fmt.Fprintf(w, "Avg. available bytes for prefill in blocks that were already over a single RTT: %.2f bytes\n", meanInt(excessive, func(r SentRow) int { return r.WindowBytesAvailable }))

	fit := 0
	for _, r := range excessive {
		if r.PrefillSize <= r.WindowBytesAvailable {
			fit++
		}
	}
	fitRate := float64(fit) / float64(len(excessive))
	fmt.Fprintf(w, "%d/%d excessively large blocks had prefills that fit. (%.2f%%)\n", fit, len(excessive), fitRate*100)
}

func meanInt[T any](rows []T, f func(T) int) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rows {
		sum += f(r)
	}
	return float64(sum) / float64(len(rows))
}

func modeOf(sorted []int) (mode, freq int) {
	cur, curN := 0, 0
	for i, v := range sorted {
		if i == 0 || v != cur {
			cur, curN = v, 0
		}
		curN++
		if curN > freq {
			mode, freq = cur, curN
		}
	}
	return mode, freq
}
