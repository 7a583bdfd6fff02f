package core

import "sort"

// BlockReceive describes one compact block we received, keyed by block hash
// in Result.Received. The hash is an opaque hex string, never a number.
type BlockReceive struct {
	TimeReceived      string `yaml:"time_received"`
	TimeReconstructed string `yaml:"time_reconstructed"`
	ReceivedSize      int    `yaml:"received_size"`
	BytesMissing      int    `yaml:"bytes_missing"`
	TxMissing         int    `yaml:"tx_missing"`
}

// Reconstructed reports whether a reconstruction event was observed.
func (r *BlockReceive) Reconstructed() bool {
	return r.TimeReconstructed != ""
}

// BlockSend describes one transmission of a compact block to one peer.
// BlockHash is a back-reference into Result.Received; a block may be sent to
// any number of peers.
type BlockSend struct {
	BlockHash     string `yaml:"block_hash"`
	PeerID        int    `yaml:"peer_id"`
	Trigger       string `yaml:"trigger"` // "announced" or "requested"
	TimeSent      string `yaml:"time_sent"`
	SendSize      int    `yaml:"send_size"`
	TCPWindowSize int    `yaml:"tcp_window_size"`
}

// Result is the outcome of one correlation pass. Callers must treat both
// maps as read-only.
type Result struct {
	Received map[string]*BlockReceive
	Sent     map[string][]*BlockSend
}

// ReceiveOrder returns the block hashes of Received sorted by receive time.
// Timestamps are lexically sortable, so string comparison is enough.
func (r *Result) ReceiveOrder() []string {
	hashes := make([]string, 0, len(r.Received))
	for h := range r.Received {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool {
		a, b := r.Received[hashes[i]], r.Received[hashes[j]]
		if a.TimeReceived != b.TimeReceived {
			return a.TimeReceived < b.TimeReceived
		}
		return hashes[i] < hashes[j]
	})
	return hashes
}

// SendCount returns the total number of send records across all blocks.
func (r *Result) SendCount() int {
	n := 0
	for _, sends := range r.Sent {
		n += len(sends)
	}
	return n
}
