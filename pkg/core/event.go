package core

// Kind identifies a recognized compact-block relay event. The set is closed:
// adding a log line shape means adding a Kind here and a pattern in classify.
type Kind int

const (
	// KindUninteresting marks a line that matched no pattern. Such lines
	// never reach the correlation engine.
	KindUninteresting Kind = iota

	// KindReceived: a compact block arrived and a PartiallyDownloadedBlock
	// was initialized for it.
	KindReceived

	// KindReconstructed: the received compact block was rebuilt into a full
	// block, possibly after requesting missing transactions.
	KindReconstructed

	// KindAnnounced: we are pushing a header-and-ids announcement to a peer.
	KindAnnounced

	// KindRequested: a peer asked for the compact block via getdata.
	KindRequested

	// KindSent: the cmpctblock message went out on the wire.
	KindSent

	// KindWindowSize: the per-RTT send window in effect for the last send.
	KindWindowSize
)

var kindNames = map[Kind]string{
	KindUninteresting: "uninteresting",
	KindReceived:      "received",
	KindReconstructed: "reconstructed",
	KindAnnounced:     "announced",
	KindRequested:     "requested",
	KindSent:          "sent",
	KindWindowSize:    "window-size",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Event is a classified log line with its captured fields already typed.
// Which fields are meaningful depends on Kind:
//
//	Received:       BlockHash, Bytes (cmpctblock size)
//	Reconstructed:  BlockHash, PrefillCount, MempoolCount, ExtraPoolCount,
//	                RequestedCount, RequestedBytes
//	Announced:      BlockHash, PeerID
//	Requested:      BlockHash, PeerID
//	Sent:           PeerID, Bytes (bytes sent)
//	WindowSize:     Bytes (max send per RTT)
type Event struct {
	Kind      Kind
	Timestamp string

	BlockHash string
	PeerID    int
	Bytes     int

	PrefillCount   int
	MempoolCount   int
	ExtraPoolCount int
	RequestedCount int
	RequestedBytes int
}
