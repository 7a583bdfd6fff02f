// Package classify matches a parsed log line against an ordered table of
// event patterns and produces a typed core.Event. Classification is a pure
// function of (category, body): no state, no side effects.
package classify

import (
	"regexp"
	"strconv"

	"github.com/karvasek/cbrelay/pkg/core"
)

// Pattern is one entry in the classification table: a required category and
// a body pattern. Patterns for the same category are tried in table order;
// the first match wins. Adding a recognized line shape means appending an
// entry here and a Kind in core, nothing else.
type Pattern struct {
	Kind     core.Kind
	Category string
	Body     *regexp.Regexp
}

// DefaultPatterns is the table for the compact-block relay lifecycle.
// Receive-side shapes live under cmpctblock, send-side shapes under net;
// keeping the buckets disjoint is what makes first-match dispatch safe.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			Kind:     core.KindReconstructed,
			Category: "cmpctblock",
			// Successfully reconstructed block 00000000000000000002... with 1 txn prefilled, 4105 txn from mempool (incl at least 0 from extra pool) and 0 txn (0 bytes) requested
			Body: regexp.MustCompile(`Successfully reconstructed block ([0-9a-f]+) with (\d+) txn prefilled, (\d+) txn from mempool \(incl at least (\d+) from extra pool\) and (\d+) txn \((\d+) bytes\) requested`),
		},
		{
			Kind:     core.KindReceived,
			Category: "cmpctblock",
			// Initialized PartiallyDownloadedBlock for block 00000000000000000002... using a cmpctblock of 14691 bytes
			Body: regexp.MustCompile(`Initialized PartiallyDownloadedBlock for block ([0-9a-f]+) using a cmpctblock of (\d+) bytes`),
		},
		{
			Kind:     core.KindSent,
			Category: "net",
			// sending cmpctblock (25101 bytes) peer=1
			Body: regexp.MustCompile(`sending cmpctblock \((\d+) bytes\) peer=(\d+)`),
		},
		{
			Kind:     core.KindAnnounced,
			Category: "net",
			// PeerManager::NewPoWValidBlock sending header-and-ids 00000000000000000002... to peer=11
			Body: regexp.MustCompile(`PeerManager::NewPoWValidBlock sending header-and-ids ([0-9a-f]+) to peer=(\d+)`),
		},
		{
			Kind:     core.KindRequested,
			Category: "net",
			// received getdata for: cmpctblock 00000000000000000000... peer=3
			Body: regexp.MustCompile(`received getdata for: cmpctblock ([0-9a-f]+) peer=(\d+)`),
		},
		{
			Kind:     core.KindWindowSize,
			Category: "net",
			//     - Max send per-rtt: 14480 bytes
			Body: regexp.MustCompile(`\s*- Max send per-rtt: (\d+) bytes`),
		},
	}
}

// Classify matches (category, body) against the table. Lines with no
// category, an uninteresting category, or no matching body shape come back
// with Kind == core.KindUninteresting.
func Classify(md core.Metadata, body string, table []Pattern) core.Event {
	for _, p := range table {
		if md.Category != p.Category {
			continue
		}
		// Patterns must match at the start of the body, like the log
		// emitter writes them.
		loc := p.Body.FindStringSubmatchIndex(body)
		if loc == nil || loc[0] != 0 {
			continue
		}
		m := make([]string, 0, len(loc)/2)
		for i := 0; i < len(loc); i += 2 {
			if loc[i] < 0 {
				m = append(m, "")
				continue
			}
			m = append(m, body[loc[i]:loc[i+1]])
		}
		return capture(p.Kind, md.Timestamp, m)
	}
	return core.Event{Kind: core.KindUninteresting, Timestamp: md.Timestamp}
}

// capture converts the positional submatches of a pattern into the typed
// fields of its event kind. The group counts are fixed by the table above.
func capture(kind core.Kind, timestamp string, m []string) core.Event {
	ev := core.Event{Kind: kind, Timestamp: timestamp}
	switch kind {
	case core.KindReceived:
		ev.BlockHash = m[1]
		ev.Bytes = atoi(m[2])
	case core.KindReconstructed:
		ev.BlockHash = m[1]
		ev.PrefillCount = atoi(m[2])
		ev.MempoolCount = atoi(m[3])
		ev.ExtraPoolCount = atoi(m[4])
		ev.RequestedCount = atoi(m[5])
		ev.RequestedBytes = atoi(m[6])
	case core.KindAnnounced, core.KindRequested:
		ev.BlockHash = m[1]
		ev.PeerID = atoi(m[2])
	case core.KindSent:
		ev.Bytes = atoi(m[1])
		ev.PeerID = atoi(m[2])
	case core.KindWindowSize:
		ev.Bytes = atoi(m[1])
	}
	return ev
}

// atoi is safe here: every captured group is digits by construction.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
