package classify

import (
	"testing"

	"github.com/karvasek/cbrelay/pkg/core"
)

func md(category string) core.Metadata {
	return core.Metadata{Timestamp: "2025-06-25T20:15:37.882709Z", Category: category}
}

func TestClassify_Received(t *testing.T) {
	body := "Initialized PartiallyDownloadedBlock for block 00000000000000000001b2474c7f4b1b4d82fb1b4e8e880b3173d06b671c2a03 using a cmpctblock of 14691 bytes"
	ev := Classify(md("cmpctblock"), body, DefaultPatterns())

	if ev.Kind != core.KindReceived {
		t.Fatalf("kind: got %v", ev.Kind)
	}
	if ev.BlockHash != "00000000000000000001b2474c7f4b1b4d82fb1b4e8e880b3173d06b671c2a03" {
		t.Errorf("hash: got %q", ev.BlockHash)
	}
	if ev.Bytes != 14691 {
		t.Errorf("bytes: got %d", ev.Bytes)
	}
	if ev.Timestamp != "2025-06-25T20:15:37.882709Z" {
		t.Errorf("timestamp: got %q", ev.Timestamp)
	}
}

func TestClassify_Reconstructed(t *testing.T) {
	body := "Successfully reconstructed block 00000000000000000001b2474c7f4b1b4d82fb1b4e8e880b3173d06b671c2a03 with 1 txn prefilled, 4105 txn from mempool (incl at least 7 from extra pool) and 2 txn (880 bytes) requested"
	ev := Classify(md("cmpctblock"), body, DefaultPatterns())

	if ev.Kind != core.KindReconstructed {
		t.Fatalf("kind: got %v", ev.Kind)
	}
	if ev.PrefillCount != 1 || ev.MempoolCount != 4105 || ev.ExtraPoolCount != 7 {
		t.Errorf("counts: %d/%d/%d", ev.PrefillCount, ev.MempoolCount, ev.ExtraPoolCount)
	}
	if ev.RequestedCount != 2 || ev.RequestedBytes != 880 {
		t.Errorf("requested: %d txn, %d bytes", ev.RequestedCount, ev.RequestedBytes)
	}
}

func TestClassify_Sent(t *testing.T) {
	ev := Classify(md("net"), "sending cmpctblock (25101 bytes) peer=1", DefaultPatterns())
	if ev.Kind != core.KindSent {
		t.Fatalf("kind: got %v", ev.Kind)
	}
	if ev.Bytes != 25101 || ev.PeerID != 1 {
		t.Errorf("got %d bytes peer=%d", ev.Bytes, ev.PeerID)
	}
}

func TestClassify_Announced(t *testing.T) {
	body := "PeerManager::NewPoWValidBlock sending header-and-ids 00000000000000000001b2474c7f4b1b4d82fb1b4e8e880b3173d06b671c2a03 to peer=11"
	ev := Classify(md("net"), body, DefaultPatterns())
	if ev.Kind != core.KindAnnounced {
		t.Fatalf("kind: got %v", ev.Kind)
	}
	if ev.PeerID != 11 {
		t.Errorf("peer: got %d", ev.PeerID)
	}
}

func TestClassify_Requested(t *testing.T) {
	body := "received getdata for: cmpctblock 00000000000000000001b2474c7f4b1b4d82fb1b4e8e880b3173d06b671c2a03 peer=3"
	ev := Classify(md("net"), body, DefaultPatterns())
	if ev.Kind != core.KindRequested {
		t.Fatalf("kind: got %v", ev.Kind)
	}
	if ev.PeerID != 3 {
		t.Errorf("peer: got %d", ev.PeerID)
	}
}

func TestClassify_WindowSize(t *testing.T) {
	// The leading indentation may or may not survive the metadata prefix.
	for _, body := range []string{
		"- Max send per-rtt: 14480 bytes",
		"    - Max send per-rtt: 14480 bytes",
	} {
		ev := Classify(md("net"), body, DefaultPatterns())
		if ev.Kind != core.KindWindowSize {
			t.Fatalf("%q: kind got %v", body, ev.Kind)
		}
		if ev.Bytes != 14480 {
			t.Errorf("%q: bytes got %d", body, ev.Bytes)
		}
	}
}

func TestClassify_WrongCategory(t *testing.T) {
	// The body alone is not enough; the category has to agree.
	body := "sending cmpctblock (25101 bytes) peer=1"
	ev := Classify(md("cmpctblock"), body, DefaultPatterns())
	if ev.Kind != core.KindUninteresting {
		t.Errorf("kind: got %v, want uninteresting", ev.Kind)
	}
}

func TestClassify_NoCategory(t *testing.T) {
	ev := Classify(core.Metadata{Timestamp: "t"}, "sending cmpctblock (25101 bytes) peer=1", DefaultPatterns())
	if ev.Kind != core.KindUninteresting {
		t.Errorf("kind: got %v, want uninteresting", ev.Kind)
	}
}

func TestClassify_MatchesAtStartOnly(t *testing.T) {
	body := "peer said: sending cmpctblock (25101 bytes) peer=1"
	ev := Classify(md("net"), body, DefaultPatterns())
	if ev.Kind != core.KindUninteresting {
		t.Errorf("kind: got %v, want uninteresting for mid-body match", ev.Kind)
	}
}

func TestClassify_Uninteresting(t *testing.T) {
	ev := Classify(md("net"), "Saw new header hash=00000000000000000001 height=903953", DefaultPatterns())
	if ev.Kind != core.KindUninteresting {
		t.Errorf("kind: got %v", ev.Kind)
	}
	if ev.Timestamp != "2025-06-25T20:15:37.882709Z" {
		t.Errorf("timestamp should carry through: got %q", ev.Timestamp)
	}
}
