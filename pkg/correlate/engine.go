// Package correlate folds the classified event stream, in arrival order,
// into completed receive and send records. One pass, no concurrency: every
// transition below depends on cursor state that must observe events in the
// order the node emitted them.
package correlate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/karvasek/cbrelay/pkg/core"
)

// ErrPeerMismatch means a cmpctblock send went to a different peer than the
// announce/request that preceded it. The engine's whole premise is that the
// node's single message loop emits announce → send → window for one peer
// without interleaving, so this aborts the pass.
var ErrPeerMismatch = errors.New("cmpctblock sent to unexpected peer")

// pending holds the single-slot correlation cursors. Each slot represents
// "an event was seen, its logically-next event has not been". They are
// scratch state, never part of the output.
type pending struct {
	reconstruction string          // block hash received but not yet reconstructed
	send           *core.BlockSend // announced/requested but not yet sent
	window         *core.BlockSend // sent but window size not yet observed
}

// Engine is the correlation state machine. Create with New, feed events in
// arrival order with Apply, collect with Result.
type Engine struct {
	logger   *slog.Logger
	received map[string]*core.BlockReceive
	sent     map[string][]*core.BlockSend
	pending  pending
}

// New creates an empty Engine. A nil logger discards diagnostics.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		logger:   logger,
		received: make(map[string]*core.BlockReceive),
		sent:     make(map[string][]*core.BlockSend),
	}
}

// Apply advances the state machine by one event. A returned error is fatal
// to the pass; recoverable oddities are logged and skipped.
func (e *Engine) Apply(ev core.Event) error {
	switch ev.Kind {
	case core.KindReceived:
		e.applyReceived(ev)
	case core.KindReconstructed:
		e.applyReconstructed(ev)
	case core.KindAnnounced, core.KindRequested:
		e.applyAnnounced(ev)
	case core.KindSent:
		return e.applySent(ev)
	case core.KindWindowSize:
		e.applyWindowSize(ev)
	}
	return nil
}

func (e *Engine) applyReceived(ev core.Event) {
	if prev := e.pending.reconstruction; prev != "" {
		// A second receive without an intervening reconstruction means the
		// previous block was abandoned: orphaned, or delivered as a full
		// BLOCK message instead. Its partial record is untrustworthy.
		e.logger.Debug("discarding receive that never reconstructed", "hash", prev)
		delete(e.received, prev)
	}
	e.pending.reconstruction = ev.BlockHash
	e.received[ev.BlockHash] = &core.BlockReceive{
		TimeReceived: ev.Timestamp,
		ReceivedSize: ev.Bytes,
	}
}

func (e *Engine) applyReconstructed(ev core.Event) {
	if e.pending.reconstruction != ev.BlockHash {
		// Reconstruction of a block we were not waiting for; a re-org can
		// do this. Skip it.
		e.logger.Warn("unexpected reconstruction", "hash", ev.BlockHash, "pending", e.pending.reconstruction)
		return
	}
	rec := e.received[ev.BlockHash]
	rec.TxMissing = ev.RequestedCount
	rec.BytesMissing = ev.RequestedBytes
	rec.TimeReconstructed = ev.Timestamp
	e.pending.reconstruction = ""
}

func (e *Engine) applyAnnounced(ev core.Event) {
	if _, ok := e.received[ev.BlockHash]; !ok {
		// The node occasionally relays a full block instead of a compact
		// one; those never produced a receive record.
		e.logger.Debug("send of block with no receive record", "hash", ev.BlockHash, "peer", ev.PeerID)
		return
	}
	// An earlier announce that never saw its send is superseded here.
	bs := &core.BlockSend{
		BlockHash: ev.BlockHash,
		PeerID:    ev.PeerID,
		Trigger:   ev.Kind.String(),
	}
	e.sent[ev.BlockHash] = append(e.sent[ev.BlockHash], bs)
	e.pending.send = bs
}

func (e *Engine) applySent(ev core.Event) error {
	bs := e.pending.send
	if bs == nil {
		// A send with no prior announce/request is not attributable.
		return nil
	}
	if bs.PeerID != ev.PeerID {
		// The transmission never completed; drop its half-filled record
		// before surfacing the broken ordering invariant.
		sends := e.sent[bs.BlockHash]
		e.sent[bs.BlockHash] = sends[:len(sends)-1]
		return fmt.Errorf("%w: block %s announced to peer=%d, sent to peer=%d at %s",
			ErrPeerMismatch, bs.BlockHash, bs.PeerID, ev.PeerID, ev.Timestamp)
	}
	bs.SendSize = ev.Bytes
	bs.TimeSent = ev.Timestamp
	e.pending.window = bs
	e.pending.send = nil
	return nil
}

func (e *Engine) applyWindowSize(ev core.Event) {
	bs := e.pending.window
	if bs == nil {
		return
	}
	bs.TCPWindowSize = ev.Bytes
	e.pending.window = nil
}

// Result returns the committed records. Unfinished pending cursors are
// discarded, not flushed. The caller must treat the maps as read-only.
func (e *Engine) Result() *core.Result {
	return &core.Result{Received: e.received, Sent: e.sent}
}
