package source

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
)

// OpenJournal returns a Source over the journal of a systemd unit, e.g.
// bitcoind.service. It shells out to journalctl in cat mode so the lines
// come back exactly as the node wrote them, and it does not follow: the
// stream ends when the journal's current contents are exhausted.
func OpenJournal(ctx context.Context, unit string, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cmd := exec.CommandContext(ctx, "journalctl", "--no-pager", "-u", unit, "-o", "cat")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("journalctl pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("journalctl start: %w", err)
	}
	logger.Info("reading journal", "unit", unit)

	return &journalSource{readerSource: newReaderSource(stdout, nil), cmd: cmd}, nil
}

type journalSource struct {
	*readerSource
	cmd *exec.Cmd
}

func (s *journalSource) Close() error {
	// Drain not required; Wait reaps the child once the pipe is done.
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("journalctl: %w", err)
	}
	return nil
}
