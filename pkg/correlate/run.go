package correlate

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/karvasek/cbrelay/pkg/classify"
	"github.com/karvasek/cbrelay/pkg/core"
	"github.com/karvasek/cbrelay/pkg/logmeta"
	"github.com/karvasek/cbrelay/pkg/source"
)

// Options configures a Run. Zero values select the defaults.
type Options struct {
	Tables   *logmeta.Tables    // nil means logmeta.DefaultTables
	Patterns []classify.Pattern // nil means classify.DefaultPatterns
	Logger   *slog.Logger       // nil discards diagnostics
}

// Run drives one full pass: read lines from src, parse metadata, classify,
// and fold into the correlation engine. Blank lines are skipped, malformed
// lines are reported and skipped, grammar and invariant violations abort
// with the offending line identified.
func Run(src source.Source, opts Options) (*core.Result, error) {
	tables := opts.Tables
	if tables == nil {
		tables = logmeta.DefaultTables()
	}
	patterns := opts.Patterns
	if patterns == nil {
		patterns = classify.DefaultPatterns()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	eng := New(logger)
	lineno := 0
	for src.Next() {
		lineno++
		line := strings.TrimSpace(src.Line())
		if line == "" {
			continue
		}

		md, body, err := logmeta.Parse(line, tables)
		if err != nil {
			if errors.Is(err, logmeta.ErrMalformedLine) {
				logger.Warn("skipping malformed line", "line", lineno, "error", err)
				continue
			}
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}

		ev := classify.Classify(md, body, patterns)
		if ev.Kind == core.KindUninteresting {
			continue
		}
		if err := eng.Apply(ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", lineno+1, err)
	}
	return eng.Result(), nil
}
