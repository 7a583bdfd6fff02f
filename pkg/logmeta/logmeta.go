// Package logmeta splits a bitcoind debug.log line into its timestamp, its
// bracketed annotations, and its free-text body, and assigns each annotation
// to a slot. Annotations carry no tags, so assignment is by position and
// shape:
//
//	{time} [{thread}] [{file:line}] [{function}] [{category:level}] [{wallet}] {body}
//
// Everything but the timestamp and body is optional.
package logmeta

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/karvasek/cbrelay/pkg/core"
)

var (
	// ErrMalformedLine means the line has no separable timestamp. The
	// caller should report it and skip the line.
	ErrMalformedLine = errors.New("malformed line")

	// ErrUnknownAnnotation means a bracket group matched none of the known
	// shapes. The annotation grammar is closed, so this is fatal: either
	// bitcoind grew a new annotation kind or the tokenizer is wrong.
	ErrUnknownAnnotation = errors.New("unrecognized annotation")

	// ErrNoCategoryBeforeWallet means the rightmost group was taken as a
	// wallet name but the group before it is not a valid category. The
	// grammar guarantees a category precedes any wallet name, so this is
	// fatal too.
	ErrNoCategoryBeforeWallet = errors.New("no log category before wallet name")
)

// metadataPrefix greedily matches the run of bracket groups (and surrounding
// whitespace) at the start of the post-timestamp remainder. A body that
// itself begins with bracket-shaped text is swallowed into the prefix; that
// ambiguity is inherent to the format and resolved here as "longest
// metadata prefix wins".
var metadataPrefix = regexp.MustCompile(`^\s*(?:\[[^\]]+\]\s*)*`)

var bracketGroup = regexp.MustCompile(`\[([^\]]+)\]`)

// e.g. net_processing.cpp:1154
var sourceLocation = regexp.MustCompile(`^([^:]*\.(?:cpp|h)):(\d+)$`)

// e.g. UpdateTip, WalletLogPrintf, operator()
var functionName = regexp.MustCompile(`^(?:[a-zA-Z_][a-zA-Z0-9_]*|operator.+)$`)

// Parse splits one trimmed, non-empty line into its metadata and body.
// A wrapped ErrMalformedLine is recoverable; ErrUnknownAnnotation and
// ErrNoCategoryBeforeWallet are not.
func Parse(line string, tables *Tables) (core.Metadata, string, error) {
	timestamp, remainder, ok := strings.Cut(line, " ")
	if !ok {
		return core.Metadata{}, "", fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	prefix := metadataPrefix.FindString(remainder)
	body := remainder[len(prefix):]

	md := core.Metadata{Timestamp: timestamp}

	groups := bracketGroup.FindAllStringSubmatch(prefix, -1)
	if len(groups) == 0 {
		return md, body, nil
	}

	contents := make([]string, len(groups))
	for i, g := range groups {
		contents[i] = g[1]
	}

	// The rightmost group is either the category or a wallet name. Wallet
	// names are free-form, so they can only be told apart by the category
	// that must precede them.
	last := contents[len(contents)-1]
	contents = contents[:len(contents)-1]
	category, level, isCat := tables.matchCategory(last)
	if !isCat {
		md.WalletName = last
		if len(contents) == 0 {
			return core.Metadata{}, "", fmt.Errorf("%w: %q in %q", ErrNoCategoryBeforeWallet, last, line)
		}
		last = contents[len(contents)-1]
		contents = contents[:len(contents)-1]
		category, level, isCat = tables.matchCategory(last)
		if !isCat {
			return core.Metadata{}, "", fmt.Errorf("%w: %q in %q", ErrNoCategoryBeforeWallet, last, line)
		}
	}
	md.Category = category
	md.LogLevel = level

	// Remaining groups are positional; classify each by shape.
	for _, g := range contents {
		switch {
		case tables.matchThread(g):
			md.Thread = g
		case sourceLocation.MatchString(g):
			m := sourceLocation.FindStringSubmatch(g)
			md.SourceFile = m[1]
			n, err := strconv.Atoi(m[2])
			if err != nil {
				return core.Metadata{}, "", fmt.Errorf("%w: %q in %q", ErrUnknownAnnotation, g, line)
			}
			md.SourceLine = n
		case functionName.MatchString(g):
			md.Function = g
		default:
			return core.Metadata{}, "", fmt.Errorf("%w: %q in %q", ErrUnknownAnnotation, g, line)
		}
	}

	return md, body, nil
}
