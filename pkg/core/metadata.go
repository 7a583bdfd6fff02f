package core

import (
	"fmt"
	"strings"
)

// Metadata holds the annotations parsed from the bracketed prefix of a
// debug.log line. Only Timestamp is guaranteed; every other field may be
// absent (zero value). SourceLine is meaningful only when SourceFile is set.
//
// The timestamp is kept as the raw string from the log. It is ISO-8601 and
// lexically sortable, so nothing in the core needs to parse it.
type Metadata struct {
	Timestamp  string
	Category   string
	LogLevel   string
	Thread     string
	SourceFile string
	SourceLine int
	Function   string
	WalletName string
}

// Format reassembles the line this metadata was parsed from, in the
// canonical annotation order bitcoind emits:
//
//	{time} [{thread}] [{file:line}] [{function}] [{category:level}] [{wallet}] {body}
func (m Metadata) Format(body string) string {
	var b strings.Builder
	b.WriteString(m.Timestamp)
	if m.Thread != "" {
		fmt.Fprintf(&b, " [%s]", m.Thread)
	}
	if m.SourceFile != "" {
		fmt.Fprintf(&b, " [%s:%d]", m.SourceFile, m.SourceLine)
	}
	if m.Function != "" {
		fmt.Fprintf(&b, " [%s]", m.Function)
	}
	if m.Category != "" {
		if m.LogLevel != "" {
			fmt.Fprintf(&b, " [%s:%s]", m.Category, m.LogLevel)
		} else {
			fmt.Fprintf(&b, " [%s]", m.Category)
		}
	}
	if m.WalletName != "" {
		fmt.Fprintf(&b, " [%s]", m.WalletName)
	}
	b.WriteString(" ")
	b.WriteString(body)
	return b.String()
}
