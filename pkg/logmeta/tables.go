package logmeta

import (
	"regexp"
	"strings"
)

// defaultCategories are bitcoind's logging categories (src/logging.cpp).
var defaultCategories = []string{
	"all",
	"net",
	"tor",
	"mempool",
	"http",
	"bench",
	"zmq",
	"walletdb",
	"rpc",
	"estimatefee",
	"addrman",
	"selectcoins",
	"reindex",
	"cmpctblock",
	"rand",
	"prune",
	"proxy",
	"mempoolrej",
	"libevent",
	"coindb",
	"qt",
	"leveldb",
	"validation",
	"i2p",
	"ipc",
	"lock",
	"blockstorage",
	"txreconciliation",
	"scan",
	"txpackages",
}

// defaultThreads are the fixed thread names bitcoind assigns via
// ThreadRename/TraceThread.
var defaultThreads = []string{
	"init",
	"http",
	"shutoff",
	"capnp-loop",
	"main",
	"qt-clientmodl",
	"qt-init",
	"qt-rpcconsole",
	"qt-walletctrl",
	"test",
	"initload",
	"mapport",
	"net",
	"dnsseed",
	"addcon",
	"opencon",
	"msghand",
	"i2paccept",
	"torcontrol",
}

// numberedThreadPatterns match worker threads that carry an index suffix,
// e.g. scriptch.7 or httpworker.0.
var numberedThreadPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^scriptch\.\d+$`),
	regexp.MustCompile(`^httpworker\.\d+$`),
}

var levelPattern = regexp.MustCompile(`^\w+$`)

// Tables holds the closed annotation vocabularies the disambiguator matches
// against. They are passed in explicitly rather than read from globals so
// tests (and config extensions for newer bitcoind versions) can supply
// their own.
type Tables struct {
	categories map[string]bool
	threads    map[string]bool
	numbered   []*regexp.Regexp
}

// NewTables builds Tables from explicit category and thread name lists.
func NewTables(categories, threads []string) *Tables {
	t := &Tables{
		categories: make(map[string]bool, len(categories)),
		threads:    make(map[string]bool, len(threads)),
		numbered:   numberedThreadPatterns,
	}
	for _, c := range categories {
		t.categories[c] = true
	}
	for _, th := range threads {
		t.threads[th] = true
	}
	return t
}

// DefaultTables returns Tables covering a current bitcoind.
func DefaultTables() *Tables {
	return NewTables(defaultCategories, defaultThreads)
}

// Extend returns a copy of t with extra category and thread names added.
func (t *Tables) Extend(categories, threads []string) *Tables {
	nt := &Tables{
		categories: make(map[string]bool, len(t.categories)+len(categories)),
		threads:    make(map[string]bool, len(t.threads)+len(threads)),
		numbered:   t.numbered,
	}
	for c := range t.categories {
		nt.categories[c] = true
	}
	for _, c := range categories {
		nt.categories[c] = true
	}
	for th := range t.threads {
		nt.threads[th] = true
	}
	for _, th := range threads {
		nt.threads[th] = true
	}
	return nt
}

// matchCategory reports whether group is a category annotation, either a
// bare recognized name or name:level with a word-shaped level.
func (t *Tables) matchCategory(group string) (category, level string, ok bool) {
	name, lvl, hasLevel := strings.Cut(group, ":")
	if !t.categories[name] {
		return "", "", false
	}
	if hasLevel && !levelPattern.MatchString(lvl) {
		return "", "", false
	}
	return name, lvl, true
}

// matchThread reports whether group is a known or numbered thread name.
func (t *Tables) matchThread(group string) bool {
	if t.threads[group] {
		return true
	}
	for _, p := range t.numbered {
		if p.MatchString(group) {
			return true
		}
	}
	return false
}
