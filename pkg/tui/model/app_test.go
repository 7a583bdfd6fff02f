package model

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/karvasek/cbrelay/pkg/report"
)

func sampleApp() App {
	received := []report.ReceivedRow{
		{BlockHash: "00000000000000000001aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", TimeReceived: time.Date(2025, 6, 25, 20, 15, 37, 0, time.UTC), ReceivedSize: 20000},
		{BlockHash: "00000000000000000002bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", TimeReceived: time.Date(2025, 6, 25, 20, 16, 0, 0, time.UTC), ReceivedSize: 9000, TxMissing: 2},
	}
	sent := []report.SentRow{
		{BlockHash: "00000000000000000001aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", PeerID: 11, Trigger: "announced", SendSize: 25000, TCPWindowSize: 14480},
	}
	return New("debug.log", received, sent)
}

func key(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{}
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		m, _ := a.Update(key(k))
		var ok bool
		a, ok = m.(App)
		if !ok {
			t.Fatalf("update returned %T", m)
		}
	}
	return a
}

func TestApp_Navigation(t *testing.T) {
	a := sampleApp()
	if a.selectedIdx != 0 {
		t.Fatalf("initial selection: %d", a.selectedIdx)
	}

	a = press(t, a, "j")
	if a.selectedIdx != 1 {
		t.Errorf("after j: %d", a.selectedIdx)
	}

	// Selection clamps at the last row.
	a = press(t, a, "j", "j")
	if a.selectedIdx != 1 {
		t.Errorf("after extra j: %d", a.selectedIdx)
	}

	a = press(t, a, "k")
	if a.selectedIdx != 0 {
		t.Errorf("after k: %d", a.selectedIdx)
	}

	a = press(t, a, "G")
	if a.selectedIdx != 1 {
		t.Errorf("after G: %d", a.selectedIdx)
	}
	a = press(t, a, "g")
	if a.selectedIdx != 0 {
		t.Errorf("after g: %d", a.selectedIdx)
	}
}

func TestApp_PaneCycle(t *testing.T) {
	a := sampleApp()
	if a.activePane != PaneBlocks {
		t.Fatalf("initial pane: %d", a.activePane)
	}
	a = press(t, a, "tab")
	if a.activePane == PaneBlocks {
		t.Error("tab should move focus off the blocks pane")
	}
}

func TestApp_SearchFilters(t *testing.T) {
	a := sampleApp()
	a = press(t, a, "/")
	if a.mode != ModeSearch {
		t.Fatalf("mode after /: %d", a.mode)
	}

	a = press(t, a, "2", "b", "b", "enter")
	if a.mode != ModeNormal {
		t.Fatalf("mode after enter: %d", a.mode)
	}
	blocks := a.filteredBlocks()
	if len(blocks) != 1 || !strings.Contains(blocks[0].BlockHash, "bbbb") {
		t.Errorf("filtered: %v", blocks)
	}

	sel := a.selectedBlock()
	if sel == nil || !strings.Contains(sel.BlockHash, "bbbb") {
		t.Errorf("selected: %v", sel)
	}
}

func TestApp_SearchCancel(t *testing.T) {
	a := sampleApp()
	a = press(t, a, "/", "x", "esc")
	if a.mode != ModeNormal {
		t.Fatalf("mode after esc: %d", a.mode)
	}
	if len(a.filteredBlocks()) != 2 {
		t.Errorf("filter should be cleared, got %d blocks", len(a.filteredBlocks()))
	}
}

func TestApp_Quit(t *testing.T) {
	a := sampleApp()
	_, cmd := a.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestApp_View(t *testing.T) {
	a := sampleApp()
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a = m.(App)

	out := a.View()
	for _, want := range []string{"00000000", "PEER", "announced"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestShortHash(t *testing.T) {
	if got := shortHash("abcdef"); got != "abcdef" {
		t.Errorf("short input: %q", got)
	}
	long := "00000000000000000001aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	got := shortHash(long)
	if !strings.HasPrefix(got, "00000000") || !strings.HasSuffix(got, "aaaaaaaa") {
		t.Errorf("long input: %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 * 1024 * 1024, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello world", 8); got != "hello..." {
		t.Errorf("got %q", got)
	}
	if got := truncate("hi", 8); got != "hi" {
		t.Errorf("got %q", got)
	}
}
