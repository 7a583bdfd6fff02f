package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	activePaneStyle = paneStyle.
			BorderForeground(lipgloss.Color("205"))

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the TUI.
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "loading..."
	}

	statusBarH := 2
	sendsPaneH := max(a.height/4, 6)
	mainH := a.height - sendsPaneH - statusBarH - 2
	listW := a.width/2 - 2
	detailW := a.width - listW - 4

	blocks := a.renderBlocks(listW, mainH)
	blocksPane := a.paneBox(PaneBlocks, fmt.Sprintf(" Blocks (%d) ", len(a.filteredBlocks())), blocks, listW, mainH)

	detail := a.renderDetail()
	detailPane := a.paneBox(PaneDetail, " Block ", detail, detailW, mainH)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, blocksPane, detailPane)

	sends := a.renderSends(a.width-4, sendsPaneH)
	sendsPane := a.paneBox(PaneSends, " Sends ", sends, a.width-4, sendsPaneH)

	return lipgloss.JoinVertical(lipgloss.Left, topRow, sendsPane, a.renderStatusBar())
}

func (a App) paneBox(pane Pane, title, content string, w, h int) string {
	style := paneStyle
	if a.activePane == pane {
		style = activePaneStyle
	}
	return style.Width(w).Height(h).Render(
		titleStyle.Render(title) + "\n" + content,
	)
}

func (a App) renderBlocks(w, h int) string {
	blocks := a.filteredBlocks()
	if len(blocks) == 0 {
		return dimStyle.Render("no blocks")
	}

	var b strings.Builder
	maxVisible := h - 2
	start := 0
	if a.selectedIdx >= maxVisible {
		start = a.selectedIdx - maxVisible + 1
	}

	for i := start; i < len(blocks) && i-start < maxVisible; i++ {
		blk := blocks[i]
		indicator := okStyle.Render("●")
		if blk.TxMissing > 0 {
			indicator = failStyle.Render("✖")
		}
		line := fmt.Sprintf(" %s %s  %s", indicator, shortHash(blk.BlockHash), formatBytes(blk.ReceivedSize))
		line = truncate(line, w)

		if i == a.selectedIdx {
			line = selectedStyle.Width(w).Render(line)
		}
		b.WriteString(line + "\n")
	}

	if a.mode == ModeSearch {
		b.WriteString("\n" + a.search.View())
	}

	return b.String()
}

func (a App) renderDetail() string {
	blk := a.selectedBlock()
	if blk == nil {
		return dimStyle.Render("select a block")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hash:           %s\n", dimStyle.Render(blk.BlockHash))
	fmt.Fprintf(&b, "Received:       %s\n", formatTime(blk.TimeReceived))
	fmt.Fprintf(&b, "Reconstructed:  %s\n", formatTime(blk.TimeReconstructed))
	fmt.Fprintf(&b, "Size:           %s\n", formatBytes(blk.ReceivedSize))
	if blk.TxMissing > 0 {
		fmt.Fprintf(&b, "Missing:        %s (%d txn) %s\n", formatBytes(blk.BytesMissing), blk.TxMissing, failStyle.Render("reconstruction failed"))
	} else {
		fmt.Fprintf(&b, "Missing:        %s\n", okStyle.Render("nothing"))
	}
	if blk.ReconstructionTime > 0 {
		fmt.Fprintf(&b, "Rebuild time:   %.3fms\n", float64(blk.ReconstructionTime.Nanoseconds())/1e6)
	}
	fmt.Fprintf(&b, "Sends:          %d\n", len(a.sends[blk.BlockHash]))

	return b.String()
}

func (a App) renderSends(w, h int) string {
	blk := a.selectedBlock()
	if blk == nil {
		return dimStyle.Render("")
	}
	sends := a.sends[blk.BlockHash]
	if len(sends) == 0 {
		return dimStyle.Render("block was never sent")
	}

	var b strings.Builder
	header := fmt.Sprintf(" %-6s %-10s %-12s %-12s %-12s %s", "PEER", "TRIGGER", "SENT", "PREFILL", "WINDOW", "TIME")
	b.WriteString(dimStyle.Render(truncate(header, w)) + "\n")

	for i, s := range sends {
		if i >= h-2 {
			b.WriteString(dimStyle.Render(fmt.Sprintf(" ... %d more", len(sends)-i)))
			break
		}
		line := fmt.Sprintf(" %-6d %-10s %-12s %-12s %-12s %s",
			s.PeerID, s.Trigger, formatBytes(s.SendSize), formatBytes(s.PrefillSize),
			formatBytes(s.TCPWindowSize), formatTime(s.TimeSent))
		b.WriteString(truncate(line, w) + "\n")
	}
	return b.String()
}

func (a App) renderStatusBar() string {
	left := a.statusMsg
	right := "j/k:nav g/G:top/bottom tab:pane /:search q:quit"
	if a.mode == ModeSearch {
		right = "enter:apply esc:cancel"
	}

	gap := a.width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return helpStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func shortHash(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:8] + "…" + hash[len(hash)-8:]
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return dimStyle.Render("—")
	}
	return t.Format("15:04:05.000000")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func formatBytes(b int) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case b >= GB:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(GB))
	case b >= MB:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(MB))
	case b >= KB:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(KB))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
