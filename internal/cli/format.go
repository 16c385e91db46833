package cli

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"studyplanner/internal/model"
)

var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorDim    = lipgloss.Color("#928374")
	colorHeader = lipgloss.Color("#fe8019")

	styleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	styleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
)

func (a *App) render(style lipgloss.Style, s string) string {
	if a.Plain {
		return s
	}
	return style.Render(s)
}

func (a *App) statusLabel(status string) string {
	if status == model.PlanStatusDone {
		return a.render(styleGreen, "done")
	}
	return a.render(styleYellow, status)
}

// renderTable pads columns to their widest visible cell.
func (a *App) renderTable(headers []string, rows [][]string) string {
	const colGap = 2

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(headers) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if style != nil {
				cell = a.render(*style, cell)
			}
			b.WriteString(cell)
			if i < len(headers)-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, &styleHeader)
	separators := make([]string, len(widths))
	for i, w := range widths {
		separators[i] = strings.Repeat("-", w)
	}
	writeRow(separators, &styleDim)
	for _, row := range rows {
		writeRow(row, nil)
	}
	return b.String()
}

func (a *App) planTable(items []model.PlanItem) string {
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = []string{
			strconv.FormatUint(uint64(item.ID), 10),
			item.StudyDate,
			item.Subject,
			item.Topic,
			strconv.FormatFloat(item.Hours, 'f', -1, 64),
			a.statusLabel(item.Status),
		}
	}
	return a.renderTable([]string{"ID", "DATE", "SUBJECT", "TOPIC", "HOURS", "STATUS"}, rows)
}
