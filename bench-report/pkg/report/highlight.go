package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/extremes"
)

var (
	fastestStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	slowestStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// Highlight styles a table produced by Table for terminal display: the
// header is bold, the fastest row green and the slowest row blue.
//
// Only stdout echo goes through Highlight; the persisted file stays plain.
// When the output is not a colour terminal lipgloss emits the text unchanged.
func Highlight(table string, ext extremes.Extremes) string {
	lines := strings.Split(strings.TrimSuffix(table, "\n"), "\n")
	for i, line := range lines {
		switch {
		case i == 0:
			lines[i] = headerStyle.Render(line)
		case i < 2:
		case ext.IsFastest(i - 2):
			lines[i] = fastestStyle.Render(line)
		case ext.IsSlowest(i - 2):
			lines[i] = slowestStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
