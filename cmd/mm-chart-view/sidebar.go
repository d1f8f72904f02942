package main

import (
	"fmt"
	"strings"

	"github.com/x1001000/mm-chart-view/pkg/engine"
	"github.com/x1001000/mm-chart-view/pkg/macromicro"
)

const (
	sidebarWidth = 38
	exampleURL   = "https://www.macromicro.me/charts/444/us-mm-gspc"
)

// sidebarModel shows the loaded chart: id, preview image status, and the
// latest two values of each series. Before the first load it shows usage
// hints instead.
type sidebarModel struct {
	snapshot *engine.Snapshot
	height   int
}

func newSidebar() sidebarModel {
	return sidebarModel{}
}

func (m *sidebarModel) setSnapshot(snap engine.Snapshot) {
	m.snapshot = &snap
}

func (m *sidebarModel) clear() {
	m.snapshot = nil
}

func (m sidebarModel) View() string {
	var sb strings.Builder

	sb.WriteString(sidebarTitleStyle.Render("MacroMicro Chart Analyst"))
	sb.WriteString("\n\n")

	if m.snapshot == nil {
		sb.WriteString(dimStyle.Render("No chart loaded."))
		sb.WriteString("\n\n")
		sb.WriteString(dimStyle.Render("Paste a chart URL to begin,\nor try the example:"))
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render(exampleURL))
		return m.frame(sb.String())
	}

	sb.WriteString(sidebarHeaderStyle.Render("Chart ID: " + m.snapshot.ChartID))
	sb.WriteString("\n")

	if len(m.snapshot.Image) > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("preview cached (%s PNG)", fmtBytes(len(m.snapshot.Image)))))
	} else {
		sb.WriteString(errorTextStyle.Render("preview unavailable"))
	}
	sb.WriteString("\n\n")

	if len(m.snapshot.Series) > 0 {
		sb.WriteString(sidebarHeaderStyle.Render("Series Data"))
		sb.WriteString("\n")
		for _, s := range m.snapshot.Series {
			sb.WriteString(seriesNameStyle.Render(truncate(s.Name, sidebarWidth-4)))
			sb.WriteString("\n")
			sb.WriteString("  " + renderLatest(s))
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString(dimStyle.Render("series data unavailable"))
	}

	return m.frame(sb.String())
}

// renderLatest renders a series' latest values the way the prompt block does.
func renderLatest(s macromicro.Series) string {
	switch {
	case len(s.Latest) >= 2:
		return fmt.Sprintf("%s -> %s",
			macromicro.FormatValue(s.Latest[0]), macromicro.FormatValue(s.Latest[1]))
	case len(s.Latest) == 1:
		return macromicro.FormatValue(s.Latest[0])
	default:
		return dimStyle.Render("(no values)")
	}
}

func (m sidebarModel) frame(content string) string {
	style := sidebarStyle.Width(sidebarWidth)
	if m.height > 0 {
		style = style.Height(m.height)
	}
	return style.Render(content)
}
