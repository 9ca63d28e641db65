package face

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tactical-os/tos/pkg/models"
	"github.com/tactical-os/tos/tui/theme"
)

// View renders snap as a styled terminal frame. width <= 0 disables
// wrapping.
func View(snap models.Snapshot, th *theme.Theme, width int) string {
	if th == nil {
		th = theme.DefaultTheme
	}

	var sections []string
	if snap.Performance.Alert {
		banner := fmt.Sprintf(" TACTICAL ALERT // PERFORMANCE CRITICAL // %.1f FPS ", snap.Performance.FPS)
		sections = append(sections, th.Alert.Render(banner))
	}
	for _, n := range snap.Notifications {
		style := th.Accent
		if n.Priority == "critical" {
			style = th.Warning
		}
		sections = append(sections, style.Render(fmt.Sprintf("[%s] %s", n.Source, n.Message)))
	}

	vp := snap.Viewport()
	if vp == nil {
		sections = append(sections, th.Muted.Render("no viewport"))
		return strings.Join(sections, "\n")
	}

	sections = append(sections, th.Header.Render(fmt.Sprintf("LEVEL %d // %s", vp.Level, strings.ToUpper(vp.LevelName))))

	var body string
	switch vp.Level {
	case 1:
		body = viewOverview(snap, th)
	case 2:
		body = viewSector(snap, vp, th)
	case 3:
		body = viewDetail(snap, vp, th)
	case 4:
		body = viewBuffer(snap, vp, th)
	}
	if width > 0 {
		body = lipgloss.NewStyle().MaxWidth(width).Render(body)
	}
	sections = append(sections, body)

	if vp.BezelExpanded {
		sections = append(sections, th.Bezel.Render(bezelLine(snap)))
	}

	return strings.Join(sections, "\n")
}

func viewOverview(snap models.Snapshot, th *theme.Theme) string {
	if len(snap.Sectors) == 0 {
		return th.Muted.Render("no sectors")
	}
	cells := make([]string, 0, len(snap.Sectors))
	for _, sec := range snap.Sectors {
		cell := lipgloss.JoinVertical(lipgloss.Left,
			th.Accent.Render(fmt.Sprintf("[%d] %s", sec.ID, strings.ToUpper(sec.Label))),
			th.Muted.Render(fmt.Sprintf("%d surfaces", len(sec.Surfaces))),
		)
		cells = append(cells, th.Bezel.Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func viewSector(snap models.Snapshot, vp *models.ViewportView, th *theme.Theme) string {
	if vp.SectorID == nil {
		return th.Muted.Render("no sector")
	}
	sec := snap.Sector(*vp.SectorID)
	if sec == nil {
		return th.Error.Render(fmt.Sprintf("sector %d offline", *vp.SectorID))
	}

	lines := []string{th.Title.Render(strings.ToUpper(sec.Label))}
	if len(sec.Surfaces) == 0 {
		lines = append(lines, th.Muted.Render("  empty"))
	}
	for _, id := range sec.Surfaces {
		s := snap.Surface(id)
		if s == nil {
			continue
		}
		marker := "  "
		style := th.Bold
		if vp.SurfaceID != nil && *vp.SurfaceID == id {
			marker = "> "
			style = th.Accent
		}
		lines = append(lines, style.Render(fmt.Sprintf("%s%3d  %s", marker, s.ID, s.Title)))
	}
	return strings.Join(lines, "\n")
}

func viewDetail(snap models.Snapshot, vp *models.ViewportView, th *theme.Theme) string {
	s := focusedSurface(snap, vp)
	if s == nil {
		return th.Muted.Render("no surface")
	}

	row := func(label, value string) string {
		return th.Muted.Render(fmt.Sprintf("%-9s", label)) + value
	}
	left := []string{
		th.Title.Render(fmt.Sprintf("NODE INSPECTOR: %d", s.ID)),
		row("TITLE", s.Title),
		row("ROLE", strings.ToUpper(s.Role)),
		row("CPU", fmt.Sprintf("%.1f%%", s.CPU)),
		row("MEM", fmt.Sprintf("%.1f%%", s.Mem)),
	}
	if s.PID > 0 {
		left = append(left, row("PID", fmt.Sprintf("%d", s.PID)))
	}

	right := []string{th.Title.Render("NODE HISTORY")}
	for _, h := range s.History {
		right = append(right, "• "+h)
	}

	panes := []string{
		th.Bezel.Render(strings.Join(left, "\n")),
		th.Bezel.Render(strings.Join(right, "\n")),
	}
	if vp.SplitID != nil {
		if split := snap.Surface(*vp.SplitID); split != nil {
			panes = append(panes, th.Bezel.Render(th.Title.Render(fmt.Sprintf("SPLIT: %d", split.ID))+"\n"+split.Title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

func viewBuffer(snap models.Snapshot, vp *models.ViewportView, th *theme.Theme) string {
	title := "UNBOUND"
	if s := focusedSurface(snap, vp); s != nil {
		title = s.Title
	}
	lines := []string{th.Title.Render("RAW MEMORY BUFFER: " + title)}
	for _, l := range HexLines(vp.Buffer) {
		lines = append(lines, fmt.Sprintf("%s  %-47s  %s",
			th.Accent.Render(l.Addr), l.Data, th.Muted.Render(l.Chars)))
	}
	return strings.Join(lines, "\n")
}

func bezelLine(snap models.Snapshot) string {
	onOff := func(v bool) string {
		if v {
			return "ON"
		}
		return "OFF"
	}
	return fmt.Sprintf("AUDIO %s  CHIRPS %s  AMBIENT %s  FPS %.1f  UPTIME %d",
		onOff(snap.Audio.Enabled), onOff(snap.Audio.Effects), onOff(snap.Audio.Ambient),
		snap.Performance.FPS, snap.Uptime)
}
