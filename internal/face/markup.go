// Package face renders brain snapshots. Render produces the markup frame
// consumed by display shells; View produces a styled terminal frame.
package face

import (
	"fmt"
	"html"
	"strings"

	"github.com/tactical-os/tos/pkg/models"
)

// BytesPerLine is the width of one raw buffer line.
const BytesPerLine = 16

// Render returns the markup for the active viewport of snap.
func Render(snap models.Snapshot) string {
	var b strings.Builder

	vp := snap.Viewport()
	level := 1
	if vp != nil {
		level = vp.Level
	}
	fmt.Fprintf(&b, `<div class="tos-face level-%d">`, level)

	if snap.Performance.Alert {
		renderAlert(&b, snap.Performance)
	}
	if len(snap.Notifications) > 0 {
		renderNotifications(&b, snap.Notifications)
	}

	if vp == nil {
		b.WriteString(`<div class="viewport empty">NO VIEWPORT</div>`)
	} else {
		fmt.Fprintf(&b, `<div class="viewport" data-id="%d" data-level="%d">`, vp.ID, vp.Level)
		fmt.Fprintf(&b, `<div class="level-label">LEVEL %d // %s</div>`, vp.Level, esc(strings.ToUpper(vp.LevelName)))
		switch vp.Level {
		case 1:
			renderOverview(&b, snap)
		case 2:
			renderSector(&b, snap, vp)
		case 3:
			renderDetail(&b, snap, vp)
		case 4:
			renderBuffer(&b, snap, vp)
		}
		b.WriteString(`</div>`)
		renderBezel(&b, snap, vp)
	}

	b.WriteString(`</div>`)
	return b.String()
}

func esc(s string) string {
	return html.EscapeString(s)
}

func renderAlert(b *strings.Builder, p models.PerfView) {
	b.WriteString(`<div class="tactical-alert perf-alert">`)
	b.WriteString(`<div class="alert-title">TACTICAL ALERT // PERFORMANCE CRITICAL</div>`)
	fmt.Fprintf(b, `<div class="alert-stats">CURRENT FPS: %.1f // THRESHOLD: %.1f</div>`, p.FPS, p.Threshold)
	b.WriteString(`</div>`)
}

func renderNotifications(b *strings.Builder, notes []models.NotificationView) {
	b.WriteString(`<div class="notifications">`)
	for _, n := range notes {
		fmt.Fprintf(b, `<div class="notification %s"><span class="notification-source">%s</span> %s</div>`,
			esc(n.Priority), esc(n.Source), esc(n.Message))
	}
	b.WriteString(`</div>`)
}

func renderOverview(b *strings.Builder, snap models.Snapshot) {
	b.WriteString(`<div class="sector-grid">`)
	for _, sec := range snap.Sectors {
		fmt.Fprintf(b, `<div class="sector" data-id="%d"><div class="sector-name">%s</div><div class="sector-count">%d SURFACES</div></div>`,
			sec.ID, esc(strings.ToUpper(sec.Label)), len(sec.Surfaces))
	}
	b.WriteString(`</div>`)
}

func renderSector(b *strings.Builder, snap models.Snapshot, vp *models.ViewportView) {
	if vp.SectorID == nil {
		b.WriteString(`<div class="sector-view empty">NO SECTOR</div>`)
		return
	}
	sec := snap.Sector(*vp.SectorID)
	if sec == nil {
		fmt.Fprintf(b, `<div class="sector-view empty">SECTOR %d OFFLINE</div>`, *vp.SectorID)
		return
	}
	fmt.Fprintf(b, `<div class="sector-view" data-id="%d"><div class="sector-name">%s</div>`, sec.ID, esc(strings.ToUpper(sec.Label)))
	for _, id := range sec.Surfaces {
		s := snap.Surface(id)
		if s == nil {
			continue
		}
		focused := ""
		if vp.SurfaceID != nil && *vp.SurfaceID == id {
			focused = " focused"
		}
		fmt.Fprintf(b, `<div class="surface%s" data-id="%d"><div class="surface-title">%s</div><div class="orch-id-label">ID: %d</div></div>`,
			focused, s.ID, esc(s.Title), s.ID)
	}
	b.WriteString(`</div>`)
}

func renderDetail(b *strings.Builder, snap models.Snapshot, vp *models.ViewportView) {
	s := focusedSurface(snap, vp)
	if s == nil {
		b.WriteString(`<div class="detail empty">NO SURFACE</div>`)
		return
	}
	b.WriteString(`<div class="detail">`)
	fmt.Fprintf(b, `<div class="detail-header">NODE INSPECTOR: %d</div>`, s.ID)
	fmt.Fprintf(b, `<div class="detail-row"><span>TITLE:</span> <span>%s</span></div>`, esc(s.Title))
	fmt.Fprintf(b, `<div class="detail-row"><span>ROLE:</span> <span>%s</span></div>`, esc(strings.ToUpper(s.Role)))
	if s.PID > 0 {
		fmt.Fprintf(b, `<div class="detail-row"><span>PID:</span> <span>%d</span></div>`, s.PID)
	}
	fmt.Fprintf(b, `<div class="detail-row"><span>CPU LOAD:</span> %.1f%%</div>`, s.CPU)
	fmt.Fprintf(b, `<div class="detail-row"><span>MEM LOAD:</span> %.1f%%</div>`, s.Mem)
	fmt.Fprintf(b, `<div class="detail-row"><span>UPTIME:</span> %d TICKS</div>`, snap.Uptime)
	b.WriteString(`<div class="history-list">`)
	for _, h := range s.History {
		fmt.Fprintf(b, `<div class="history-item">%s</div>`, esc(h))
	}
	b.WriteString(`</div>`)
	if vp.SplitID != nil {
		if split := snap.Surface(*vp.SplitID); split != nil {
			fmt.Fprintf(b, `<div class="split-pane" data-id="%d"><div class="detail-header">SPLIT: %d</div><div class="surface-title">%s</div></div>`,
				split.ID, split.ID, esc(split.Title))
		}
	}
	b.WriteString(`</div>`)
}

func renderBuffer(b *strings.Builder, snap models.Snapshot, vp *models.ViewportView) {
	title := "UNBOUND"
	if s := focusedSurface(snap, vp); s != nil {
		title = s.Title
	}
	b.WriteString(`<div class="memory-buffer">`)
	fmt.Fprintf(b, `<div class="buffer-header">RAW MEMORY BUFFER: %s</div>`, esc(title))
	b.WriteString(`<div class="hex-scroll">`)
	for _, line := range HexLines(vp.Buffer) {
		fmt.Fprintf(b, `<div class="hex-line"><span class="hex-addr">%s</span><span class="hex-data">%s</span><span class="hex-chars">%s</span></div>`,
			line.Addr, line.Data, esc(line.Chars))
	}
	b.WriteString(`</div></div>`)
}

func renderBezel(b *strings.Builder, snap models.Snapshot, vp *models.ViewportView) {
	if !vp.BezelExpanded {
		b.WriteString(`<div class="bezel collapsed"></div>`)
		return
	}
	onOff := func(v bool) string {
		if v {
			return "ON"
		}
		return "OFF"
	}
	b.WriteString(`<div class="bezel expanded">`)
	fmt.Fprintf(b, `<div class="bezel-row">AUDIO: %s // CHIRPS: %s // AMBIENT: %s</div>`,
		onOff(snap.Audio.Enabled), onOff(snap.Audio.Effects), onOff(snap.Audio.Ambient))
	fmt.Fprintf(b, `<div class="bezel-row">FPS: %.1f // UPTIME: %d</div>`, snap.Performance.FPS, snap.Uptime)
	b.WriteString(`</div>`)
}

func focusedSurface(snap models.Snapshot, vp *models.ViewportView) *models.SurfaceView {
	if vp.SurfaceID == nil {
		return nil
	}
	return snap.Surface(*vp.SurfaceID)
}

// HexLine is one row of a hex dump.
type HexLine struct {
	Addr  string
	Data  string
	Chars string
}

// HexLines splits data into rows of BytesPerLine bytes.
func HexLines(data []byte) []HexLine {
	lines := make([]HexLine, 0, (len(data)+BytesPerLine-1)/BytesPerLine)
	for off := 0; off < len(data); off += BytesPerLine {
		end := off + BytesPerLine
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]

		var hex, chars strings.Builder
		for i, c := range row {
			if i > 0 {
				hex.WriteByte(' ')
			}
			fmt.Fprintf(&hex, "%02X", c)
			if c >= 32 && c <= 126 {
				chars.WriteByte(c)
			} else {
				chars.WriteByte('.')
			}
		}
		lines = append(lines, HexLine{
			Addr:  fmt.Sprintf("%08X", off),
			Data:  hex.String(),
			Chars: chars.String(),
		})
	}
	return lines
}
