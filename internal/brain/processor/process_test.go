package processor

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tactical-os/tos/internal/brain"
	"github.com/tactical-os/tos/internal/brain/audio"
	"github.com/tactical-os/tos/internal/brain/nav"
	"github.com/tactical-os/tos/internal/brain/registry"
	"github.com/tactical-os/tos/pkg/models"
)

func newState(t *testing.T) *brain.State {
	t.Helper()
	return brain.NewState(nil)
}

func frozen(st *brain.State) models.Snapshot {
	snap := st.Snapshot()
	snap.TakenAt = time.Time{}
	return snap
}

func TestMoveCommand(t *testing.T) {
	st := newState(t)
	sector := 0
	id := st.Registry.CreateSurface("Logic Core", registry.RoleToplevel, &sector)

	resp := Process(st, fmt.Sprintf("move %d 2", id))
	assert.Equal(t, fmt.Sprintf("Surface %d moved to Sector 2", id), resp)
	assert.Contains(t, resp, "moved to Sector 2")

	s, _ := st.Registry.Surface(id)
	require.NotNil(t, s.SectorID)
	assert.Equal(t, 2, *s.SectorID)

	moved := 0
	for _, h := range s.History {
		if strings.Contains(h, "Moved to Sector 2") {
			moved++
		}
	}
	assert.Equal(t, 1, moved)
}

func TestFailuresDoNotMutate(t *testing.T) {
	st := newState(t)
	sector := 1
	id := st.Registry.CreateSurface("Sensors", registry.RoleToplevel, &sector)

	requests := []string{
		"move 999 2",
		fmt.Sprintf("move %d 77", id),
		"move one two",
		"move 1",
		"warp 9",
		"zoom 7",
		"config ambient maybe",
		"config shields on",
		"kill 404",
		"inspect 404",
		"focus 404",
		"sector 55",
		"history 404",
		"viewport 3",
		"set_setting:ambient",
		"zoom_to:nowhere",
		"spawn Scout 42",
		"attach 404 77",
		fmt.Sprintf("attach %d 0", id),
		fmt.Sprintf("split %d", id),
		"swap",
		"clone",
		"alert",
		"clear all",
		"",
	}
	for _, req := range requests {
		t.Run(req, func(t *testing.T) {
			before := frozen(st)
			resp := Process(st, req)
			assert.True(t, IsFailure(resp), "response %q", resp)
			assert.Equal(t, before, frozen(st))
		})
	}
}

func TestUnknownSurfaceMoveError(t *testing.T) {
	st := newState(t)
	resp := Process(st, "move 12 1")
	assert.Equal(t, "Error: surface 12 not found", resp)
	assert.Empty(t, st.Registry.Surfaces())
}

func TestZoomCommands(t *testing.T) {
	st := newState(t)
	sector := 0
	st.Registry.CreateSurface("Terminal", registry.RoleToplevel, &sector)

	for i := 0; i < int(nav.Deepest)-1; i++ {
		Process(st, "zoom in")
	}
	assert.Equal(t, nav.RawBuffer, st.Viewport().Level)

	resp := Process(st, "zoom in")
	assert.Equal(t, "Zooming to Level 4 (RAW BUFFER)", resp)
	assert.Equal(t, nav.RawBuffer, st.Viewport().Level)

	resp = Process(st, "zoom out")
	assert.Equal(t, "Zooming to Level 3 (DETAIL)", resp)

	Process(st, "ZOOM 1")
	assert.Equal(t, nav.Overview, st.Viewport().Level)

	Process(st, "zoom_to:3")
	assert.Equal(t, nav.Detail, st.Viewport().Level)
	Process(st, "zoom_to:GlobalOverview")
	assert.Equal(t, nav.Overview, st.Viewport().Level)
}

func TestSpawnAndZoomChirp(t *testing.T) {
	st := newState(t)

	resp := Process(st, "spawn Science Console")
	assert.Equal(t, "Launched 'Science Console' (ID: 1) in Sector 0", resp)
	Process(st, "zoom in")
	assert.Equal(t, []string{audio.CueChirp, audio.CueChirp}, st.Audio.Drain())

	Process(st, "config chirps off")
	Process(st, "launch Scout 3")
	assert.Empty(t, st.Audio.Drain())

	found := st.Registry.SurfacesInSector(3)
	require.Len(t, found, 1)
	assert.Equal(t, "Scout", found[0].Title)

	Process(st, "spawn")
	assert.Len(t, st.Registry.FindSurfaces("Terminal"), 1)
}

func TestConfigCommands(t *testing.T) {
	st := newState(t)

	assert.Equal(t, "Ambient Audio: OFF", Process(st, "config ambient off"))
	assert.False(t, st.Audio.AmbientEnabled)
	assert.Equal(t, "Ambient Audio: ON", Process(st, "Config AMBIENT on"))

	assert.Equal(t, "Audio Master: OFF", Process(st, "config audio false"))
	assert.False(t, st.Audio.Enabled)

	assert.Equal(t, "Tactile Chirps: OFF", Process(st, "set_setting:chirps;off"))
	assert.False(t, st.Audio.EffectsEnabled)

	assert.Equal(t, "Current Settings: Audio=OFF, Chirps=OFF, Ambient=ON, Alert Threshold=20.0", Process(st, "config"))
}

func TestInspectFocusesDetail(t *testing.T) {
	st := newState(t)
	sector := 2
	st.Registry.CreateSurface("Decoy", registry.RoleToplevel, &sector)
	id := st.Registry.CreateSurface("Reactor", registry.RoleToplevel, &sector)

	resp := Process(st, fmt.Sprintf("inspect %d", id))
	assert.Contains(t, resp, "Level 3 (DETAIL)")

	vp := st.Viewport()
	assert.Equal(t, nav.Detail, vp.Level)
	require.NotNil(t, vp.SurfaceID)
	assert.Equal(t, id, *vp.SurfaceID)
	assert.Equal(t, 2, *vp.SectorID)

	s, _ := st.Registry.Surface(id)
	assert.Equal(t, "Deep-scan inspection initiated.", s.History[len(s.History)-1])
}

func TestKillClearsViewportFocus(t *testing.T) {
	st := newState(t)
	sector := 0
	id := st.Registry.CreateSurface("KillMe", registry.RoleToplevel, &sector)
	Process(st, fmt.Sprintf("focus %d", id))
	require.NotNil(t, st.Viewport().SurfaceID)

	assert.Equal(t, fmt.Sprintf("Terminated process ID: %d", id), Process(st, fmt.Sprintf("kill %d", id)))
	assert.Nil(t, st.Viewport().SurfaceID)
	_, ok := st.Registry.Surface(id)
	assert.False(t, ok)
}

func TestSectorFindHistoryViewport(t *testing.T) {
	cfgState := newState(t)

	assert.Equal(t, "Created Sector 4: Deep Space", Process(cfgState, "sector create Deep Space"))
	assert.Equal(t, "Sector 4 (Deep Space) selected", Process(cfgState, "sector 4"))
	assert.Equal(t, nav.SectorFocus, cfgState.Viewport().Level)

	Process(cfgState, "spawn Terminal one")
	Process(cfgState, "spawn Browser")
	resp := Process(cfgState, "find terminal")
	assert.Equal(t, "Found 1 surface(s) matching 'terminal': 1 Terminal one", resp)
	assert.Equal(t, "No surfaces match 'comms'", Process(cfgState, "find comms"))

	Process(cfgState, "move 1 0")
	assert.Equal(t, "Surface 1 history: Surface created: Terminal one | Moved to Sector 0", Process(cfgState, "history 1"))

	assert.Equal(t, "Viewport 0 active at Level 2 (SECTOR FOCUS)", Process(cfgState, "viewport 0"))
	assert.Equal(t, HelpText, Process(cfgState, "help"))
}

func TestBezelAndHaptic(t *testing.T) {
	st := newState(t)
	assert.Equal(t, "Bezel EXPANDED", Process(st, "bezel"))
	assert.Equal(t, "Bezel COLLAPSED", Process(st, "bezel"))

	assert.Equal(t, "Haptic cue 'pulse' queued", Process(st, "haptic pulse"))
	assert.Equal(t, []string{"pulse"}, st.Haptics.Drain())
}

func TestParseVariants(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"move 3 1", Move{Surface: 3, Sector: 1}},
		{"zoom in", Zoom{Mode: ZoomIn}},
		{"zoom 2", Zoom{Mode: ZoomTo, Level: nav.SectorFocus}},
		{"zoom_to:4", Zoom{Mode: ZoomTo, Level: nav.RawBuffer}},
		{"set_setting:audio.ambient;true", SetConfig{Key: SettingAmbient, On: true}},
		{"config", ShowConfig{}},
		{"sector create Ops Two", CreateSector{Label: "Ops Two"}},
		{"find Red Alert: reactor", Find{Query: "Red Alert: reactor"}},
		{"terminate 8", Kill{Surface: 8}},
		{"HELP", Help{}},
		{"attach 2 4242", Attach{Surface: 2, PID: 4242}},
		{"split 5", Split{Surface: 5}},
		{"duplicate", Clone{}},
		{"notify Red Alert", Alert{Message: "Red Alert"}},
		{"clear", ClearNotices{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttachBindsProcess(t *testing.T) {
	st := newState(t)
	sector := 0
	id := st.Registry.CreateSurface("Terminal", registry.RoleToplevel, &sector)

	assert.Equal(t, fmt.Sprintf("Surface %d attached to process 4242", id), Process(st, fmt.Sprintf("attach %d 4242", id)))
	s, _ := st.Registry.Surface(id)
	assert.Equal(t, 4242, s.PID)
	assert.Equal(t, "Attached to process 4242", s.History[len(s.History)-1])
}

func TestSplitAndSwap(t *testing.T) {
	st := newState(t)
	sector := 1
	primary := st.Registry.CreateSurface("Helm", registry.RoleToplevel, &sector)
	secondary := st.Registry.CreateSurface("Tactical", registry.RoleToplevel, &sector)

	Process(st, fmt.Sprintf("inspect %d", primary))
	assert.Equal(t, fmt.Sprintf("Splitting view with Surface ID: %d", secondary), Process(st, fmt.Sprintf("split %d", secondary)))

	vp := st.Viewport()
	require.NotNil(t, vp.SplitID)
	assert.Equal(t, secondary, *vp.SplitID)
	p, _ := st.Registry.Surface(primary)
	assert.Equal(t, fmt.Sprintf("Entered split-view with Surface %d", secondary), p.History[len(p.History)-1])
	s, _ := st.Registry.Surface(secondary)
	assert.Equal(t, fmt.Sprintf("Entered split-view with Surface %d", primary), s.History[len(s.History)-1])

	assert.Equal(t, fmt.Sprintf("Swapped split view: Surface %d primary, Surface %d secondary", secondary, primary), Process(st, "swap"))
	assert.Equal(t, secondary, *vp.SurfaceID)
	assert.Equal(t, primary, *vp.SplitID)

	assert.True(t, IsFailure(Process(st, fmt.Sprintf("split %d", secondary))))

	Process(st, "zoom out")
	assert.Nil(t, vp.SplitID)
	assert.True(t, IsFailure(Process(st, "swap")))
}

func TestKillPromotesSplitSurface(t *testing.T) {
	st := newState(t)
	sector := 1
	primary := st.Registry.CreateSurface("Helm", registry.RoleToplevel, &sector)
	secondary := st.Registry.CreateSurface("Tactical", registry.RoleToplevel, &sector)
	Process(st, fmt.Sprintf("inspect %d", primary))
	Process(st, fmt.Sprintf("split %d", secondary))

	Process(st, fmt.Sprintf("kill %d", primary))
	vp := st.Viewport()
	require.NotNil(t, vp.SurfaceID)
	assert.Equal(t, secondary, *vp.SurfaceID)
	assert.Nil(t, vp.SplitID)
}

func TestCloneFocusedSurface(t *testing.T) {
	st := newState(t)
	sector := 2
	id := st.Registry.CreateSurface("Sensors", registry.RoleToplevel, &sector)
	Process(st, fmt.Sprintf("focus %d", id))

	resp := Process(st, "clone")
	assert.Equal(t, fmt.Sprintf("Cloned 'Sensors' (ID: %d)", id+1), resp)
	clone, ok := st.Registry.Surface(id + 1)
	require.True(t, ok)
	require.NotNil(t, clone.SectorID)
	assert.Equal(t, 2, *clone.SectorID)
	assert.Equal(t, registry.RoleToplevel, clone.Role)
}

func TestAlertAndClear(t *testing.T) {
	st := newState(t)
	st.Audio.Drain()

	assert.Equal(t, "Notification sent.", Process(st, "alert shift change"))
	assert.Equal(t, "Critical notification sent.", Process(st, "notify Reactor critical"))
	assert.Equal(t, []string{audio.CueBeep}, st.Audio.Drain())

	snap := st.Snapshot()
	require.Len(t, snap.Notifications, 2)
	assert.Equal(t, models.NotificationView{Source: AlertSource, Message: "shift change", Priority: "normal"}, snap.Notifications[0])
	assert.Equal(t, "critical", snap.Notifications[1].Priority)

	assert.Equal(t, "Cleared 2 notification(s)", Process(st, "clear"))
	assert.Empty(t, st.Snapshot().Notifications)
}
