package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tactical-os/tos/errors"
)

func seeded(t *testing.T) *Registry {
	t.Helper()
	r := New()
	for _, label := range []string{"Primary", "Operations", "Science", "Engineering"} {
		r.CreateSector(label)
	}
	return r
}

func TestCreateSurface(t *testing.T) {
	r := seeded(t)
	sector := 1

	id := r.CreateSurface("Terminal emulator", RoleToplevel, &sector)
	s, ok := r.Surface(id)
	require.True(t, ok)
	assert.Equal(t, "Terminal", s.AppClass)
	assert.Equal(t, []string{"Surface created: Terminal emulator"}, s.History)
	require.NotNil(t, s.SectorID)
	assert.Equal(t, 1, *s.SectorID)

	sec, _ := r.Sector(1)
	assert.Equal(t, []int{id}, sec.Surfaces)

	other := r.CreateSurface("Editor", RolePopup, nil)
	assert.NotEqual(t, id, other)
}

func TestCreateSurfaceUnknownSectorLeavesUnassigned(t *testing.T) {
	r := seeded(t)
	bogus := 99

	id := r.CreateSurface("Orphan", RoleToplevel, &bogus)
	s, _ := r.Surface(id)
	assert.Nil(t, s.SectorID)
}

func TestMoveSurface(t *testing.T) {
	r := seeded(t)
	from := 0
	id := r.CreateSurface("Sensors", RoleToplevel, &from)

	require.NoError(t, r.MoveSurface(id, 2))

	s, _ := r.Surface(id)
	require.NotNil(t, s.SectorID)
	assert.Equal(t, 2, *s.SectorID)
	assert.Len(t, s.History, 2)
	assert.Equal(t, "Moved to Sector 2", s.History[1])

	src, _ := r.Sector(0)
	dst, _ := r.Sector(2)
	assert.Empty(t, src.Surfaces)
	assert.Equal(t, []int{id}, dst.Surfaces)
}

func TestMoveSurfaceErrors(t *testing.T) {
	r := seeded(t)
	id := r.CreateSurface("Sensors", RoleToplevel, nil)

	err := r.MoveSurface(404, 1)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	err = r.MoveSurface(id, 42)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSector))

	s, _ := r.Surface(id)
	assert.Nil(t, s.SectorID)
	assert.Len(t, s.History, 1)
}

func TestRemoveSurface(t *testing.T) {
	r := seeded(t)
	sector := 3
	id := r.CreateSurface("Warp core monitor", RoleBackground, &sector)

	require.NoError(t, r.RemoveSurface(id))
	_, ok := r.Surface(id)
	assert.False(t, ok)
	sec, _ := r.Sector(3)
	assert.Empty(t, sec.Surfaces)

	assert.True(t, errors.Is(r.RemoveSurface(id), errors.ErrCodeNotFound))
}

func TestFindAndOrdering(t *testing.T) {
	r := seeded(t)
	sector := 0
	a := r.CreateSurface("Terminal one", RoleToplevel, &sector)
	b := r.CreateSurface("Browser", RoleToplevel, &sector)
	c := r.CreateSurface("terminal two", RoleToplevel, &sector)

	found := r.FindSurfaces("TERMINAL")
	require.Len(t, found, 2)
	assert.Equal(t, a, found[0].ID)
	assert.Equal(t, c, found[1].ID)

	inSector := r.SurfacesInSector(0)
	require.Len(t, inSector, 3)
	assert.Equal(t, []int{a, b, c}, []int{inSector[0].ID, inSector[1].ID, inSector[2].ID})

	sectors := r.Sectors()
	require.Len(t, sectors, 4)
	assert.Equal(t, "Primary", sectors[0].Label)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("Popup")
	assert.True(t, ok)
	assert.Equal(t, RolePopup, role)

	_, ok = ParseRole("dialog")
	assert.False(t, ok)
}
