// Package registry owns the sector and surface records of the desktop.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tactical-os/tos/errors"
)

// Role classifies a surface.
type Role string

const (
	RoleToplevel   Role = "toplevel"
	RolePopup      Role = "popup"
	RoleBackground Role = "background"
)

// ParseRole maps a role name to a Role. Unknown names are rejected.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(s)) {
	case RoleToplevel:
		return RoleToplevel, true
	case RolePopup:
		return RolePopup, true
	case RoleBackground:
		return RoleBackground, true
	}
	return "", false
}

// Sector is a logical work area. Sectors are flat and never removed.
type Sector struct {
	ID       int
	Label    string
	Surfaces []int
}

// Surface is a window or task unit.
type Surface struct {
	ID       int
	Title    string
	AppClass string
	Role     Role
	// SectorID is nil while the surface is unassigned.
	SectorID *int
	// History is append-only.
	History []string
	PID     int
	CPU     float64
	Mem     float64
}

// InSector reports whether the surface is assigned to sector id.
func (s *Surface) InSector(id int) bool {
	return s.SectorID != nil && *s.SectorID == id
}

// Registry maps sector and surface ids to their records. It is not
// safe for concurrent use; the store serializes every access.
type Registry struct {
	sectors       map[int]*Sector
	surfaces      map[int]*Surface
	nextSectorID  int
	nextSurfaceID int
}

// New creates an empty registry. Sector ids start at 0, surface ids at 1.
func New() *Registry {
	return &Registry{
		sectors:       make(map[int]*Sector),
		surfaces:      make(map[int]*Surface),
		nextSurfaceID: 1,
	}
}

// CreateSector adds a sector and returns its id.
func (r *Registry) CreateSector(label string) int {
	id := r.nextSectorID
	r.nextSectorID++
	r.sectors[id] = &Sector{ID: id, Label: label}
	return id
}

// Sector returns the sector with the given id.
func (r *Registry) Sector(id int) (*Sector, bool) {
	s, ok := r.sectors[id]
	return s, ok
}

// Sectors returns all sectors ordered by id.
func (r *Registry) Sectors() []*Sector {
	out := make([]*Sector, 0, len(r.sectors))
	for _, s := range r.sectors {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateSurface registers a surface and returns its fresh id. A sectorID
// that names no sector leaves the surface unassigned.
func (r *Registry) CreateSurface(title string, role Role, sectorID *int) int {
	id := r.nextSurfaceID
	r.nextSurfaceID++

	appClass := "App"
	if fields := strings.Fields(title); len(fields) > 0 {
		appClass = fields[0]
	}

	surface := &Surface{
		ID:       id,
		Title:    title,
		AppClass: appClass,
		Role:     role,
		History:  []string{"Surface created: " + title},
	}
	if sectorID != nil {
		if sector, ok := r.sectors[*sectorID]; ok {
			sid := sector.ID
			surface.SectorID = &sid
			sector.Surfaces = append(sector.Surfaces, id)
		}
	}
	r.surfaces[id] = surface
	return id
}

// Surface returns the surface with the given id.
func (r *Registry) Surface(id int) (*Surface, bool) {
	s, ok := r.surfaces[id]
	return s, ok
}

// Surfaces returns every surface ordered by id.
func (r *Registry) Surfaces() []*Surface {
	out := make([]*Surface, 0, len(r.surfaces))
	for _, s := range r.surfaces {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SurfacesInSector returns the sector's surfaces ordered by id.
func (r *Registry) SurfacesInSector(sectorID int) []*Surface {
	var out []*Surface
	for _, s := range r.surfaces {
		if s.InSector(sectorID) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindSurfaces matches query against titles and app classes, case-insensitively.
func (r *Registry) FindSurfaces(query string) []*Surface {
	query = strings.ToLower(query)
	var out []*Surface
	for _, s := range r.surfaces {
		if strings.Contains(strings.ToLower(s.Title), query) || strings.Contains(strings.ToLower(s.AppClass), query) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MoveSurface reassigns a surface to sectorID and records the move in its
// history. Nothing is mutated when either id is unknown.
func (r *Registry) MoveSurface(id, sectorID int) error {
	surface, ok := r.surfaces[id]
	if !ok {
		return errors.SurfaceNotFound(id)
	}
	target, ok := r.sectors[sectorID]
	if !ok {
		return errors.InvalidSector(sectorID)
	}

	if surface.SectorID != nil {
		if prev, ok := r.sectors[*surface.SectorID]; ok {
			prev.Surfaces = removeID(prev.Surfaces, id)
		}
	}
	if !containsID(target.Surfaces, id) {
		target.Surfaces = append(target.Surfaces, id)
	}
	sid := target.ID
	surface.SectorID = &sid
	surface.History = append(surface.History, fmt.Sprintf("Moved to Sector %d", sectorID))
	return nil
}

// AppendHistory adds an event to a surface's history.
func (r *Registry) AppendHistory(id int, message string) error {
	surface, ok := r.surfaces[id]
	if !ok {
		return errors.SurfaceNotFound(id)
	}
	surface.History = append(surface.History, message)
	return nil
}

// RemoveSurface deletes a surface and detaches it from its sector.
func (r *Registry) RemoveSurface(id int) error {
	surface, ok := r.surfaces[id]
	if !ok {
		return errors.SurfaceNotFound(id)
	}
	if surface.SectorID != nil {
		if sector, ok := r.sectors[*surface.SectorID]; ok {
			sector.Surfaces = removeID(sector.Surfaces, id)
		}
	}
	delete(r.surfaces, id)
	return nil
}

// AttachProcess binds a surface to a host pid for statistics sampling.
func (r *Registry) AttachProcess(id, pid int) error {
	surface, ok := r.surfaces[id]
	if !ok {
		return errors.SurfaceNotFound(id)
	}
	surface.PID = pid
	surface.History = append(surface.History, fmt.Sprintf("Attached to process %d", pid))
	return nil
}

// SetTelemetry records a statistics sample for a surface. Unknown ids are
// ignored: the surface may have been removed while the sample was taken.
func (r *Registry) SetTelemetry(id int, cpu, mem float64) {
	if surface, ok := r.surfaces[id]; ok {
		surface.CPU = cpu
		surface.Mem = mem
	}
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
