package systems

// Stage IDs in the order they run each tick.
// They are also the perf phase names.
const (
	StageIntegrate    = "integrate"
	StageGridTransfer = "grid_transfer"
	StageCollisions   = "collisions"
)

// SystemInfo describes a simulation stage.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this stage does
}

// SystemRegistry holds metadata about the tick stages.
// This centralizes stage naming so logging and the perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all stages in tick order.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.Register(SystemInfo{ID: StageIntegrate, Name: "Integrator", Description: "Applies gravity, moves particles, bounces off walls"})
	reg.Register(SystemInfo{ID: StageGridTransfer, Name: "Grid Transfer", Description: "Scatters particle momentum onto the velocity grid"})
	reg.Register(SystemInfo{ID: StageCollisions, Name: "Collisions", Description: "Separates overlapping particles and applies impulses"})
	return reg
}

// Register adds a stage to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// GetName returns the display name for a stage ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// IDs returns all stage IDs in tick order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
