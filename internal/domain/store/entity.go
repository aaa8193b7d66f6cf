package store

import (
	"time"

	"github.com/storeops/attendance-backend-go/internal/pkg/utils"
)

type Store struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Geofence is the circular punch boundary attached 1:1 to a store.
type Geofence struct {
	StoreID      string
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
	IsActive     bool
}

// Contains reports whether the point lies inside the fence. A nil or
// inactive fence never contains anything, which callers treat as "no
// geofence enforcement configured".
func (g *Geofence) Contains(lat, lon float64) bool {
	if g == nil || !g.IsActive {
		return false
	}
	return utils.CalculateHaversineDistance(lat, lon, g.Latitude, g.Longitude) <= g.RadiusMeters
}

// Enforced reports whether punches against this store must pass the fence.
func (g *Geofence) Enforced() bool {
	return g != nil && g.IsActive
}
