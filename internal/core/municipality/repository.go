package municipality

import "context"

// ListQuery describes a paginated, filtered, sorted listing.
// Sort and Order are expected to be normalized by the caller; adapters still
// whitelist Sort before interpolating it into engine queries.
type ListQuery struct {
	Name   string // case-insensitive substring filter, empty disables it
	Sort   string // one of id|codigo_ibge|nome|capital|codigo_uf
	Order  string // asc or desc
	Limit  int
	Offset int
}

// NearbyQuery describes a radius search around a point.
type NearbyQuery struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Limit     int
	Offset    int
}

// Nearby pairs a municipality with its computed distance from the query
// point, in kilometers, not rounded.
type Nearby struct {
	Municipality
	DistanceKm float64 `json:"distanceFromUser"`
}

// Repository is the record-store capability the service depends on.
//
// Implementations must map a unique-constraint violation on the IBGE code to
// ErrDuplicateIBGECode and a missing or malformed identifier to ErrNotFound.
// FindNearby must behave as a full scan filtered by great-circle distance
// (Earth radius EarthRadiusKm), ordered by distance ascending with ties
// broken by id ascending, even when the engine uses an index underneath.
type Repository interface {
	List(ctx context.Context, q ListQuery) ([]Municipality, int, error)
	FindByID(ctx context.Context, id string) (*Municipality, error)
	Create(ctx context.Context, m Municipality) (*Municipality, error)
	Update(ctx context.Context, id string, patch Patch) (*Municipality, error)
	Delete(ctx context.Context, id string) error
	FindNearby(ctx context.Context, q NearbyQuery) ([]Nearby, int, error)
}
