package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"geodados/ms_municipios/internal/core/municipality"

	"github.com/google/uuid"
)

// Repository is an in-memory record store. It backs the tests and the
// zero-dependency demo engine, and implements the same capability interface
// as the database adapters.
type Repository struct {
	mu      sync.RWMutex
	records map[string]municipality.Municipality
}

// NewRepository creates an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{records: make(map[string]municipality.Municipality)}
}

func (r *Repository) List(_ context.Context, q municipality.ListQuery) ([]municipality.Municipality, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filter := strings.ToLower(q.Name)
	matches := make([]municipality.Municipality, 0, len(r.records))
	for _, m := range r.records {
		if filter != "" && !strings.Contains(strings.ToLower(m.Name), filter) {
			continue
		}
		matches = append(matches, m)
	}

	sortMunicipalities(matches, q.Sort, q.Order)
	total := len(matches)
	return pageOf(matches, q.Offset, q.Limit), total, nil
}

func (r *Repository) FindByID(_ context.Context, id string) (*municipality.Municipality, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.records[id]
	if !ok {
		return nil, municipality.ErrNotFound
	}
	return &m, nil
}

func (r *Repository) Create(_ context.Context, m municipality.Municipality) (*municipality.Municipality, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.records {
		if existing.IBGECode == m.IBGECode {
			return nil, municipality.ErrDuplicateIBGECode
		}
	}

	m.ID = uuid.New().String()
	r.records[m.ID] = m
	return &m, nil
}

func (r *Repository) Update(_ context.Context, id string, patch municipality.Patch) (*municipality.Municipality, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.records[id]
	if !ok {
		return nil, municipality.ErrNotFound
	}
	if patch.IBGECode != nil {
		for otherID, existing := range r.records {
			if otherID != id && existing.IBGECode == *patch.IBGECode {
				return nil, municipality.ErrDuplicateIBGECode
			}
		}
	}

	patch.Apply(&m)
	r.records[id] = m
	return &m, nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return municipality.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func (r *Repository) FindNearby(_ context.Context, q municipality.NearbyQuery) ([]municipality.Nearby, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []municipality.Nearby
	for _, m := range r.records {
		d := municipality.DistanceKm(q.Latitude, q.Longitude, m.Latitude, m.Longitude)
		if d <= q.RadiusKm {
			matches = append(matches, municipality.Nearby{Municipality: m, DistanceKm: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].DistanceKm != matches[j].DistanceKm {
			return matches[i].DistanceKm < matches[j].DistanceKm
		}
		return matches[i].ID < matches[j].ID
	})

	total := len(matches)
	return pageOf(matches, q.Offset, q.Limit), total, nil
}

func sortMunicipalities(items []municipality.Municipality, field, order string) {
	less := func(a, b municipality.Municipality) bool {
		switch field {
		case "id":
			return a.ID < b.ID
		case "codigo_ibge":
			return a.IBGECode < b.IBGECode
		case "capital":
			return !a.Capital && b.Capital
		case "codigo_uf":
			return a.UFCode < b.UFCode
		default:
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				return an < bn
			}
			return a.ID < b.ID
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if order == "desc" {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func pageOf[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
