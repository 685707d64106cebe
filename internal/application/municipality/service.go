package municipality

import (
	"context"
	"strings"

	core "geodados/ms_municipios/internal/core/municipality"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// allowed listing sort attributes; anything else falls back to nome.
var sortFields = map[string]bool{
	"id":          true,
	"codigo_ibge": true,
	"nome":        true,
	"capital":     true,
	"codigo_uf":   true,
}

// Service orchestrates municipality use cases on top of a record store.
type Service struct {
	repo core.Repository
}

// NewService creates a municipality service with the given record store.
func NewService(repo core.Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of municipalities with pagination metadata. Page and
// limit are coerced to positive values, the limit is capped, unknown sort
// fields fall back to nome and unknown orders to asc.
func (s *Service) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	page, limit := coercePage(req.Page, req.Limit)

	sort := strings.ToLower(strings.TrimSpace(req.Sort))
	if !sortFields[sort] {
		sort = "nome"
	}
	order := strings.ToLower(strings.TrimSpace(req.Order))
	if order != "desc" {
		order = "asc"
	}

	items, total, err := s.repo.List(ctx, core.ListQuery{
		Name:   strings.TrimSpace(req.Name),
		Sort:   sort,
		Order:  order,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []core.Municipality{}
	}

	return &ListResponse{
		Data:       items,
		Pagination: paginate(total, page, limit),
	}, nil
}

// Get returns a single municipality or core.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*core.Municipality, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates and persists a new municipality. All fields are required;
// a duplicate IBGE code yields core.ErrDuplicateIBGECode.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*core.Municipality, error) {
	var missing core.FieldErrors
	if req.IBGECode == nil {
		missing = append(missing, "O código IBGE é obrigatório")
	}
	if req.Name == nil {
		missing = append(missing, "O nome do município é obrigatório")
	}
	if req.Capital == nil {
		missing = append(missing, "O campo capital é obrigatório")
	}
	if req.UFCode == nil {
		missing = append(missing, "O código UF é obrigatório")
	}
	if req.Longitude == nil || req.Latitude == nil {
		missing = append(missing, "As coordenadas de longitude e latitude são obrigatórias")
	}
	if len(missing) > 0 {
		return nil, missing
	}

	m := core.Municipality{
		IBGECode:  *req.IBGECode,
		Name:      strings.TrimSpace(*req.Name),
		Capital:   *req.Capital,
		UFCode:    *req.UFCode,
		Longitude: *req.Longitude,
		Latitude:  *req.Latitude,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, m)
}

// Update applies a partial update. An empty patch is a successful no-op that
// returns the current record.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*core.Municipality, error) {
	patch := core.Patch{
		IBGECode:  req.IBGECode,
		Name:      req.Name,
		Capital:   req.Capital,
		UFCode:    req.UFCode,
		Longitude: req.Longitude,
		Latitude:  req.Latitude,
	}
	if patch.IsZero() {
		return s.repo.FindByID(ctx, id)
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, patch)
}

// Delete removes a municipality, failing with core.ErrNotFound when absent.
func (s *Service) Delete(ctx context.Context, id string) (*DeleteResponse, error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return &DeleteResponse{Message: "Município excluído com sucesso"}, nil
}

// Nearby returns the municipalities within RadiusKm of the query point,
// nearest first, paginated with the same semantics as List.
func (s *Service) Nearby(ctx context.Context, req NearbyRequest) (*NearbyResponse, error) {
	var errs core.FieldErrors
	if req.Latitude < -90 || req.Latitude > 90 {
		errs = append(errs, "A latitude deve estar entre -90 e 90")
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		errs = append(errs, "A longitude deve estar entre -180 e 180")
	}
	if req.RadiusKm <= 0 {
		errs = append(errs, "A distância deve ser maior que zero")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	page, limit := coercePage(req.Page, req.Limit)

	items, total, err := s.repo.FindNearby(ctx, core.NearbyQuery{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		RadiusKm:  req.RadiusKm,
		Limit:     limit,
		Offset:    (page - 1) * limit,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []core.Nearby{}
	}

	return &NearbyResponse{
		Data:       items,
		Pagination: paginate(total, page, limit),
	}, nil
}

func coercePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func paginate(total, page, limit int) Pagination {
	return Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: (total + limit - 1) / limit,
	}
}
