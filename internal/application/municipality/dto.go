package municipality

import core "geodados/ms_municipios/internal/core/municipality"

// CreateRequest carries the body of a creation request. Pointer fields let
// the service distinguish absent fields from zero values.
type CreateRequest struct {
	IBGECode  *int     `json:"codigo_ibge"`
	Name      *string  `json:"nome"`
	Capital   *bool    `json:"capital"`
	UFCode    *int     `json:"codigo_uf"`
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
}

// UpdateRequest carries a partial update; absent fields retain prior values.
type UpdateRequest struct {
	IBGECode  *int     `json:"codigo_ibge"`
	Name      *string  `json:"nome"`
	Capital   *bool    `json:"capital"`
	UFCode    *int     `json:"codigo_uf"`
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
}

// ListRequest carries the listing query parameters before coercion.
type ListRequest struct {
	Page  int
	Limit int
	Name  string
	Sort  string
	Order string
}

// NearbyRequest carries the radius-search parameters.
type NearbyRequest struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
	Page      int
	Limit     int
}

// Pagination is the metadata block of every list envelope.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// ListResponse is the envelope for the listing endpoint.
type ListResponse struct {
	Data       []core.Municipality `json:"data"`
	Pagination Pagination          `json:"pagination"`
}

// NearbyResponse is the envelope for the proximity-search endpoint; each
// record is annotated with its distance from the query point.
type NearbyResponse struct {
	Data       []core.Nearby `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

// DeleteResponse acknowledges a removal.
type DeleteResponse struct {
	Message string `json:"message"`
}
