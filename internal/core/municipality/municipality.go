package municipality

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Municipality represents a Brazilian municipality in the domain.
// The ID is opaque and assigned by the record store on creation.
type Municipality struct {
	ID        string  `json:"id"`
	IBGECode  int     `json:"codigo_ibge"`
	Name      string  `json:"nome"`
	Capital   bool    `json:"capital"`
	UFCode    int     `json:"codigo_uf"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

var (
	// ErrNotFound indicates that no municipality matches the given identifier.
	ErrNotFound = errors.New("município não encontrado")

	// ErrDuplicateIBGECode indicates that another municipality already holds
	// the IBGE code. Record stores must return it on unique-constraint
	// violations; that signal is authoritative, any pre-check is advisory.
	ErrDuplicateIBGECode = errors.New("o código IBGE informado já está cadastrado em outro município")
)

// FieldErrors collects per-field validation messages for one request.
type FieldErrors []string

func (e FieldErrors) Error() string {
	return strings.Join(e, "; ")
}

const (
	MinIBGECode = 1_000_000
	MaxIBGECode = 9_999_999
	MaxNameLen  = 255
	MinUFCode   = 1
	MaxUFCode   = 99
)

// namePattern admits letters (including accented Latin characters), spaces
// and a fixed punctuation set.
var namePattern = regexp.MustCompile(`^[A-Za-zÀ-ú\s()\-.,'"!?]+$`)

// Validate checks every attribute of the municipality against the domain
// rules and returns a FieldErrors with one message per violation, or nil.
func (m Municipality) Validate() error {
	var errs FieldErrors
	errs = append(errs, validateIBGECode(m.IBGECode)...)
	errs = append(errs, validateName(m.Name)...)
	errs = append(errs, validateUFCode(m.UFCode)...)
	errs = append(errs, validateLongitude(m.Longitude)...)
	errs = append(errs, validateLatitude(m.Latitude)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Patch carries a partial update; nil fields retain their prior values.
type Patch struct {
	IBGECode  *int
	Name      *string
	Capital   *bool
	UFCode    *int
	Longitude *float64
	Latitude  *float64
}

// IsZero reports whether the patch carries no fields at all.
func (p Patch) IsZero() bool {
	return p.IBGECode == nil && p.Name == nil && p.Capital == nil &&
		p.UFCode == nil && p.Longitude == nil && p.Latitude == nil
}

// Validate checks only the fields the patch carries.
func (p Patch) Validate() error {
	var errs FieldErrors
	if p.IBGECode != nil {
		errs = append(errs, validateIBGECode(*p.IBGECode)...)
	}
	if p.Name != nil {
		errs = append(errs, validateName(*p.Name)...)
	}
	if p.UFCode != nil {
		errs = append(errs, validateUFCode(*p.UFCode)...)
	}
	if p.Longitude != nil {
		errs = append(errs, validateLongitude(*p.Longitude)...)
	}
	if p.Latitude != nil {
		errs = append(errs, validateLatitude(*p.Latitude)...)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply copies the carried fields onto the municipality.
func (p Patch) Apply(m *Municipality) {
	if p.IBGECode != nil {
		m.IBGECode = *p.IBGECode
	}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Capital != nil {
		m.Capital = *p.Capital
	}
	if p.UFCode != nil {
		m.UFCode = *p.UFCode
	}
	if p.Longitude != nil {
		m.Longitude = *p.Longitude
	}
	if p.Latitude != nil {
		m.Latitude = *p.Latitude
	}
}

func validateIBGECode(code int) FieldErrors {
	if code < MinIBGECode || code > MaxIBGECode {
		return FieldErrors{"O código IBGE deve ser um número inteiro de 7 dígitos"}
	}
	return nil
}

func validateName(name string) FieldErrors {
	if name == "" {
		return FieldErrors{"O nome do município é obrigatório"}
	}
	var errs FieldErrors
	if utf8.RuneCountInString(name) > MaxNameLen {
		errs = append(errs, fmt.Sprintf("O nome do município deve ter no máximo %d caracteres", MaxNameLen))
	}
	if !namePattern.MatchString(name) {
		errs = append(errs, "O nome do município deve conter apenas letras, espaços e caracteres especiais válidos")
	}
	return errs
}

func validateUFCode(code int) FieldErrors {
	if code < MinUFCode || code > MaxUFCode {
		return FieldErrors{"O código UF deve ser um número inteiro entre 1 e 99"}
	}
	return nil
}

func validateLongitude(lon float64) FieldErrors {
	if lon < -180 || lon > 180 {
		return FieldErrors{"A longitude deve estar entre -180 e 180"}
	}
	return nil
}

func validateLatitude(lat float64) FieldErrors {
	if lat < -90 || lat > 90 {
		return FieldErrors{"A latitude deve estar entre -90 e 90"}
	}
	return nil
}
