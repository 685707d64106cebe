package municipality

import (
	"errors"
	"strings"
	"testing"
)

func validMunicipality() Municipality {
	return Municipality{
		IBGECode:  3550308,
		Name:      "São Paulo",
		Capital:   true,
		UFCode:    35,
		Longitude: -46.6333,
		Latitude:  -23.5505,
	}
}

func TestMunicipality_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Municipality)
		wantErr string
	}{
		{
			name:   "valid record",
			mutate: func(*Municipality) {},
		},
		{
			name:    "ibge code too short",
			mutate:  func(m *Municipality) { m.IBGECode = 999999 },
			wantErr: "código IBGE",
		},
		{
			name:    "ibge code too long",
			mutate:  func(m *Municipality) { m.IBGECode = 10_000_000 },
			wantErr: "código IBGE",
		},
		{
			name:    "empty name",
			mutate:  func(m *Municipality) { m.Name = "" },
			wantErr: "nome do município é obrigatório",
		},
		{
			name:    "name with invalid characters",
			mutate:  func(m *Municipality) { m.Name = "São Paulo <script>" },
			wantErr: "apenas letras",
		},
		{
			name:    "name too long",
			mutate:  func(m *Municipality) { m.Name = strings.Repeat("a", 256) },
			wantErr: "no máximo 255",
		},
		{
			name:   "name with accents and punctuation",
			mutate: func(m *Municipality) { m.Name = "Mogi-Guaçu (D'Oeste), Sul!" },
		},
		{
			name:    "uf code zero",
			mutate:  func(m *Municipality) { m.UFCode = 0 },
			wantErr: "código UF",
		},
		{
			name:    "uf code above range",
			mutate:  func(m *Municipality) { m.UFCode = 100 },
			wantErr: "código UF",
		},
		{
			name:    "longitude out of range",
			mutate:  func(m *Municipality) { m.Longitude = -180.5 },
			wantErr: "longitude deve estar entre -180 e 180",
		},
		{
			name:    "latitude out of range",
			mutate:  func(m *Municipality) { m.Latitude = 90.1 },
			wantErr: "latitude deve estar entre -90 e 90",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMunicipality()
			tt.mutate(&m)

			err := m.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var fieldErrs FieldErrors
			if !errors.As(err, &fieldErrs) {
				t.Fatalf("expected FieldErrors, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected message containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestMunicipality_Validate_CollectsAllViolations(t *testing.T) {
	m := Municipality{IBGECode: 1, Name: "<>", UFCode: 0, Longitude: 200, Latitude: 100}

	err := m.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var fieldErrs FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected FieldErrors, got %T", err)
	}
	if len(fieldErrs) != 5 {
		t.Errorf("expected 5 field errors, got %d: %v", len(fieldErrs), fieldErrs)
	}
}

func TestPatch_Validate(t *testing.T) {
	badCode := 123
	if err := (Patch{IBGECode: &badCode}).Validate(); err == nil {
		t.Error("expected error for out-of-range ibge code")
	}

	goodName := "Campinas"
	if err := (Patch{Name: &goodName}).Validate(); err != nil {
		t.Errorf("expected valid patch, got %v", err)
	}

	if err := (Patch{}).Validate(); err != nil {
		t.Errorf("empty patch must validate, got %v", err)
	}
}

func TestPatch_Apply(t *testing.T) {
	m := validMunicipality()
	m.ID = "abc"

	newName := "Osasco"
	newCapital := false
	Patch{Name: &newName, Capital: &newCapital}.Apply(&m)

	if m.Name != "Osasco" || m.Capital {
		t.Errorf("patch not applied: %+v", m)
	}
	if m.ID != "abc" || m.IBGECode != 3550308 || m.UFCode != 35 {
		t.Errorf("untouched fields changed: %+v", m)
	}
	if m.Longitude != -46.6333 || m.Latitude != -23.5505 {
		t.Errorf("coordinates changed: %+v", m)
	}
}

func TestPatch_IsZero(t *testing.T) {
	if !(Patch{}).IsZero() {
		t.Error("empty patch should be zero")
	}
	v := true
	if (Patch{Capital: &v}).IsZero() {
		t.Error("patch with a field should not be zero")
	}
}
