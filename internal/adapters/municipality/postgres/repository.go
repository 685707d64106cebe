package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"geodados/ms_municipios/internal/core/municipality"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createTable = `CREATE TABLE IF NOT EXISTS municipios (
		id UUID PRIMARY KEY,
		codigo_ibge INTEGER NOT NULL,
		nome VARCHAR(255) NOT NULL,
		capital BOOLEAN NOT NULL DEFAULT FALSE,
		codigo_uf INTEGER NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		latitude DOUBLE PRECISION NOT NULL
	);`

	// The unique index is the authoritative duplicate-code signal.
	createIBGEIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_municipios_codigo_ibge ON municipios (codigo_ibge);`
	createNameIndex = `CREATE INDEX IF NOT EXISTS idx_municipios_nome ON municipios (nome);`

	selectColumns = `id::text, codigo_ibge, nome, capital, codigo_uf, longitude, latitude`

	uniqueViolation = "23505"
)

// Postgres evaluates the same great-circle formula the domain uses; the acos
// argument is clamped with LEAST/GREATEST for the same reason.
const distanceExpr = `6371 * acos(LEAST(1.0, GREATEST(-1.0,
	cos(radians($1)) * cos(radians(latitude)) * cos(radians(longitude) - radians($2)) +
	sin(radians($1)) * sin(radians(latitude)))))`

var sortColumns = map[string]string{
	"id":          "id",
	"codigo_ibge": "codigo_ibge",
	"nome":        "nome",
	"capital":     "capital",
	"codigo_uf":   "codigo_uf",
}

// Repository implements the municipality record store on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewRepository creates the PostgreSQL adapter, bootstrapping the table and
// its indexes if they do not exist yet.
func NewRepository(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) (*Repository, error) {
	for _, stmt := range []string{createTable, createIBGEIndex, createNameIndex} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return nil, fmt.Errorf("bootstrap municipios schema: %w", err)
		}
	}
	return &Repository{pool: pool, log: log}, nil
}

func (r *Repository) List(ctx context.Context, q municipality.ListQuery) ([]municipality.Municipality, int, error) {
	var (
		where string
		args  []any
	)
	if q.Name != "" {
		where = " WHERE nome ILIKE $1"
		args = append(args, "%"+escapeLike(q.Name)+"%")
	}

	column, ok := sortColumns[q.Sort]
	if !ok {
		column = "nome"
	}
	direction := "ASC"
	if q.Order == "desc" {
		direction = "DESC"
	}

	query := fmt.Sprintf(
		"SELECT %s FROM municipios%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d",
		selectColumns, where, column, direction, len(args)+1, len(args)+2,
	)
	rows, err := r.pool.Query(ctx, query, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list municípios: %w", err)
	}
	defer rows.Close()

	var items []municipality.Municipality
	for rows.Next() {
		m, err := scanMunicipality(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan município: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate municípios: %w", err)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM municipios" + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count municípios: %w", err)
	}

	return items, total, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*municipality.Municipality, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		// A malformed identifier can never match a record.
		return nil, municipality.ErrNotFound
	}

	row := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM municipios WHERE id = $1", selectColumns), uid)
	m, err := scanMunicipality(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, municipality.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find município %s: %w", id, err)
	}
	return &m, nil
}

func (r *Repository) Create(ctx context.Context, m municipality.Municipality) (*municipality.Municipality, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO municipios (id, codigo_ibge, nome, capital, codigo_uf, longitude, latitude)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, m.IBGECode, m.Name, m.Capital, m.UFCode, m.Longitude, m.Latitude)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, municipality.ErrDuplicateIBGECode
		}
		return nil, fmt.Errorf("insert município: %w", err)
	}

	return r.FindByID(ctx, id.String())
}

func (r *Repository) Update(ctx context.Context, id string, patch municipality.Patch) (*municipality.Municipality, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, municipality.ErrNotFound
	}
	if patch.IsZero() {
		return r.FindByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.IBGECode != nil {
		set("codigo_ibge", *patch.IBGECode)
	}
	if patch.Name != nil {
		set("nome", *patch.Name)
	}
	if patch.Capital != nil {
		set("capital", *patch.Capital)
	}
	if patch.UFCode != nil {
		set("codigo_uf", *patch.UFCode)
	}
	if patch.Longitude != nil {
		set("longitude", *patch.Longitude)
	}
	if patch.Latitude != nil {
		set("latitude", *patch.Latitude)
	}
	args = append(args, uid)

	query := fmt.Sprintf("UPDATE municipios SET %s WHERE id = $%d",
		strings.Join(sets, ", "), len(args))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, municipality.ErrDuplicateIBGECode
		}
		return nil, fmt.Errorf("update município %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, municipality.ErrNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return municipality.ErrNotFound
	}

	tag, err := r.pool.Exec(ctx, "DELETE FROM municipios WHERE id = $1", uid)
	if err != nil {
		return fmt.Errorf("delete município %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return municipality.ErrNotFound
	}
	return nil
}

func (r *Repository) FindNearby(ctx context.Context, q municipality.NearbyQuery) ([]municipality.Nearby, int, error) {
	inner := fmt.Sprintf("SELECT %s, %s AS distance FROM municipios", selectColumns, distanceExpr)

	query := fmt.Sprintf(
		"SELECT * FROM (%s) AS m WHERE m.distance <= $3 ORDER BY m.distance ASC, m.id ASC LIMIT $4 OFFSET $5",
		inner,
	)
	rows, err := r.pool.Query(ctx, query, q.Latitude, q.Longitude, q.RadiusKm, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("nearby municípios: %w", err)
	}
	defer rows.Close()

	var items []municipality.Nearby
	for rows.Next() {
		var n municipality.Nearby
		if err := rows.Scan(&n.ID, &n.IBGECode, &n.Name, &n.Capital, &n.UFCode,
			&n.Longitude, &n.Latitude, &n.DistanceKm); err != nil {
			return nil, 0, fmt.Errorf("scan nearby município: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate nearby municípios: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS m WHERE m.distance <= $3", inner)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, q.Latitude, q.Longitude, q.RadiusKm).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count nearby municípios: %w", err)
	}

	return items, total, nil
}

func scanMunicipality(row pgx.Row) (municipality.Municipality, error) {
	var m municipality.Municipality
	err := row.Scan(&m.ID, &m.IBGECode, &m.Name, &m.Capital, &m.UFCode, &m.Longitude, &m.Latitude)
	return m, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// escapeLike neutralizes LIKE metacharacters in the user-supplied filter.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
