package links

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"brevly/internal/errx"
	"brevly/internal/idgen"
)

// dbtx is the subset of pgxpool.Pool the repository needs.
// Abstracting it keeps the repository testable without a live pool.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type repo struct {
	db  dbtx
	ids idgen.Generator
}

// RepositoryConfig holds configuration for the repository.
type RepositoryConfig struct {
	IDGenerator idgen.Generator
}

// NewRepository creates a Postgres-backed Repository.
func NewRepository(db dbtx, config *RepositoryConfig) Repository {
	if config == nil {
		config = &RepositoryConfig{}
	}

	// Default: UUID v7 (time-sortable, good for DB locality).
	if config.IDGenerator == nil {
		config.IDGenerator = idgen.NewV7(idgen.WithRetries(1))
	}

	return &repo{
		db:  db,
		ids: config.IDGenerator,
	}
}

const linkColumns = `id, code, original_url, access_count, created_at`

func scanLink(row pgx.Row) (Link, error) {
	var link Link
	err := row.Scan(&link.ID, &link.Code, &link.OriginalURL, &link.AccessCount, &link.CreatedAt)
	return link, err
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, err)

	case isCodeUniqueViolation(err):
		return errx.E(op, errx.Conflict, err)

	default:
		return errx.E(op, errx.Internal, err)
	}
}

func (r *repo) Insert(ctx context.Context, link Link) (Link, error) {
	const op = "links.repo.Insert"

	// Generate ID if not provided
	if link.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return Link{}, errx.E(op, errx.Internal, err)
		}
		link.ID = id
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO links (id, code, original_url)
		 VALUES ($1, $2, $3)
		 RETURNING `+linkColumns,
		link.ID, link.Code, link.OriginalURL,
	)

	created, err := scanLink(row)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return created, nil
}

func (r *repo) GetByCode(ctx context.Context, code string) (Link, error) {
	const op = "links.repo.GetByCode"

	row := r.db.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM links WHERE code = $1`,
		code,
	)

	link, err := scanLink(row)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return link, nil
}

func (r *repo) List(ctx context.Context, limit int32) ([]Link, error) {
	const op = "links.repo.List"

	query := `SELECT ` + linkColumns + ` FROM links ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	defer rows.Close()

	result := []Link{}
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, mapRepoError(op, err)
		}
		result = append(result, link)
	}
	if err := rows.Err(); err != nil {
		return nil, mapRepoError(op, err)
	}

	return result, nil
}

func (r *repo) IncrementAccessCount(ctx context.Context, code string) error {
	const op = "links.repo.IncrementAccessCount"

	// Single-row atomic update. Zero rows affected means the code does not
	// exist, which is deliberately not an error: increments are best-effort
	// telemetry, not a correctness-critical path.
	_, err := r.db.Exec(ctx,
		`UPDATE links SET access_count = access_count + 1 WHERE code = $1`,
		code,
	)
	if err != nil {
		return mapRepoError(op, err)
	}
	return nil
}

func (r *repo) DeleteByID(ctx context.Context, id uuid.UUID) (Link, error) {
	const op = "links.repo.DeleteByID"

	row := r.db.QueryRow(ctx,
		`DELETE FROM links WHERE id = $1 RETURNING `+linkColumns,
		id,
	)

	deleted, err := scanLink(row)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}
	return deleted, nil
}
