package links

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// codeUniqueConstraint is the name of the unique constraint on links.code.
const codeUniqueConstraint = "links_code_unique"

func isCodeUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" &&
		pgErr.ConstraintName == codeUniqueConstraint
}
