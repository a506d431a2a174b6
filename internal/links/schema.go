package links

import (
	"context"
	"fmt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS links (
	id           UUID PRIMARY KEY,
	code         VARCHAR(50) NOT NULL,
	original_url TEXT NOT NULL,
	access_count BIGINT NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),

	CONSTRAINT links_code_unique UNIQUE (code),
	CONSTRAINT links_code_length CHECK (char_length(code) BETWEEN 3 AND 50)
);

CREATE INDEX IF NOT EXISTS links_created_at_idx ON links (created_at DESC);
`

// EnsureSchema creates the links table and its indexes if they do not exist.
// Run once at startup before the repository takes traffic.
func EnsureSchema(ctx context.Context, db dbtx) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure links schema: %w", err)
	}
	return nil
}
