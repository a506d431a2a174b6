package links

import (
	"time"

	"github.com/google/uuid"
)

// Link binds a short code to a destination URL plus access metadata.
type Link struct {
	ID          uuid.UUID
	Code        string
	OriginalURL string
	AccessCount int64
	CreatedAt   time.Time
}
