package links

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

// csvHeader is the fixed column order of the export file. The id is
// deliberately omitted; it is a storage concern, not an export field.
var csvHeader = []string{"originalUrl", "code", "accessCount", "createdAt"}

// marshalCSV serializes links to CSV in the given order, with a header row
// and RFC 3339 timestamps. encoding/csv handles quoting of embedded commas,
// quotes, and newlines.
func marshalCSV(records []Link) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, link := range records {
		row := []string{
			link.OriginalURL,
			link.Code,
			strconv.FormatInt(link.AccessCount, 10),
			link.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
