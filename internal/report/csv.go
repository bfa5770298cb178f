package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/focus-analytics/transcript-insights/internal/model"
)

// utf8BOM lets spreadsheet tools detect the encoding of the export.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{"Timestamp", "SessionID", "UserID", "Query", "Response"}

// WriteCSV serializes the pairs as UTF-8 CSV with a byte-order mark
// and a header row.
func WriteCSV(w io.Writer, pairs []model.ConversationPair) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, pair := range pairs {
		record := []string{
			pair.Timestamp.Format(time.RFC3339),
			pair.SessionID,
			pair.UserID,
			pair.Query,
			pair.Response,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
