package export

import (
	"fmt"
	"strings"
	"time"
)

// Format enumerates export file formats.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// Valid reports whether the format is supported.
func (f Format) Valid() bool {
	switch f {
	case FormatXLSX, FormatCSV, FormatPDF:
		return true
	}
	return false
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Filename builds {dataset}_{actor_username}_{YYYY-MM-DD}.{ext}. Downstream
// tooling matches on this pattern.
func Filename(dataset, actor string, exportedAt time.Time, format Format) string {
	return fmt.Sprintf("%s_%s_%s.%s",
		sanitizeFilename(dataset),
		sanitizeFilename(actor),
		exportedAt.Format("2006-01-02"),
		format,
	)
}

func sanitizeFilename(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "", "'", "")
	result := replacer.Replace(raw)
	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
