package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset(name string, rows int) Dataset {
	ds := Dataset{Name: name, Headers: []string{"Course", "Week", "Topic"}}
	for i := 0; i < rows; i++ {
		ds.Rows = append(ds.Rows, map[string]string{
			"Course": "Data Structures (DS101)",
			"Week":   "3",
			"Topic":  "Linked lists",
		})
	}
	return ds
}

func TestXLSXExporterWritesOneSheetPerNonEmptyDataset(t *testing.T) {
	payload, err := NewXLSXExporter().Render([]Dataset{
		sampleDataset("Reports", 2),
		sampleDataset("Ratings", 0),
		sampleDataset("Courses", 1),
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Reports", "Courses"}, f.GetSheetList())

	rows, err := f.GetRows("Reports")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Course", "Week", "Topic"}, rows[0])
	assert.Equal(t, "Data Structures (DS101)", rows[1][0])
}

func TestXLSXExporterRejectsAllEmpty(t *testing.T) {
	_, err := NewXLSXExporter().Render([]Dataset{sampleDataset("Reports", 0)})
	require.ErrorIs(t, err, ErrEmptyWorkbook)
}

func TestXLSXExporterTruncatesLongSheetNames(t *testing.T) {
	payload, err := NewXLSXExporter().Render([]Dataset{sampleDataset("Course Performance For The Whole Faculty", 1)})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, []rune(f.GetSheetList()[0]), 31)
}

func TestCSVExporterOrdersColumnsByHeader(t *testing.T) {
	payload, err := NewCSVExporter().Render(sampleDataset("Reports", 1))
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Course", "Week", "Topic"},
		{"Data Structures (DS101)", "3", "Linked lists"},
	}, records)
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{Name: "Reports"})
	require.Error(t, err)
}

func TestPDFExporterRendersDocument(t *testing.T) {
	payload, err := NewPDFExporter().Render(sampleDataset("Reports", 80), "Lecture reports")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestFilenamePattern(t *testing.T) {
	at := time.Date(2024, 3, 9, 17, 45, 0, 0, time.UTC)

	assert.Equal(t, "reports_thabo.m_2024-03-09.xlsx", Filename("reports", "thabo.m", at, FormatXLSX))
	assert.Equal(t, "ratings_na_2024-03-09.csv", Filename("ratings", "  ", at, FormatCSV))
	assert.Equal(t, "all_prl-admin_2024-03-09.pdf", Filename("all", "prl/admin", at, FormatPDF))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, FormatXLSX.Valid())
	assert.False(t, Format("docx").Valid())
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
}
