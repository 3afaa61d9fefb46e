package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ExportStatus captures background export job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// Terminal reports whether no further transitions happen from s.
func (s ExportStatus) Terminal() bool {
	return s == ExportStatusFinished || s == ExportStatusFailed
}

// Value implements driver.Valuer.
func (s ExportStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Scan implements sql.Scanner.
func (s *ExportStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*s = ExportStatus(v)
	case []byte:
		*s = ExportStatus(v)
	case nil:
		*s = ""
	default:
		return fmt.Errorf("unsupported type %T for ExportStatus", value)
	}
	return nil
}

// ExportJob is persisted metadata for an asynchronous export.
type ExportJob struct {
	ID           string       `db:"id" json:"id"`
	Dataset      string       `db:"dataset" json:"dataset"`
	Format       string       `db:"format" json:"format"`
	Status       ExportStatus `db:"status" json:"status"`
	ResultURL    *string      `db:"result_url" json:"result_url,omitempty"`
	CreatedBy    string       `db:"created_by" json:"created_by"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time   `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string      `db:"error_message" json:"error_message,omitempty"`
}
