package dto

import (
	"time"

	"github.com/noah-isme/faculty-report-portal/internal/models"
)

// ExportJobRequest enqueues an asynchronous export of a view.
type ExportJobRequest struct {
	Dataset string `json:"dataset" validate:"required,oneof=reports ratings courses classes lectures analytics all"`
	Format  string `json:"format" validate:"omitempty,oneof=xlsx csv pdf"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ExportStatus `json:"status"`
}

// ExportJobStatusResponse exposes export job progress.
type ExportJobStatusResponse struct {
	ID          string              `json:"id"`
	Dataset     string              `json:"dataset"`
	Format      string              `json:"format"`
	Status      models.ExportStatus `json:"status"`
	DownloadURL *string             `json:"downloadUrl,omitempty"`
	Error       *string             `json:"error,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	FinishedAt  *time.Time          `json:"finishedAt,omitempty"`
}
