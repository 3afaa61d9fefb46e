package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/faculty-report-portal/internal/dto"
	"github.com/noah-isme/faculty-report-portal/internal/models"
	"github.com/noah-isme/faculty-report-portal/internal/service"
	"github.com/noah-isme/faculty-report-portal/pkg/export"

	"github.com/noah-isme/faculty-report-portal/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, req service.ExportRequest) (*service.ExportFile, error)
	CreateJob(ctx context.Context, session *models.Session, kind service.ViewKind, req dto.ExportJobRequest) (*dto.ExportJobResponse, error)
	GetJob(ctx context.Context, id string, session *models.Session) (*dto.ExportJobStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler serves synchronous exports and the export job lifecycle.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export godoc
// @Summary Download a dataset of a view
// @Tags Exports
// @Security BearerAuth
// @Produce application/octet-stream
// @Param kind path string true "View kind"
// @Param dataset path string true "reports, ratings, courses, classes, lectures, analytics or all"
// @Param format query string false "xlsx (default), csv or pdf"
// @Success 200 {file} file
// @Failure 422 {object} response.Envelope
// @Router /views/{kind}/export/{dataset} [get]
func (h *ExportHandler) Export(c *gin.Context) {
	session, kind, err := viewFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := export.Format(strings.ToLower(c.DefaultQuery("format", string(export.FormatXLSX))))
	file, err := h.exports.Export(c.Request.Context(), service.ExportRequest{
		Session: session,
		Kind:    kind,
		Dataset: c.Param("dataset"),
		Format:  format,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Bytes)
}

// CreateJob godoc
// @Summary Queue an export job
// @Tags Exports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param kind path string true "View kind"
// @Param payload body dto.ExportJobRequest true "Export job"
// @Success 202 {object} response.Envelope
// @Router /views/{kind}/export-jobs [post]
func (h *ExportHandler) CreateJob(c *gin.Context) {
	session, kind, err := viewFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ExportJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "export job"))
		return
	}
	job, err := h.exports.CreateJob(c.Request.Context(), session, kind, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job)
}

// GetJob godoc
// @Summary Export job status
// @Tags Exports
// @Security BearerAuth
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/jobs/{id} [get]
func (h *ExportHandler) GetJob(c *gin.Context) {
	session, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	job, err := h.exports.GetJob(c.Request.Context(), c.Param("id"), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job)
}

// Download godoc
// @Summary Download a finished export through its signed link
// @Tags Exports
// @Produce application/octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.exports.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, download.Filename, download.ContentType, download.Bytes)
}
