package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/jengzang/greenguardian-backend-go/internal/identity"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"github.com/jengzang/greenguardian-backend-go/internal/service"
	"github.com/jengzang/greenguardian-backend-go/pkg/response"
)

// ReportHandler handles HTTP requests for pollution reports
type ReportHandler struct {
	service   *service.ReportService
	maxUpload int64
}

// NewReportHandler creates a new report handler. maxUpload caps request
// bodies carrying files; 0 means no cap.
func NewReportHandler(service *service.ReportService, maxUpload int64) *ReportHandler {
	return &ReportHandler{service: service, maxUpload: maxUpload}
}

func (h *ReportHandler) limitBody(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
}

// spoolUpload saves an uploaded file to a temp file keeping its extension.
// The caller removes the returned path.
func spoolUpload(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return "", err
	}
	tmp.Close()

	if err := c.SaveUploadedFile(fh, tmp.Name()); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// GetReports handles GET /api/v1/reports
func (h *ReportHandler) GetReports(c *gin.Context) {
	reports, err := h.service.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"data":  reports,
		"total": len(reports),
	})
}

// GetMyReports handles GET /api/v1/reports/mine
func (h *ReportHandler) GetMyReports(c *gin.Context) {
	ctx := c.Request.Context()
	reports, err := h.service.ListByOwner(ctx, identity.FromContext(ctx))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{
		"data":  reports,
		"total": len(reports),
	})
}

// GetReportByID handles GET /api/v1/reports/:id
func (h *ReportHandler) GetReportByID(c *gin.Context) {
	report, ok, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if !ok {
		response.NotFound(c, "Report not found")
		return
	}
	response.Success(c, report)
}

// CreateReport handles POST /api/v1/reports (multipart: photo + fields)
func (h *ReportHandler) CreateReport(c *gin.Context) {
	h.limitBody(c)

	var draft models.ReportDraft
	if err := c.ShouldBindWith(&draft, binding.FormMultipart); err != nil {
		response.BadRequest(c, "Invalid form: "+err.Error())
		return
	}

	var photo string
	if fh, err := c.FormFile("photo"); err == nil {
		photo, err = spoolUpload(c, fh)
		if err != nil {
			response.InternalError(c, "Failed to receive photo")
			return
		}
		defer os.Remove(photo)
	} else if !errors.Is(err, http.ErrMissingFile) {
		response.BadRequest(c, "Invalid photo upload")
		return
	}

	ctx := c.Request.Context()
	report, err := h.service.Create(ctx, identity.FromContext(ctx), draft, photo)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, report)
}

// UpdateReport handles PUT /api/v1/reports/:id with a JSON body, or a
// multipart body when the photo is replaced
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	h.limitBody(c)

	var patch models.ReportPatch
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindWith(&patch, binding.FormMultipart); err != nil {
			response.BadRequest(c, "Invalid form: "+err.Error())
			return
		}
		if fh, err := c.FormFile("photo"); err == nil {
			photo, err := spoolUpload(c, fh)
			if err != nil {
				response.InternalError(c, "Failed to receive photo")
				return
			}
			defer os.Remove(photo)
			patch.PhotoURI = photo
		}
	} else if err := c.ShouldBindJSON(&patch); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	report, err := h.service.Update(ctx, identity.FromContext(ctx), c.Param("id"), patch)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, report)
}

// DeleteReport handles DELETE /api/v1/reports/:id
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.service.Delete(ctx, identity.FromContext(ctx), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// ExportReports handles POST /api/v1/reports/export
func (h *ReportHandler) ExportReports(c *gin.Context) {
	result, err := h.service.ExportToFile(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}

// ImportReports handles POST /api/v1/reports/import (multipart: file)
func (h *ReportHandler) ImportReports(c *gin.Context) {
	h.limitBody(c)

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "Failed to read upload")
		return
	}
	defer f.Close()

	ctx := c.Request.Context()
	result, err := h.service.Import(ctx, identity.FromContext(ctx), f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, result)
}
