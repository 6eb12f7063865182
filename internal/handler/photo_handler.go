package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/civitas-app/civitas-api/internal/service"
	appErrors "github.com/civitas-app/civitas-api/pkg/errors"
	"github.com/civitas-app/civitas-api/pkg/response"
	"github.com/civitas-app/civitas-api/pkg/storage"
)

var allowedPhotoExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
}

// PhotoHandler stores report photos and serves them through signed URLs.
type PhotoHandler struct {
	reports *service.ReportService
	store   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	maxSize int64
}

// NewPhotoHandler constructs handler.
func NewPhotoHandler(reports *service.ReportService, store *storage.LocalStorage, signer *storage.SignedURLSigner, maxSize int64) *PhotoHandler {
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	return &PhotoHandler{reports: reports, store: store, signer: signer, maxSize: maxSize}
}

// Upload godoc
// @Summary Attach a photo to a report
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Report ID"
// @Param photo formData file true "Photo file"
// @Success 201 {object} response.Envelope
// @Router /reports/{id}/photos [post]
func (h *PhotoHandler) Upload(c *gin.Context) {
	reportID := c.Param("id")

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "photo file required"))
		return
	}
	if fileHeader.Size > h.maxSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "photo exceeds the maximum allowed size"))
		return
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowedPhotoExtensions[ext]; !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported photo format"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	relPath := filepath.Join("reports", reportID, uuid.NewString()+ext)
	stored, err := h.store.SaveStream(relPath, file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo"))
		return
	}

	if err := h.reports.AttachPhoto(c.Request.Context(), reportID, stored); err != nil {
		// The report does not exist or the row write failed; the orphaned
		// file is removed so storage stays consistent with the database.
		_ = h.store.Delete(stored)
		response.Error(c, err)
		return
	}

	token, expiresAt, err := h.signer.Generate(reportID, stored)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign photo url"))
		return
	}
	response.Created(c, gin.H{
		"path":       stored,
		"url":        "/photos/" + token,
		"expires_at": expiresAt,
	})
}

// SignedURLs godoc
// @Summary Return signed download URLs for a report's photos
// @Tags Photos
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/photos [get]
func (h *PhotoHandler) SignedURLs(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	urls := make([]gin.H, 0, len(report.Photos))
	for _, path := range report.Photos {
		token, expiresAt, err := h.signer.Generate(report.ID, path)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign photo url"))
			return
		}
		urls = append(urls, gin.H{"url": "/photos/" + token, "expires_at": expiresAt})
	}
	response.JSON(c, http.StatusOK, urls, nil)
}

// Download godoc
// @Summary Download a photo via a signed token
// @Tags Photos
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200
// @Router /photos/{token} [get]
func (h *PhotoHandler) Download(c *gin.Context) {
	_, relPath, _, err := h.signer.Parse(c.Param("token"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired photo token"))
		return
	}
	file, err := h.store.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "photo not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read photo"))
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", file, nil)
}
