package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"shipdesk/internal/domain"
	"shipdesk/internal/service"
)

// DraftHandler handles shipment draft endpoints.
type DraftHandler struct {
	draftService service.DraftService
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(draftService service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// Get handles GET /api/v1/draft
// @Summary Get the shipment draft
// @Description Returns the draft, its entry mode, the auto-filled field map and whether an extraction is running
// @Tags draft
// @Produce json
// @Success 200 {object} Response{data=service.DraftView} "Current draft"
// @Router /draft [get]
func (h *DraftHandler) Get(c *gin.Context) {
	RespondOK(c, h.draftService.Get(c.Request.Context()))
}

// Replace handles PUT /api/v1/draft
// @Summary Replace the shipment draft
// @Description Replaces the whole draft. Auto-filled marks survive only on unchanged values.
// @Tags draft
// @Accept json
// @Produce json
// @Param body body domain.ShipmentDraft true "Complete draft"
// @Success 200 {object} Response{data=service.DraftView} "Draft replaced"
// @Failure 400 {object} ErrorResponseBody "Invalid body"
// @Router /draft [put]
func (h *DraftHandler) Replace(c *gin.Context) {
	var d domain.ShipmentDraft
	if err := c.ShouldBindJSON(&d); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	view, err := h.draftService.Replace(c.Request.Context(), d)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// Patch handles PATCH /api/v1/draft
// @Summary Patch the shipment draft
// @Description Shallow merge: every top-level key in the body replaces that field of the draft
// @Tags draft
// @Accept json
// @Produce json
// @Param body body object true "Top-level draft fields"
// @Success 200 {object} Response{data=service.DraftView} "Draft patched"
// @Failure 400 {object} ErrorResponseBody "Invalid patch"
// @Router /draft [patch]
func (h *DraftHandler) Patch(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read request body")
		return
	}

	view, err := h.draftService.Patch(c.Request.Context(), json.RawMessage(body))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// Clear handles DELETE /api/v1/draft
// @Summary Clear the shipment draft
// @Description Resets the draft to the empty shape and cancels any running extraction
// @Tags draft
// @Produce json
// @Success 200 {object} Response{data=service.DraftView} "Draft cleared"
// @Router /draft [delete]
func (h *DraftHandler) Clear(c *gin.Context) {
	view, err := h.draftService.Clear(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// SetMode handles PUT /api/v1/draft/mode
// @Summary Set the entry mode
// @Tags draft
// @Accept json
// @Produce json
// @Param body body SetModeRequest true "Entry mode"
// @Success 200 {object} Response{data=service.DraftView} "Mode updated"
// @Failure 400 {object} ErrorResponseBody "Invalid mode"
// @Router /draft/mode [put]
func (h *DraftHandler) SetMode(c *gin.Context) {
	var req SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	view, err := h.draftService.SetMode(c.Request.Context(), req.Mode)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}

// AutoFilled handles GET /api/v1/draft/autofilled
// @Summary Check whether a field was auto-filled
// @Tags draft
// @Produce json
// @Param path query string true "Field path, e.g. shipper.country or packages[0].products[1].hsCode"
// @Success 200 {object} Response{data=AutoFilledResponse} "Provenance lookup"
// @Failure 400 {object} ErrorResponseBody "Missing path"
// @Router /draft/autofilled [get]
func (h *DraftHandler) AutoFilled(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_PATH", "path query parameter is required")
		return
	}
	RespondOK(c, AutoFilledResponse{
		Path:       path,
		AutoFilled: h.draftService.AutoFilled(c.Request.Context(), path),
	})
}

// Extract handles POST /api/v1/draft/extract
// @Summary Fill the draft from trade documents
// @Description Uploads commercial invoices or packing lists (PDF, JPG, PNG), extracts shipment data and merges it into the draft
// @Tags draft
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Trade documents (repeat the field for several files)"
// @Success 200 {object} Response{data=service.ExtractResult} "Merged, or no usable data"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 409 {object} ErrorResponseBody "Extraction already running or superseded"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 429 {object} ErrorResponseBody "Extraction service rate limited"
// @Failure 502 {object} ErrorResponseBody "Extraction service failed"
// @Router /draft/extract [post]
func (h *DraftHandler) Extract(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "multipart form with files is required")
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}

	files := make([]service.UploadedFile, 0, len(headers))
	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_FILE", "could not open uploaded file")
			return
		}
		defer func() { _ = f.Close() }()
		files = append(files, service.UploadedFile{File: f, Header: hdr})
	}

	result, err := h.draftService.Extract(c.Request.Context(), files)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Quote handles GET /api/v1/draft/quote
// @Summary Price the draft
// @Tags draft
// @Produce json
// @Success 200 {object} Response{data=domain.PriceBreakdown} "Price breakdown"
// @Router /draft/quote [get]
func (h *DraftHandler) Quote(c *gin.Context) {
	RespondOK(c, h.draftService.Quote(c.Request.Context()))
}
