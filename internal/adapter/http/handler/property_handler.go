package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/domain"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/estate/usecase"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PropertyHandler serves the listing lifecycle and the property read paths.
type PropertyHandler struct {
	listing        *usecase.ListingUsecase
	query          *usecase.QueryUsecase
	maxUploadBytes int64
	logger         *logger.Logger
}

func NewPropertyHandler(listing *usecase.ListingUsecase, query *usecase.QueryUsecase, maxUploadBytes int64, log *logger.Logger) *PropertyHandler {
	return &PropertyHandler{
		listing:        listing,
		query:          query,
		maxUploadBytes: maxUploadBytes,
		logger:         log.Named("property_handler"),
	}
}

func (h *PropertyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitPropertyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	id, err := h.listing.Submit(r.Context(), middleware.ActorFromContext(r.Context()), domain.SubmitPropertyInput{
		Title:        req.Title,
		Type:         domain.PropertyType(req.Type),
		Purpose:      domain.Purpose(req.Purpose),
		Location:     req.Location,
		Description:  req.Description,
		MarketAmount: req.MarketAmount,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, idResponse{ID: id})
}

// ListLive accepts an optional ?type= filter.
func (h *PropertyHandler) ListLive(w http.ResponseWriter, r *http.Request) {
	props, err := h.query.ListLive(r.Context(), domain.PropertyType(r.URL.Query().Get("type")))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toPropertyList(props))
}

func (h *PropertyHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	props, err := h.query.ListBySeller(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toPropertyList(props))
}

func (h *PropertyHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	props, err := h.query.ListPending(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toPropertyList(props))
}

func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	details, err := h.query.GetProperty(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toDetailsResponse(details))
}

// maxImagesPerUpload caps the "images" field of a single upload request.
const maxImagesPerUpload = 10

// UploadImage reads the multipart field "image" (one file, answered with one
// image) or "images" (up to maxImagesPerUpload files, answered with a list).
// Files are attached in order and the first failure stops the batch.
func (h *PropertyHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, h.logger, http.StatusRequestEntityTooLarge, errorResponse{Error: fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes)})
			return
		}
		writeError(w, r, h.logger, fmt.Errorf("%w: invalid multipart form: %v", domain.ErrValidation, err))
		return
	}

	batch := r.MultipartForm.File["images"]
	single := r.MultipartForm.File["image"]
	switch {
	case len(batch) == 0 && len(single) == 0:
		writeError(w, r, h.logger, fmt.Errorf("%w: missing image file", domain.ErrValidation))
		return
	case len(batch) > 0 && len(single) > 0:
		writeError(w, r, h.logger, fmt.Errorf("%w: send either image or images, not both", domain.ErrValidation))
		return
	case len(batch) > maxImagesPerUpload:
		writeError(w, r, h.logger, fmt.Errorf("%w: at most %d images per upload", domain.ErrValidation, maxImagesPerUpload))
		return
	case len(single) > 1:
		writeError(w, r, h.logger, fmt.Errorf("%w: use the images field for more than one file", domain.ErrValidation))
		return
	}

	files := batch
	if len(files) == 0 {
		files = single
	}
	actor := middleware.ActorFromContext(r.Context())
	attached := make([]imageResponse, 0, len(files))
	for _, header := range files {
		data, err := readUpload(header)
		if err != nil {
			h.logger.Error("PropertyHandler.UploadImage: failed to read file", zap.String("property_id", id), zap.String("file", header.Filename), zap.Error(err))
			writeError(w, r, h.logger, err)
			return
		}
		img, err := h.listing.AttachImage(r.Context(), actor, id, header.Filename, data)
		if err != nil {
			if len(attached) > 0 {
				h.logger.Warn("PropertyHandler.UploadImage: batch stopped", zap.String("property_id", id), zap.Int("attached", len(attached)), zap.Error(err))
			}
			writeError(w, r, h.logger, err)
			return
		}
		attached = append(attached, toImageResponse(img))
	}

	if len(batch) == 0 {
		writeJSON(w, h.logger, http.StatusCreated, attached[0])
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, attached)
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (h *PropertyHandler) SetPricing(w http.ResponseWriter, r *http.Request) {
	var req pricingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	err := h.listing.SetPricing(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id"), req.FinalAmount, req.GovtAmount)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PropertyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if err := h.listing.Verify(r.Context(), middleware.ActorFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
