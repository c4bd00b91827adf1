package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pkazlouski/devfolio/backend/internal/domain/enums"
	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
	mediasvc "github.com/pkazlouski/devfolio/backend/internal/services/media"
	"github.com/pkazlouski/devfolio/backend/internal/transport/http/dto"
	httperrors "github.com/pkazlouski/devfolio/backend/internal/transport/http/errors"
)

// The reader cap sits above the per-file ceiling so an oversized file still
// reaches service validation and earns a descriptive error instead of a
// blunt connection reset. A video plus its thumbnail is two files.
const uploadFormSlack = 10 << 20

type MediaHandler struct {
	service  *mediasvc.Service
	resolver *mediasvc.Resolver
}

func NewMediaHandler(service *mediasvc.Service, resolver *mediasvc.Resolver) *MediaHandler {
	return &MediaHandler{service: service, resolver: resolver}
}

func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	limit := 2*mediasvc.MaxFileSize() + uploadFormSlack
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	input := uploadInputFrom(file, header)

	if raw := strings.TrimSpace(r.FormValue("threadId")); raw != "" {
		threadID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || threadID <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "threadId must be a positive integer")
			return
		}
		input.ThreadID = &threadID
	}
	if raw := strings.TrimSpace(r.FormValue("isMain")); raw != "" {
		isMain, err := strconv.ParseBool(raw)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "isMain must be a boolean")
			return
		}
		input.IsMain = isMain
	}
	input.Alt = strings.TrimSpace(r.FormValue("alt"))

	if enums.KindFromMime(input.ContentType) == enums.MediaKindVideo {
		h.uploadVideo(w, r, input)
		return
	}

	rec, err := h.service.Upload(r.Context(), input)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.MediaUploadResponse{Media: mediaToDTO(rec)})
}

func (h *MediaHandler) uploadVideo(w http.ResponseWriter, r *http.Request, video mediasvc.UploadInput) {
	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		// Missing thumbnail flows through the service so the error
		// matches the plain upload path.
		rec, err := h.service.Upload(r.Context(), video)
		if err != nil {
			handleMediaError(w, err)
			return
		}
		httperrors.Write(w, http.StatusCreated, dto.MediaUploadResponse{Media: mediaToDTO(rec)})
		return
	}
	defer thumbFile.Close()

	thumb := uploadInputFrom(thumbFile, thumbHeader)

	rec, thumbRec, err := h.service.UploadVideo(r.Context(), video, &thumb)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	thumbDTO := mediaToDTO(thumbRec)
	httperrors.Write(w, http.StatusCreated, dto.MediaUploadResponse{
		Media:     mediaToDTO(rec),
		Thumbnail: &thumbDTO,
	})
}

// ListByThread returns a thread's media without thumbnail rows; those only
// appear through their owning video's thumbnailId.
func (h *MediaHandler) ListByThread(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	id, ok := threadID(w, r)
	if !ok {
		return
	}

	records, err := h.service.ListByThread(r.Context(), id)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	items := make([]dto.MediaResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, mediaToDTO(rec))
	}

	httperrors.Write(w, http.StatusOK, dto.MediaListResponse{Items: items})
}

// Get redirects to the asset's current URL rather than proxying bytes.
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil || h.resolver == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	rec, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleMediaError(w, err)
		return
	}

	url, err := h.resolver.ResolveMedia(r.Context(), rec)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	var req dto.MediaUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	rec, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req.Alt, req.IsMain)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, mediaToDTO(rec))
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleMediaError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MediaHandler) ResolveURL(w http.ResponseWriter, r *http.Request) {
	if h.resolver == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	url, err := h.resolver.Resolve(r.Context(), r.URL.Query().Get("fileName"))
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MediaURLResponse{URL: url})
}

func uploadInputFrom(file multipart.File, header *multipart.FileHeader) mediasvc.UploadInput {
	input := mediasvc.UploadInput{Body: file}
	if header != nil {
		input.FileName = header.Filename
		input.Size = header.Size
		input.ContentType = header.Header.Get("Content-Type")
	}
	if input.ContentType == "" {
		input.ContentType = "application/octet-stream"
	}
	return input
}

func mediaToDTO(rec model.Media) dto.MediaResponse {
	return dto.MediaResponse{
		ID:          rec.ID,
		Kind:        string(rec.Kind),
		FileName:    rec.FileName,
		MimeType:    rec.MimeType,
		Size:        rec.Size,
		Alt:         rec.Alt,
		IsMain:      rec.IsMain,
		ThumbnailID: rec.ThumbnailID,
		ThreadID:    rec.ThreadID,
		CreatedAt:   rec.CreatedAt,
	}
}

func handleMediaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mediasvc.ErrThumbnailRequired):
		writeBadRequest(w, "THUMBNAIL_REQUIRED", mediasvc.ErrThumbnailRequired.Error())
	case errors.Is(err, mediasvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, mediasvc.ErrNotFound):
		writeNotFound(w, "MEDIA_NOT_FOUND", "media not found")
	case errors.Is(err, mediasvc.ErrUnavailable):
		httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
			Code:    "STORAGE_UNAVAILABLE",
			Message: "object storage is unavailable",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "media operation failed")
	}
}
