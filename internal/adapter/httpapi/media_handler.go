package httpapi

import (
	"io"
	"net/http"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxUploadBytes caps a single media upload.
const maxUploadBytes = 10 << 20

type MediaHandler struct {
	media  *usecase.MediaUsecase
	logger *logger.Logger
}

func NewMediaHandler(media *usecase.MediaUsecase, log *logger.Logger) *MediaHandler {
	return &MediaHandler{media: media, logger: log.Named("MediaHandler")}
}

// HandleUpload reads a multipart "file" part and attaches it to the
// listing.
func (h *MediaHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.logger.Debug("invalid multipart form", zap.String("listing_id", listingID), zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	media, err := h.media.Attach(r.Context(), actorFrom(r.Context()), listingID,
		header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, usecase.MediaView{
		ID:       media.ID,
		URL:      media.URL,
		FileName: media.FileName,
		Position: media.Position,
	})
}

func (h *MediaHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")
	mediaID := chi.URLParam(r, "mediaID")

	if err := h.media.Remove(r.Context(), actorFrom(r.Context()), listingID, mediaID); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
