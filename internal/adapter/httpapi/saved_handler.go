package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type SavedHandler struct {
	saved  *usecase.SavedUsecase
	logger *logger.Logger
}

func NewSavedHandler(saved *usecase.SavedUsecase, log *logger.Logger) *SavedHandler {
	return &SavedHandler{saved: saved, logger: log.Named("SavedHandler")}
}

type saveRequest struct {
	Note string `json:"note"`
}

func (h *SavedHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	var req saveRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	saved, err := h.saved.Save(r.Context(), actorFrom(r.Context()), listingID, req.Note)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, usecase.SavedItem{
		ID:        saved.ID,
		ListingID: saved.ListingID,
		Note:      saved.Note,
		SavedAt:   saved.CreatedAt,
		Available: true,
	})
}

func (h *SavedHandler) HandleUnsave(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	if err := h.saved.Unsave(r.Context(), actorFrom(r.Context()), listingID); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SavedHandler) HandleListSaved(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	items, pagination, err := h.saved.ListSaved(r.Context(), actorFrom(r.Context()), page, perPage)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writePage(w, items, pagination)
}
