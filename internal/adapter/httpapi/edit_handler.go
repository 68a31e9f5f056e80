package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type EditHandler struct {
	edits  *usecase.EditUsecase
	logger *logger.Logger
}

func NewEditHandler(edits *usecase.EditUsecase, log *logger.Logger) *EditHandler {
	return &EditHandler{edits: edits, logger: log.Named("EditHandler")}
}

func (h *EditHandler) HandleGetPending(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	review, err := h.edits.GetPendingEdit(r.Context(), actorFrom(r.Context()), listingID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, review)
}

func (h *EditHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	var req moderationRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	listing, err := h.edits.ApplyPendingEdit(r.Context(), actorFrom(r.Context()), listingID, req.Note)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{
		"listing_id":  listing.ID,
		"edit_status": "approved",
	})
}

func (h *EditHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	var req moderationRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.edits.RejectPendingEdit(r.Context(), actorFrom(r.Context()), listingID, req.Note); err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{
		"listing_id":  listingID,
		"edit_status": "rejected",
	})
}

func (h *EditHandler) HandleQueue(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	items, pagination, err := h.edits.ListPendingEdits(r.Context(), actorFrom(r.Context()), page, perPage)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writePage(w, items, pagination)
}
