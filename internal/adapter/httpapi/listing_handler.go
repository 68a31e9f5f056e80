package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/metrics"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ListingHandler struct {
	listings  *usecase.ListingUsecase
	analytics *usecase.AnalyticsUsecase
	metrics   *metrics.MetricsManager
	logger    *logger.Logger
}

func NewListingHandler(listings *usecase.ListingUsecase, analytics *usecase.AnalyticsUsecase, m *metrics.MetricsManager, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		listings:  listings,
		analytics: analytics,
		metrics:   m,
		logger:    log.Named("ListingHandler"),
	}
}

func (h *ListingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in usecase.CreateListingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.logger.Debug("invalid request body for CreateListing", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	projection, err := h.listings.CreateListing(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ListingsCreatedTotal.Inc()
	}
	writeData(w, http.StatusCreated, projection)
}

func (h *ListingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	projection, err := h.listings.GetListing(r.Context(), actorFrom(r.Context()), id,
		boolParam(r, "include_private"), viewerGeo(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, projection)
}

// HandleUpdate accepts a flat JSON object of editable fields plus the
// optional is_draft, reason and group objects.
func (h *ListingHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Debug("invalid request body for UpdateListing", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := usecase.UpdatePatch{Fields: body}
	if raw, ok := body["is_draft"]; ok {
		isDraft, ok := raw.(bool)
		if !ok {
			writeError(w, http.StatusBadRequest, "is_draft must be a boolean")
			return
		}
		patch.IsDraft = &isDraft
		delete(body, "is_draft")
	}
	if raw, ok := body["reason"]; ok {
		if reason, ok := raw.(string); ok {
			patch.Reason = reason
		}
		delete(body, "reason")
	}

	outcome, err := h.listings.UpdateListing(r.Context(), actorFrom(r.Context()), id, patch)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if h.metrics != nil && outcome.RequiresApproval {
		h.metrics.EditsStagedTotal.Inc()
	}
	writeData(w, http.StatusOK, outcome)
}

func (h *ListingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.listings.DeleteListing(r.Context(), actorFrom(r.Context()), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	projections, pagination, err := h.listings.BrowseListings(r.Context(), actorFrom(r.Context()), listingFilter(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writePage(w, projections, pagination)
}

func (h *ListingHandler) HandleMyListings(w http.ResponseWriter, r *http.Request) {
	projections, pagination, err := h.listings.MyListings(r.Context(), actorFrom(r.Context()), listingFilter(r))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writePage(w, projections, pagination)
}

type moderationRequest struct {
	Note string `json:"note"`
}

func (h *ListingHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req moderationRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.listings.ApproveListing(r.Context(), actorFrom(r.Context()), id, req.Note); err != nil {
		respondError(w, h.logger, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ListingsPublishedTotal.Inc()
	}
	writeData(w, http.StatusOK, map[string]string{"listing_id": id, "status": string(domain.StatusPublished)})
}

func (h *ListingHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req moderationRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := h.listings.RejectListing(r.Context(), actorFrom(r.Context()), id, req.Note); err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"listing_id": id, "status": string(domain.StatusDraft)})
}

func (h *ListingHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	summary, err := h.analytics.Summarize(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}
