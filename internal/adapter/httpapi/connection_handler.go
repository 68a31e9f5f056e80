package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/metrics"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/usecase"
	"github.com/go-chi/chi/v5"
)

type ConnectionHandler struct {
	connections *usecase.ConnectionUsecase
	metrics     *metrics.MetricsManager
	logger      *logger.Logger
}

func NewConnectionHandler(connections *usecase.ConnectionUsecase, m *metrics.MetricsManager, log *logger.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		connections: connections,
		metrics:     m,
		logger:      log.Named("ConnectionHandler"),
	}
}

type connectionRequest struct {
	Intro string `json:"intro"`
}

func (h *ConnectionHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "id")

	var req connectionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	conn, err := h.connections.Request(r.Context(), actorFrom(r.Context()), listingID, req.Intro)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, connectionView(conn))
}

func (h *ConnectionHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conn, err := h.connections.Approve(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ConnectionsTotal.WithLabelValues(string(conn.Status)).Inc()
	}
	writeData(w, http.StatusOK, connectionView(conn))
}

func (h *ConnectionHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	conn, err := h.connections.Reject(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ConnectionsTotal.WithLabelValues(string(conn.Status)).Inc()
	}
	writeData(w, http.StatusOK, connectionView(conn))
}

func (h *ConnectionHandler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	views, pagination, err := h.connections.ListMine(r.Context(), actorFrom(r.Context()), page, perPage)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writePage(w, views, pagination)
}

type messageRequest struct {
	Body string `json:"body"`
}

func (h *ConnectionHandler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	connectionID := chi.URLParam(r, "id")

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.connections.SendMessage(r.Context(), actorFrom(r.Context()), connectionID, req.Body)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, usecase.MessageView{
		ID:           msg.ID,
		ConnectionID: msg.ConnectionID,
		SenderUserID: msg.SenderUserID,
		Body:         msg.Body,
		CreatedAt:    msg.CreatedAt,
	})
}

func (h *ConnectionHandler) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	connectionID := chi.URLParam(r, "id")
	page, perPage := pageParams(r)

	views, pagination, err := h.connections.ListMessages(r.Context(), actorFrom(r.Context()), connectionID, page, perPage)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writePage(w, views, pagination)
}

func connectionView(conn *domain.Connection) usecase.ConnectionView {
	return usecase.ConnectionView{
		ID:        conn.ID,
		ListingID: conn.ListingID,
		BuyerID:   conn.BuyerID,
		SellerID:  conn.SellerID,
		Status:    string(conn.Status),
		Intro:     conn.Intro,
		CreatedAt: conn.CreatedAt,
		UpdatedAt: conn.UpdatedAt,
	}
}
