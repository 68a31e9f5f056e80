package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/usecase"
)

type ProfileHandler struct {
	profiles *usecase.ProfileUsecase
	logger   *logger.Logger
}

func NewProfileHandler(profiles *usecase.ProfileUsecase, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: log.Named("ProfileHandler")}
}

type sellerProfileRequest struct {
	PracticeName string `json:"practice_name"`
	Phone        string `json:"phone"`
}

type sellerProfileResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	PracticeName string    `json:"practice_name"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (h *ProfileHandler) HandleRegisterSeller(w http.ResponseWriter, r *http.Request) {
	var req sellerProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	seller, err := h.profiles.RegisterSeller(r.Context(), actorFrom(r.Context()), req.PracticeName, req.Phone)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, sellerProfileResponse{
		ID:           seller.ID,
		UserID:       seller.UserID,
		PracticeName: seller.PracticeName,
		Phone:        seller.Phone,
		CreatedAt:    seller.CreatedAt,
	})
}

type buyerProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type buyerProfileResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *ProfileHandler) HandleRegisterBuyer(w http.ResponseWriter, r *http.Request) {
	var req buyerProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	buyer, err := h.profiles.RegisterBuyer(r.Context(), actorFrom(r.Context()), req.FullName, req.Phone)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, buyerProfileResponse{
		ID:        buyer.ID,
		UserID:    buyer.UserID,
		FullName:  buyer.FullName,
		Phone:     buyer.Phone,
		CreatedAt: buyer.CreatedAt,
	})
}
