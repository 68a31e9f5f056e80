package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Seller is the selling-side profile for a platform user. Listings
// reference sellers by profile id, not by user id.
type Seller struct {
	ID           string
	UserID       string
	PracticeName string
	Phone        string
	CreatedAt    time.Time
}

func NewSeller(userID, practiceName, phone string) (*Seller, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(practiceName) == "" {
		return nil, fmt.Errorf("%w: practice name is required", ErrInvalidInput)
	}
	return &Seller{
		ID:           uuid.NewString(),
		UserID:       userID,
		PracticeName: strings.TrimSpace(practiceName),
		Phone:        strings.TrimSpace(phone),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// Buyer is the buying-side profile. Saved listings and connections hang
// off the buyer id.
type Buyer struct {
	ID        string
	UserID    string
	FullName  string
	Phone     string
	CreatedAt time.Time
}

func NewBuyer(userID, fullName, phone string) (*Buyer, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	return &Buyer{
		ID:        uuid.NewString(),
		UserID:    userID,
		FullName:  strings.TrimSpace(fullName),
		Phone:     strings.TrimSpace(phone),
		CreatedAt: time.Now().UTC(),
	}, nil
}
