package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConnectionStatus is the lifecycle state of a buyer-seller connection.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionApproved ConnectionStatus = "approved"
	ConnectionRejected ConnectionStatus = "rejected"
)

func (s ConnectionStatus) IsValid() bool {
	switch s {
	case ConnectionPending, ConnectionApproved, ConnectionRejected:
		return true
	}
	return false
}

// Connection is a buyer's request to engage with a listing's seller.
// One row per (buyer, listing); an approved connection unlocks the
// listing's private sections and the message thread for that buyer.
type Connection struct {
	ID        string
	ListingID string
	BuyerID   string
	SellerID  string
	Status    ConnectionStatus
	Intro     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewConnection(listingID, buyerID, sellerID, intro string) (*Connection, error) {
	if listingID == "" || buyerID == "" || sellerID == "" {
		return nil, fmt.Errorf("%w: listing, buyer and seller ids are required", ErrInvalidInput)
	}
	now := time.Now().UTC()
	return &Connection{
		ID:        uuid.NewString(),
		ListingID: listingID,
		BuyerID:   buyerID,
		SellerID:  sellerID,
		Status:    ConnectionPending,
		Intro:     intro,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Reopen resets a rejected connection to pending with a fresh intro.
func (c *Connection) Reopen(intro string) {
	c.Status = ConnectionPending
	c.Intro = intro
	c.UpdatedAt = time.Now().UTC()
}

// Decide moves a pending connection to approved or rejected.
func (c *Connection) Decide(status ConnectionStatus) error {
	if c.Status != ConnectionPending {
		return fmt.Errorf("%w: connection is already %s", ErrConflict, c.Status)
	}
	if status != ConnectionApproved && status != ConnectionRejected {
		return fmt.Errorf("%w: invalid decision %q", ErrInvalidInput, status)
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	return nil
}

const maxMessageLength = 2000

// Message is one entry in an approved connection's thread.
type Message struct {
	ID           string
	ConnectionID string
	SenderUserID string
	Body         string
	CreatedAt    time.Time
}

func NewMessage(connectionID, senderUserID, body string) (*Message, error) {
	if connectionID == "" || senderUserID == "" {
		return nil, fmt.Errorf("%w: connection and sender ids are required", ErrInvalidInput)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: message body cannot be empty", ErrInvalidInput)
	}
	if len(body) > maxMessageLength {
		return nil, fmt.Errorf("%w: message body exceeds %d characters", ErrInvalidInput, maxMessageLength)
	}
	return &Message{
		ID:           uuid.NewString(),
		ConnectionID: connectionID,
		SenderUserID: senderUserID,
		Body:         body,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
