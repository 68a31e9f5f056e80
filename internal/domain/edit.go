package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EditStatus is the review state of a staged edit.
type EditStatus string

const (
	EditStatusPending  EditStatus = "pending"
	EditStatusApproved EditStatus = "approved"
	EditStatusRejected EditStatus = "rejected"
)

func (s EditStatus) IsValid() bool {
	switch s {
	case EditStatusPending, EditStatusApproved, EditStatusRejected:
		return true
	}
	return false
}

// PendingEdit holds the staged changes for one listing. Changes carries
// only the fields that differ from the live listing, with group keys
// ("business_details", "financial_data") mapping to the differing nested
// keys. A listing has at most one pending edit; resubmitting replaces the
// delta wholesale.
type PendingEdit struct {
	ID             string
	ListingID      string
	SellerID       string
	Changes        map[string]any
	Reason         string
	Status         EditStatus
	ModerationNote string
	ReviewedBy     *string
	ReviewedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPendingEdit creates a pending edit for a non-empty delta.
func NewPendingEdit(listingID, sellerID string, changes map[string]any, reason string) (*PendingEdit, error) {
	if listingID == "" || sellerID == "" {
		return nil, fmt.Errorf("%w: listing and seller ids are required", ErrInvalidInput)
	}
	if len(changes) == 0 {
		return nil, fmt.Errorf("%w: changes cannot be empty", ErrInvalidInput)
	}
	now := time.Now().UTC()
	return &PendingEdit{
		ID:        uuid.NewString(),
		ListingID: listingID,
		SellerID:  sellerID,
		Changes:   changes,
		Reason:    reason,
		Status:    EditStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Replace swaps in a newly submitted delta, keeping the edit's identity.
func (e *PendingEdit) Replace(changes map[string]any, reason string) {
	e.Changes = changes
	e.Reason = reason
	e.Status = EditStatusPending
	e.ModerationNote = ""
	e.ReviewedBy = nil
	e.ReviewedAt = nil
	e.UpdatedAt = time.Now().UTC()
}

// MarkReviewed finalizes the edit after a moderation decision.
func (e *PendingEdit) MarkReviewed(status EditStatus, reviewerID, note string) {
	now := time.Now().UTC()
	e.Status = status
	e.ModerationNote = note
	e.ReviewedBy = &reviewerID
	e.ReviewedAt = &now
	e.UpdatedAt = now
}

// FieldChange is one row of a staged-edit review display.
type FieldChange struct {
	Field        string `json:"field"`
	Label        string `json:"label"`
	CurrentValue any    `json:"current_value"`
	NewValue     any    `json:"new_value"`
}
