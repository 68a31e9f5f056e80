package usecase

import "time"

// NATS subjects for domain events. Consumers (notifier, audit trail,
// downstream search) subscribe by prefix.
const (
	SubjectListingCreated   = "listing.created"
	SubjectListingUpdated   = "listing.updated"
	SubjectListingDeleted   = "listing.deleted"
	SubjectListingSubmitted = "listing.submitted"
	SubjectListingApproved  = "listing.approved"
	SubjectListingRejected  = "listing.rejected"
	SubjectListingSaved     = "listing.saved"

	SubjectEditStaged   = "listing.edit.staged"
	SubjectEditApplied  = "listing.edit.applied"
	SubjectEditRejected = "listing.edit.rejected"

	SubjectConnectionRequested = "connection.requested"
	SubjectConnectionApproved  = "connection.approved"
	SubjectConnectionRejected  = "connection.rejected"
	SubjectConnectionMessage   = "connection.message"
)

type ListingEvent struct {
	ListingID  string    `json:"listing_id"`
	SellerID   string    `json:"seller_id"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EditEvent struct {
	EditID     string    `json:"edit_id"`
	ListingID  string    `json:"listing_id"`
	SellerID   string    `json:"seller_id"`
	Fields     []string  `json:"fields,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type ConnectionEvent struct {
	ConnectionID string    `json:"connection_id"`
	ListingID    string    `json:"listing_id"`
	BuyerID      string    `json:"buyer_id"`
	SellerID     string    `json:"seller_id"`
	Status       string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}
