package usecase

import (
	"time"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
)

// ListingProjection is the serialized view of a listing for one viewer.
// Private sections are omitted, not blanked, when the viewer is not
// entitled to them.
type ListingProjection struct {
	ID           string    `json:"id"`
	SellerID     string    `json:"seller_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PracticeType string    `json:"practice_type"`
	Location     string    `json:"location"`
	Postcode     string    `json:"postcode,omitempty"`
	Status       string    `json:"status,omitempty"`
	Price        PriceView `json:"price"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Media []MediaView `json:"media"`

	BusinessDetails map[string]any      `json:"business_details,omitempty"`
	FinancialData   map[string]any      `json:"financial_data,omitempty"`
	Seller          *SellerContact      `json:"seller,omitempty"`
	Performance     *PerformanceView    `json:"performance,omitempty"`
	PendingEdit     *PendingEditSummary `json:"pending_edit,omitempty"`
}

// PriceView is the price block. A masked price exposes only the band.
type PriceView struct {
	Masked      bool   `json:"masked"`
	AskingPrice *int64 `json:"asking_price,omitempty"`
	Display     string `json:"display"`
}

type MediaView struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	FileName string `json:"file_name,omitempty"`
	Position int    `json:"position"`
}

type SellerContact struct {
	SellerID     string `json:"seller_id"`
	PracticeName string `json:"practice_name"`
	Phone        string `json:"phone,omitempty"`
}

type PerformanceView struct {
	ViewCount       int64 `json:"view_count"`
	ConnectionCount int64 `json:"connection_count"`
	SavedCount      int64 `json:"saved_count"`
}

// PendingEditSummary tells the owner an edit is waiting without repeating
// the full delta.
type PendingEditSummary struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	Fields      []string  `json:"fields"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func newPendingEditSummary(edit *domain.PendingEdit) *PendingEditSummary {
	fields := make([]string, 0, len(edit.Changes))
	for _, key := range sortedKeys(edit.Changes) {
		if nested, ok := edit.Changes[key].(map[string]any); ok {
			for _, k := range sortedKeys(nested) {
				fields = append(fields, key+"."+k)
			}
			continue
		}
		fields = append(fields, key)
	}
	return &PendingEditSummary{
		ID:          edit.ID,
		Status:      string(edit.Status),
		Reason:      edit.Reason,
		Fields:      fields,
		SubmittedAt: edit.UpdatedAt,
	}
}

func mediaViews(media []*domain.ListingMedia) []MediaView {
	views := make([]MediaView, 0, len(media))
	for _, m := range media {
		views = append(views, MediaView{ID: m.ID, URL: m.URL, FileName: m.FileName, Position: m.Position})
	}
	return views
}

// businessDetailsView merges the typed business columns with the extras
// bag; typed values win on key collisions.
func businessDetailsView(l *domain.Listing) map[string]any {
	return groupView(l, domain.GroupBusinessDetails)
}

func financialDataView(l *domain.Listing) map[string]any {
	return groupView(l, domain.GroupFinancialData)
}

func groupView(l *domain.Listing, name string) map[string]any {
	group, ok := domain.ListingGroup(name)
	if !ok {
		return nil
	}
	view := make(map[string]any)
	for k, v := range group.Extras(l) {
		view[k] = v
	}
	for k, f := range group.Fields {
		view[k] = f.Get(l)
	}
	return view
}
