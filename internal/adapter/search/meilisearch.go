package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/meilisearch/meilisearch-go"
)

const indexUID = "listings"

// sortableColumns maps filter sort keys onto index attributes. Sort is
// a tiebreaker here: Meilisearch ranks by relevance first.
var sortableColumns = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"asking_price": "asking_price",
	"view_count":   "view_count",
}

// Client indexes published listings in Meilisearch. Only public fields
// are stored; hydration and visibility stay with the relational store.
type Client struct {
	client *meilisearch.Client
	index  string
}

type listingDocument struct {
	ID           string `json:"id"`
	SellerID     string `json:"seller_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	PracticeType string `json:"practice_type"`
	Location     string `json:"location"`
	Postcode     string `json:"postcode"`
	Status       string `json:"status"`
	AskingPrice  int64  `json:"asking_price"`
	ViewCount    int64  `json:"view_count"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
}

func NewClient(host, apiKey string) *Client {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})
	return &Client{client: client, index: indexUID}
}

// InitIndex creates the index and pushes attribute settings. Safe to
// call on every boot.
func (c *Client) InitIndex() error {
	_, err := c.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        c.index,
		PrimaryKey: "id",
	})
	if err != nil {
		if _, getErr := c.client.GetIndex(c.index); getErr != nil {
			return fmt.Errorf("create index %s: %w", c.index, err)
		}
	}

	idx := c.client.Index(c.index)
	if _, err := idx.UpdateSearchableAttributes(&[]string{
		"title",
		"description",
		"location",
		"postcode",
		"practice_type",
	}); err != nil {
		return err
	}
	if _, err := idx.UpdateFilterableAttributes(&[]string{
		"id",
		"seller_id",
		"status",
		"practice_type",
		"asking_price",
	}); err != nil {
		return err
	}
	if _, err := idx.UpdateSortableAttributes(&[]string{
		"asking_price",
		"created_at",
		"updated_at",
		"view_count",
	}); err != nil {
		return err
	}
	return nil
}

func (c *Client) IndexListing(_ context.Context, listing *domain.Listing) error {
	_, err := c.client.Index(c.index).AddDocuments([]listingDocument{toDocument(listing)})
	return err
}

// IndexListings bulk-upserts documents; used by the reindex job.
func (c *Client) IndexListings(_ context.Context, listings []*domain.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	docs := make([]listingDocument, 0, len(listings))
	for _, l := range listings {
		docs = append(docs, toDocument(l))
	}
	_, err := c.client.Index(c.index).AddDocuments(docs)
	return err
}

func (c *Client) RemoveListing(_ context.Context, id string) error {
	_, err := c.client.Index(c.index).DeleteDocument(id)
	return err
}

func (c *Client) SearchIDs(_ context.Context, filter domain.ListingFilter) ([]string, int64, error) {
	filters := []string{`status = "published"`}
	if filter.PracticeType != "" {
		filters = append(filters, fmt.Sprintf("practice_type = %q", filter.PracticeType))
	}
	if filter.SellerID != "" {
		filters = append(filters, fmt.Sprintf("seller_id = %q", filter.SellerID))
	}
	if filter.MinPrice > 0 {
		filters = append(filters, fmt.Sprintf("asking_price >= %d", filter.MinPrice))
	}
	if filter.MaxPrice > 0 {
		filters = append(filters, fmt.Sprintf("asking_price <= %d", filter.MaxPrice))
	}

	req := &meilisearch.SearchRequest{
		Limit:                int64(filter.PerPage),
		Offset:               int64(filter.Offset()),
		Filter:               strings.Join(filters, " AND "),
		AttributesToRetrieve: []string{"id"},
	}
	if column, ok := sortableColumns[filter.SortBy]; ok {
		direction := "desc"
		if filter.SortOrder == "asc" {
			direction = "asc"
		}
		req.Sort = []string{column + ":" + direction}
	}

	res, err := c.client.Index(c.index).Search(filter.Query, req)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		doc, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		if id, ok := doc["id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, res.EstimatedTotalHits, nil
}

func toDocument(l *domain.Listing) listingDocument {
	return listingDocument{
		ID:           l.ID,
		SellerID:     l.SellerID,
		Title:        l.Title,
		Description:  l.Description,
		PracticeType: l.PracticeType,
		Location:     l.Location,
		Postcode:     l.Postcode,
		Status:       string(l.Status),
		AskingPrice:  l.AskingPrice,
		ViewCount:    l.ViewCount,
		CreatedAt:    l.CreatedAt.Unix(),
		UpdatedAt:    l.UpdatedAt.Unix(),
	}
}
