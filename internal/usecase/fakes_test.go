package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
)

// memStore is a map-backed domain.UnitOfWork for usecase tests. Within
// runs the function against the same state and returns its error
// unchanged, which is exactly the error contract of the real store;
// partial writes from a failed function are not rolled back, so tests
// asserting post-failure state must account for that.
type memStore struct {
	sellers  map[string]*domain.Seller
	buyers   map[string]*domain.Buyer
	listings map[string]*domain.Listing
	edits    map[string]*domain.PendingEdit
	saved    map[string]*domain.SavedListing
	views    []*domain.ListingView
	conns    map[string]*domain.Connection
	messages []*domain.Message
	media    map[string]*domain.ListingMedia

	mediaCreateErr error
}

func newMemStore() *memStore {
	return &memStore{
		sellers:  map[string]*domain.Seller{},
		buyers:   map[string]*domain.Buyer{},
		listings: map[string]*domain.Listing{},
		edits:    map[string]*domain.PendingEdit{},
		saved:    map[string]*domain.SavedListing{},
		conns:    map[string]*domain.Connection{},
		media:    map[string]*domain.ListingMedia{},
	}
}

func (s *memStore) Sellers() domain.SellerRepository           { return memSellers{s} }
func (s *memStore) Buyers() domain.BuyerRepository             { return memBuyers{s} }
func (s *memStore) Listings() domain.ListingRepository         { return memListings{s} }
func (s *memStore) PendingEdits() domain.PendingEditRepository { return memEdits{s} }
func (s *memStore) Saved() domain.SavedListingRepository       { return memSaved{s} }
func (s *memStore) Views() domain.ListingViewRepository        { return memViews{s} }
func (s *memStore) Connections() domain.ConnectionRepository   { return memConns{s} }
func (s *memStore) Messages() domain.MessageRepository         { return memMessages{s} }
func (s *memStore) Media() domain.MediaRepository              { return memMedia{s} }

func (s *memStore) Within(_ context.Context, fn func(r domain.Repositories) error) error {
	return fn(s)
}

func notFound(what, id string) error {
	return fmt.Errorf("%w: %s %s", domain.ErrNotFound, what, id)
}

func paginate[T any](items []T, page, perPage int) []T {
	offset := (page - 1) * perPage
	if offset >= len(items) {
		return nil
	}
	end := offset + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type memSellers struct{ s *memStore }

func (r memSellers) Create(_ context.Context, seller *domain.Seller) error {
	r.s.sellers[seller.ID] = seller
	return nil
}

func (r memSellers) Update(_ context.Context, seller *domain.Seller) error {
	r.s.sellers[seller.ID] = seller
	return nil
}

func (r memSellers) FindByID(_ context.Context, id string) (*domain.Seller, error) {
	if s, ok := r.s.sellers[id]; ok {
		return s, nil
	}
	return nil, notFound("seller", id)
}

func (r memSellers) FindByUserID(_ context.Context, userID string) (*domain.Seller, error) {
	for _, s := range r.s.sellers {
		if s.UserID == userID {
			return s, nil
		}
	}
	return nil, notFound("seller for user", userID)
}

type memBuyers struct{ s *memStore }

func (r memBuyers) Create(_ context.Context, buyer *domain.Buyer) error {
	r.s.buyers[buyer.ID] = buyer
	return nil
}

func (r memBuyers) Update(_ context.Context, buyer *domain.Buyer) error {
	r.s.buyers[buyer.ID] = buyer
	return nil
}

func (r memBuyers) FindByID(_ context.Context, id string) (*domain.Buyer, error) {
	if b, ok := r.s.buyers[id]; ok {
		return b, nil
	}
	return nil, notFound("buyer", id)
}

func (r memBuyers) FindByUserID(_ context.Context, userID string) (*domain.Buyer, error) {
	for _, b := range r.s.buyers {
		if b.UserID == userID {
			return b, nil
		}
	}
	return nil, notFound("buyer for user", userID)
}

type memListings struct{ s *memStore }

func (r memListings) Create(_ context.Context, listing *domain.Listing) error {
	r.s.listings[listing.ID] = listing
	return nil
}

func (r memListings) Update(_ context.Context, listing *domain.Listing) error {
	r.s.listings[listing.ID] = listing
	return nil
}

func (r memListings) Delete(_ context.Context, id string) error {
	if _, ok := r.s.listings[id]; !ok {
		return notFound("listing", id)
	}
	delete(r.s.listings, id)
	return nil
}

func (r memListings) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	if l, ok := r.s.listings[id]; ok {
		return l, nil
	}
	return nil, notFound("listing", id)
}

func (r memListings) FindByIDs(_ context.Context, ids []string) ([]*domain.Listing, error) {
	out := make([]*domain.Listing, 0, len(ids))
	for _, id := range ids {
		if l, ok := r.s.listings[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r memListings) FindByFilter(_ context.Context, f domain.ListingFilter) ([]*domain.Listing, int64, error) {
	var matched []*domain.Listing
	for _, l := range r.s.listings {
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		if f.SellerID != "" && l.SellerID != f.SellerID {
			continue
		}
		if f.PracticeType != "" && l.PracticeType != f.PracticeType {
			continue
		}
		if f.Location != "" && !containsFold(l.Location, f.Location) {
			continue
		}
		if f.Query != "" && !containsFold(l.Title, f.Query) &&
			!containsFold(l.Description, f.Query) && !containsFold(l.Location, f.Query) {
			continue
		}
		if f.MinPrice > 0 && l.AskingPrice < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && l.AskingPrice > f.MaxPrice {
			continue
		}
		matched = append(matched, l)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		var less bool
		switch f.SortBy {
		case "asking_price":
			less = a.AskingPrice < b.AskingPrice
		case "view_count":
			less = a.ViewCount < b.ViewCount
		case "updated_at":
			less = a.UpdatedAt.Before(b.UpdatedAt)
		default:
			less = a.CreatedAt.Before(b.CreatedAt)
		}
		if f.SortOrder == "asc" {
			return less
		}
		return !less
	})

	total := int64(len(matched))
	return paginate(matched, f.Page, f.PerPage), total, nil
}

func (r memListings) IncrementViewCount(_ context.Context, id string) error {
	l, ok := r.s.listings[id]
	if !ok {
		return notFound("listing", id)
	}
	l.ViewCount++
	return nil
}

func (r memListings) IncrementConnectionCount(_ context.Context, id string) error {
	l, ok := r.s.listings[id]
	if !ok {
		return notFound("listing", id)
	}
	l.ConnectionCount++
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

type memEdits struct{ s *memStore }

func (r memEdits) Create(_ context.Context, edit *domain.PendingEdit) error {
	r.s.edits[edit.ID] = edit
	return nil
}

func (r memEdits) Update(_ context.Context, edit *domain.PendingEdit) error {
	r.s.edits[edit.ID] = edit
	return nil
}

func (r memEdits) FindPendingByListing(_ context.Context, listingID string) (*domain.PendingEdit, error) {
	for _, e := range r.s.edits {
		if e.ListingID == listingID && e.Status == domain.EditStatusPending {
			return e, nil
		}
	}
	return nil, notFound("pending edit for listing", listingID)
}

func (r memEdits) ListPending(_ context.Context, page, perPage int) ([]*domain.PendingEdit, int64, error) {
	var pending []*domain.PendingEdit
	for _, e := range r.s.edits {
		if e.Status == domain.EditStatusPending {
			pending = append(pending, e)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return paginate(pending, page, perPage), int64(len(pending)), nil
}

func (r memEdits) DeleteByListing(_ context.Context, listingID string) error {
	for id, e := range r.s.edits {
		if e.ListingID == listingID {
			delete(r.s.edits, id)
		}
	}
	return nil
}

type memSaved struct{ s *memStore }

func (r memSaved) Create(_ context.Context, saved *domain.SavedListing) error {
	r.s.saved[saved.ID] = saved
	return nil
}

func (r memSaved) Update(_ context.Context, saved *domain.SavedListing) error {
	r.s.saved[saved.ID] = saved
	return nil
}

func (r memSaved) Delete(_ context.Context, buyerID, listingID string) error {
	for id, s := range r.s.saved {
		if s.BuyerID == buyerID && s.ListingID == listingID {
			delete(r.s.saved, id)
			return nil
		}
	}
	return notFound("saved listing", listingID)
}

func (r memSaved) FindByBuyerAndListing(_ context.Context, buyerID, listingID string) (*domain.SavedListing, error) {
	for _, s := range r.s.saved {
		if s.BuyerID == buyerID && s.ListingID == listingID {
			return s, nil
		}
	}
	return nil, notFound("saved listing", listingID)
}

func (r memSaved) ListByBuyer(_ context.Context, buyerID string, page, perPage int) ([]*domain.SavedListing, int64, error) {
	var out []*domain.SavedListing
	for _, s := range r.s.saved {
		if s.BuyerID == buyerID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, page, perPage), int64(len(out)), nil
}

func (r memSaved) CountByListing(_ context.Context, listingID string) (int64, error) {
	var n int64
	for _, s := range r.s.saved {
		if s.ListingID == listingID {
			n++
		}
	}
	return n, nil
}

func (r memSaved) DeleteByListing(_ context.Context, listingID string) error {
	for id, s := range r.s.saved {
		if s.ListingID == listingID {
			delete(r.s.saved, id)
		}
	}
	return nil
}

type memViews struct{ s *memStore }

func (r memViews) Insert(_ context.Context, view *domain.ListingView) error {
	r.s.views = append(r.s.views, view)
	return nil
}

func (r memViews) CountSince(_ context.Context, listingID string, since time.Time) (int64, error) {
	var n int64
	for _, v := range r.s.views {
		if v.ListingID == listingID && !v.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r memViews) CountDistinctViewersSince(_ context.Context, listingID string, since time.Time) (int64, error) {
	seen := map[string]bool{}
	for _, v := range r.s.views {
		if v.ListingID == listingID && !v.CreatedAt.Before(since) && v.ViewerID != nil {
			seen[*v.ViewerID] = true
		}
	}
	return int64(len(seen)), nil
}

func (r memViews) DailyCountsSince(_ context.Context, listingID string, since time.Time) ([]domain.DailyViewCount, error) {
	byDate := map[string]int64{}
	for _, v := range r.s.views {
		if v.ListingID == listingID && !v.CreatedAt.Before(since) {
			byDate[v.CreatedAt.UTC().Format("2006-01-02")]++
		}
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	out := make([]domain.DailyViewCount, 0, len(dates))
	for _, d := range dates {
		out = append(out, domain.DailyViewCount{Date: d, Count: byDate[d]})
	}
	return out, nil
}

func (r memViews) RecentAuthenticatedSince(_ context.Context, listingID string, since time.Time, limit int) ([]*domain.ListingView, error) {
	var out []*domain.ListingView
	for _, v := range r.s.views {
		if v.ListingID == listingID && !v.CreatedAt.Before(since) && v.ViewerID != nil {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memViews) CountByViewers(_ context.Context, listingID string, viewerIDs []string) (map[string]int64, error) {
	wanted := map[string]bool{}
	for _, id := range viewerIDs {
		wanted[id] = true
	}
	counts := map[string]int64{}
	for _, v := range r.s.views {
		if v.ListingID == listingID && v.ViewerID != nil && wanted[*v.ViewerID] {
			counts[*v.ViewerID]++
		}
	}
	return counts, nil
}

type memConns struct{ s *memStore }

func (r memConns) Create(_ context.Context, conn *domain.Connection) error {
	r.s.conns[conn.ID] = conn
	return nil
}

func (r memConns) Update(_ context.Context, conn *domain.Connection) error {
	r.s.conns[conn.ID] = conn
	return nil
}

func (r memConns) FindByID(_ context.Context, id string) (*domain.Connection, error) {
	if c, ok := r.s.conns[id]; ok {
		return c, nil
	}
	return nil, notFound("connection", id)
}

func (r memConns) FindByBuyerAndListing(_ context.Context, buyerID, listingID string) (*domain.Connection, error) {
	for _, c := range r.s.conns {
		if c.BuyerID == buyerID && c.ListingID == listingID {
			return c, nil
		}
	}
	return nil, notFound("connection for listing", listingID)
}

func (r memConns) HasApproved(_ context.Context, buyerID, sellerID string) (bool, error) {
	for _, c := range r.s.conns {
		if c.BuyerID == buyerID && c.SellerID == sellerID && c.Status == domain.ConnectionApproved {
			return true, nil
		}
	}
	return false, nil
}

func (r memConns) ApprovedSellerIDs(_ context.Context, buyerID string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, c := range r.s.conns {
		if c.BuyerID == buyerID && c.Status == domain.ConnectionApproved && !seen[c.SellerID] {
			seen[c.SellerID] = true
			out = append(out, c.SellerID)
		}
	}
	return out, nil
}

func (r memConns) CountApprovedByListing(_ context.Context, listingID string) (int64, error) {
	var n int64
	for _, c := range r.s.conns {
		if c.ListingID == listingID && c.Status == domain.ConnectionApproved {
			n++
		}
	}
	return n, nil
}

func (r memConns) ListByBuyer(_ context.Context, buyerID string, page, perPage int) ([]*domain.Connection, int64, error) {
	return r.list(func(c *domain.Connection) bool { return c.BuyerID == buyerID }, page, perPage)
}

func (r memConns) ListBySeller(_ context.Context, sellerID string, page, perPage int) ([]*domain.Connection, int64, error) {
	return r.list(func(c *domain.Connection) bool { return c.SellerID == sellerID }, page, perPage)
}

func (r memConns) List(_ context.Context, page, perPage int) ([]*domain.Connection, int64, error) {
	return r.list(func(*domain.Connection) bool { return true }, page, perPage)
}

func (r memConns) list(match func(*domain.Connection) bool, page, perPage int) ([]*domain.Connection, int64, error) {
	var out []*domain.Connection
	for _, c := range r.s.conns {
		if match(c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return paginate(out, page, perPage), int64(len(out)), nil
}

func (r memConns) DeleteByListing(_ context.Context, listingID string) error {
	for id, c := range r.s.conns {
		if c.ListingID == listingID {
			delete(r.s.conns, id)
		}
	}
	return nil
}

type memMessages struct{ s *memStore }

func (r memMessages) Create(_ context.Context, msg *domain.Message) error {
	r.s.messages = append(r.s.messages, msg)
	return nil
}

func (r memMessages) ListByConnection(_ context.Context, connectionID string, page, perPage int) ([]*domain.Message, int64, error) {
	var out []*domain.Message
	for _, m := range r.s.messages {
		if m.ConnectionID == connectionID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return paginate(out, page, perPage), int64(len(out)), nil
}

type memMedia struct{ s *memStore }

func (r memMedia) Create(_ context.Context, media *domain.ListingMedia) error {
	if r.s.mediaCreateErr != nil {
		return r.s.mediaCreateErr
	}
	r.s.media[media.ID] = media
	return nil
}

func (r memMedia) Delete(_ context.Context, id string) error {
	if _, ok := r.s.media[id]; !ok {
		return notFound("media", id)
	}
	delete(r.s.media, id)
	return nil
}

func (r memMedia) FindByID(_ context.Context, id string) (*domain.ListingMedia, error) {
	if m, ok := r.s.media[id]; ok {
		return m, nil
	}
	return nil, notFound("media", id)
}

func (r memMedia) ListByListing(_ context.Context, listingID string) ([]*domain.ListingMedia, error) {
	var out []*domain.ListingMedia
	for _, m := range r.s.media {
		if m.ListingID == listingID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (r memMedia) ListByListings(_ context.Context, listingIDs []string) ([]*domain.ListingMedia, error) {
	wanted := map[string]bool{}
	for _, id := range listingIDs {
		wanted[id] = true
	}
	var out []*domain.ListingMedia
	for _, m := range r.s.media {
		if wanted[m.ListingID] {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (r memMedia) DeleteByListing(_ context.Context, listingID string) error {
	for id, m := range r.s.media {
		if m.ListingID == listingID {
			delete(r.s.media, id)
		}
	}
	return nil
}

// fakePublisher records every published event.
type fakePublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	subject string
	payload any
}

func (p *fakePublisher) Publish(_ context.Context, subject string, event any) error {
	p.events = append(p.events, publishedEvent{subject: subject, payload: event})
	return nil
}

func (p *fakePublisher) subjects() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.subject)
	}
	return out
}

// fakeCache tracks hits and invalidations.
type fakeCache struct {
	items   map[string]*domain.Listing
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[string]*domain.Listing{}}
}

func (c *fakeCache) GetListing(_ context.Context, id string) (*domain.Listing, error) {
	return c.items[id], nil
}

func (c *fakeCache) SetListing(_ context.Context, listing *domain.Listing) error {
	c.items[listing.ID] = listing
	return nil
}

func (c *fakeCache) DeleteListing(_ context.Context, id string) error {
	delete(c.items, id)
	c.deletes = append(c.deletes, id)
	return nil
}

// fakeIndex returns a canned ranking and records sync calls.
type fakeIndex struct {
	ids     []string
	total   int64
	err     error
	queries []domain.ListingFilter
	indexed []string
	removed []string
}

func (f *fakeIndex) IndexListing(_ context.Context, listing *domain.Listing) error {
	f.indexed = append(f.indexed, listing.ID)
	return nil
}

func (f *fakeIndex) RemoveListing(_ context.Context, id string) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeIndex) SearchIDs(_ context.Context, filter domain.ListingFilter) ([]string, int64, error) {
	f.queries = append(f.queries, filter)
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.ids, f.total, nil
}

// fakeStorage hands out deterministic keys and records removals.
type fakeStorage struct {
	uploads   int
	removed   []string
	uploadErr error
}

func (s *fakeStorage) Upload(_ context.Context, fileName, _ string, _ []byte) (string, string, error) {
	if s.uploadErr != nil {
		return "", "", s.uploadErr
	}
	s.uploads++
	key := fmt.Sprintf("listings/object-%d", s.uploads)
	return key, "http://blob.local/" + key + "/" + fileName, nil
}

func (s *fakeStorage) Remove(_ context.Context, objectKey string) error {
	s.removed = append(s.removed, objectKey)
	return nil
}

func testLogger() *logger.Logger { return logger.NewNop() }

// Seed helpers. Each returns the stored aggregate for follow-up asserts.

func seedSeller(s *memStore, userID, practiceName string) *domain.Seller {
	seller, err := domain.NewSeller(userID, practiceName, "+44 113 555 0101")
	if err != nil {
		panic(err)
	}
	s.sellers[seller.ID] = seller
	return seller
}

func seedBuyer(s *memStore, userID, fullName string) *domain.Buyer {
	buyer, err := domain.NewBuyer(userID, fullName, "")
	if err != nil {
		panic(err)
	}
	s.buyers[buyer.ID] = buyer
	return buyer
}

func seedListing(s *memStore, sellerID string, status domain.ListingStatus) *domain.Listing {
	listing, err := domain.NewListing(domain.NewListingParams{
		SellerID:     sellerID,
		Title:        "Dental practice in Leeds",
		Description:  "Established three-surgery practice",
		PracticeType: "dental",
		Location:     "Leeds",
		Postcode:     "LS1 4AB",
		AskingPrice:  450_000,
	})
	if err != nil {
		panic(err)
	}
	listing.Status = status
	s.listings[listing.ID] = listing
	return listing
}

func seedConnection(s *memStore, listing *domain.Listing, buyerID string, status domain.ConnectionStatus) *domain.Connection {
	conn, err := domain.NewConnection(listing.ID, buyerID, listing.SellerID, "interested")
	if err != nil {
		panic(err)
	}
	conn.Status = status
	s.conns[conn.ID] = conn
	return conn
}

func sellerActor(seller *domain.Seller) domain.Actor {
	return domain.Actor{UserID: seller.UserID, Role: domain.RoleSeller}
}

func buyerActor(buyer *domain.Buyer) domain.Actor {
	return domain.Actor{UserID: buyer.UserID, Role: domain.RoleBuyer}
}

func adminActor() domain.Actor {
	return domain.Actor{UserID: "admin-user", Role: domain.RoleAdmin}
}
