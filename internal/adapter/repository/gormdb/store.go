package gormdb

import (
	"context"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"gorm.io/gorm"
)

// Store exposes every repository over a single gorm handle and doubles
// as the unit of work: Within runs the callback against a transaction-
// bound Store, so errors returned by the callback roll everything back
// unchanged.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Sellers() domain.SellerRepository           { return &sellerRepo{db: s.db} }
func (s *Store) Buyers() domain.BuyerRepository             { return &buyerRepo{db: s.db} }
func (s *Store) Listings() domain.ListingRepository         { return &listingRepo{db: s.db} }
func (s *Store) PendingEdits() domain.PendingEditRepository { return &pendingEditRepo{db: s.db} }
func (s *Store) Saved() domain.SavedListingRepository       { return &savedListingRepo{db: s.db} }
func (s *Store) Views() domain.ListingViewRepository        { return &listingViewRepo{db: s.db} }
func (s *Store) Connections() domain.ConnectionRepository   { return &connectionRepo{db: s.db} }
func (s *Store) Messages() domain.MessageRepository         { return &messageRepo{db: s.db} }
func (s *Store) Media() domain.MediaRepository              { return &mediaRepo{db: s.db} }

func (s *Store) Within(ctx context.Context, fn func(r domain.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
