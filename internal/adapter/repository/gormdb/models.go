package gormdb

import (
	"time"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"gorm.io/datatypes"
)

// Row models for the relational store. Domain entities stay free of
// persistence tags; the converters below translate both ways.

type sellerModel struct {
	ID           string `gorm:"type:varchar(36);primaryKey"`
	UserID       string `gorm:"type:varchar(64);not null;uniqueIndex"`
	PracticeName string `gorm:"type:varchar(255);not null"`
	Phone        string `gorm:"type:varchar(32)"`
	CreatedAt    time.Time
}

func (sellerModel) TableName() string { return "sellers" }

type buyerModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	UserID    string `gorm:"type:varchar(64);not null;uniqueIndex"`
	FullName  string `gorm:"type:varchar(255);not null"`
	Phone     string `gorm:"type:varchar(32)"`
	CreatedAt time.Time
}

func (buyerModel) TableName() string { return "buyers" }

type listingModel struct {
	ID           string `gorm:"type:varchar(36);primaryKey"`
	SellerID     string `gorm:"type:varchar(36);not null;index"`
	Title        string `gorm:"type:varchar(255);not null"`
	Description  string `gorm:"type:text"`
	PracticeType string `gorm:"type:varchar(100);not null;index"`
	Location     string `gorm:"type:varchar(255);index"`
	Postcode     string `gorm:"type:varchar(16)"`
	Status       string `gorm:"type:varchar(32);not null;index"`
	AskingPrice  int64  `gorm:"not null"`
	PriceMasked  bool   `gorm:"not null;default:false"`
	AdminNotes   string `gorm:"type:text"`

	PatientListSize  int64
	StaffCount       int64
	YearsEstablished int64
	PremisesType     string            `gorm:"type:varchar(64)"`
	CQCRegistered    bool              `gorm:"column:cqc_registered"`
	NHSContract      bool              `gorm:"column:nhs_contract"`
	BusinessExtras   datatypes.JSONMap `gorm:"type:json"`

	AnnualRevenue   int64
	AnnualProfit    int64
	FinancialExtras datatypes.JSONMap `gorm:"type:json"`

	ViewCount       int64 `gorm:"not null;default:0"`
	ConnectionCount int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// Association declared for the migrated constraint only; repos never preload.
	Seller *sellerModel `gorm:"foreignKey:SellerID;constraint:OnDelete:RESTRICT"`
}

func (listingModel) TableName() string { return "listings" }

type pendingEditModel struct {
	ID             string            `gorm:"type:varchar(36);primaryKey"`
	ListingID      string            `gorm:"type:varchar(36);not null;index"`
	SellerID       string            `gorm:"type:varchar(36);not null;index"`
	Changes        datatypes.JSONMap `gorm:"type:json"`
	Reason         string            `gorm:"type:text"`
	Status         string            `gorm:"type:varchar(16);not null;index"`
	ModerationNote string            `gorm:"type:text"`
	ReviewedBy     *string           `gorm:"type:varchar(64)"`
	ReviewedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Listing *listingModel `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

func (pendingEditModel) TableName() string { return "pending_edits" }

type savedListingModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	BuyerID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_saved_buyer_listing"`
	ListingID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_saved_buyer_listing;index"`
	Note      string `gorm:"type:text"`
	CreatedAt time.Time

	Buyer   *buyerModel   `gorm:"foreignKey:BuyerID;constraint:OnDelete:CASCADE"`
	Listing *listingModel `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

func (savedListingModel) TableName() string { return "saved_listings" }

// listing_views intentionally carries no foreign key: views are an
// append-only event log and survive listing deletion.
type listingViewModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	ListingID string    `gorm:"type:varchar(36);not null;index:idx_views_listing_created,priority:1"`
	ViewerID  *string   `gorm:"type:varchar(64);index"`
	IP        string    `gorm:"type:varchar(64)"`
	Country   string    `gorm:"type:varchar(100)"`
	City      string    `gorm:"type:varchar(100)"`
	CreatedAt time.Time `gorm:"index:idx_views_listing_created,priority:2"`
}

func (listingViewModel) TableName() string { return "listing_views" }

type connectionModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	ListingID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_conn_buyer_listing,priority:2;index"`
	BuyerID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_conn_buyer_listing,priority:1"`
	SellerID  string `gorm:"type:varchar(36);not null;index"`
	Status    string `gorm:"type:varchar(16);not null;index"`
	Intro     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Listing *listingModel `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	Buyer   *buyerModel   `gorm:"foreignKey:BuyerID;constraint:OnDelete:CASCADE"`
	Seller  *sellerModel  `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE"`
}

func (connectionModel) TableName() string { return "connections" }

type messageModel struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	ConnectionID string    `gorm:"type:varchar(36);not null;index:idx_messages_conn_created,priority:1"`
	SenderUserID string    `gorm:"type:varchar(64);not null"`
	Body         string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"index:idx_messages_conn_created,priority:2"`

	Connection *connectionModel `gorm:"foreignKey:ConnectionID;constraint:OnDelete:CASCADE"`
}

func (messageModel) TableName() string { return "messages" }

type listingMediaModel struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	ListingID string `gorm:"type:varchar(36);not null;index"`
	ObjectKey string `gorm:"type:varchar(512);not null"`
	URL       string `gorm:"type:varchar(1024);not null"`
	FileName  string `gorm:"type:varchar(255)"`
	Position  int    `gorm:"not null;default:0"`
	CreatedAt time.Time

	Listing *listingModel `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

func (listingMediaModel) TableName() string { return "listing_media" }

func toSellerModel(s *domain.Seller) *sellerModel {
	return &sellerModel{ID: s.ID, UserID: s.UserID, PracticeName: s.PracticeName, Phone: s.Phone, CreatedAt: s.CreatedAt}
}

func toDomainSeller(m *sellerModel) *domain.Seller {
	return &domain.Seller{ID: m.ID, UserID: m.UserID, PracticeName: m.PracticeName, Phone: m.Phone, CreatedAt: m.CreatedAt}
}

func toBuyerModel(b *domain.Buyer) *buyerModel {
	return &buyerModel{ID: b.ID, UserID: b.UserID, FullName: b.FullName, Phone: b.Phone, CreatedAt: b.CreatedAt}
}

func toDomainBuyer(m *buyerModel) *domain.Buyer {
	return &domain.Buyer{ID: m.ID, UserID: m.UserID, FullName: m.FullName, Phone: m.Phone, CreatedAt: m.CreatedAt}
}

func toListingModel(l *domain.Listing) *listingModel {
	return &listingModel{
		ID:               l.ID,
		SellerID:         l.SellerID,
		Title:            l.Title,
		Description:      l.Description,
		PracticeType:     l.PracticeType,
		Location:         l.Location,
		Postcode:         l.Postcode,
		Status:           string(l.Status),
		AskingPrice:      l.AskingPrice,
		PriceMasked:      l.PriceMasked,
		AdminNotes:       l.AdminNotes,
		PatientListSize:  l.PatientListSize,
		StaffCount:       l.StaffCount,
		YearsEstablished: l.YearsEstablished,
		PremisesType:     l.PremisesType,
		CQCRegistered:    l.CQCRegistered,
		NHSContract:      l.NHSContract,
		BusinessExtras:   datatypes.JSONMap(l.BusinessExtras),
		AnnualRevenue:    l.AnnualRevenue,
		AnnualProfit:     l.AnnualProfit,
		FinancialExtras:  datatypes.JSONMap(l.FinancialExtras),
		ViewCount:        l.ViewCount,
		ConnectionCount:  l.ConnectionCount,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
	}
}

func toDomainListing(m *listingModel) *domain.Listing {
	return &domain.Listing{
		ID:               m.ID,
		SellerID:         m.SellerID,
		Title:            m.Title,
		Description:      m.Description,
		PracticeType:     m.PracticeType,
		Location:         m.Location,
		Postcode:         m.Postcode,
		Status:           domain.ListingStatus(m.Status),
		AskingPrice:      m.AskingPrice,
		PriceMasked:      m.PriceMasked,
		AdminNotes:       m.AdminNotes,
		PatientListSize:  m.PatientListSize,
		StaffCount:       m.StaffCount,
		YearsEstablished: m.YearsEstablished,
		PremisesType:     m.PremisesType,
		CQCRegistered:    m.CQCRegistered,
		NHSContract:      m.NHSContract,
		BusinessExtras:   map[string]any(m.BusinessExtras),
		AnnualRevenue:    m.AnnualRevenue,
		AnnualProfit:     m.AnnualProfit,
		FinancialExtras:  map[string]any(m.FinancialExtras),
		ViewCount:        m.ViewCount,
		ConnectionCount:  m.ConnectionCount,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toPendingEditModel(e *domain.PendingEdit) *pendingEditModel {
	return &pendingEditModel{
		ID:             e.ID,
		ListingID:      e.ListingID,
		SellerID:       e.SellerID,
		Changes:        datatypes.JSONMap(e.Changes),
		Reason:         e.Reason,
		Status:         string(e.Status),
		ModerationNote: e.ModerationNote,
		ReviewedBy:     e.ReviewedBy,
		ReviewedAt:     e.ReviewedAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func toDomainPendingEdit(m *pendingEditModel) *domain.PendingEdit {
	return &domain.PendingEdit{
		ID:             m.ID,
		ListingID:      m.ListingID,
		SellerID:       m.SellerID,
		Changes:        map[string]any(m.Changes),
		Reason:         m.Reason,
		Status:         domain.EditStatus(m.Status),
		ModerationNote: m.ModerationNote,
		ReviewedBy:     m.ReviewedBy,
		ReviewedAt:     m.ReviewedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func toSavedModel(s *domain.SavedListing) *savedListingModel {
	return &savedListingModel{ID: s.ID, BuyerID: s.BuyerID, ListingID: s.ListingID, Note: s.Note, CreatedAt: s.CreatedAt}
}

func toDomainSaved(m *savedListingModel) *domain.SavedListing {
	return &domain.SavedListing{ID: m.ID, BuyerID: m.BuyerID, ListingID: m.ListingID, Note: m.Note, CreatedAt: m.CreatedAt}
}

func toViewModel(v *domain.ListingView) *listingViewModel {
	return &listingViewModel{
		ID: v.ID, ListingID: v.ListingID, ViewerID: v.ViewerID,
		IP: v.IP, Country: v.Country, City: v.City, CreatedAt: v.CreatedAt,
	}
}

func toDomainView(m *listingViewModel) *domain.ListingView {
	return &domain.ListingView{
		ID: m.ID, ListingID: m.ListingID, ViewerID: m.ViewerID,
		IP: m.IP, Country: m.Country, City: m.City, CreatedAt: m.CreatedAt,
	}
}

func toConnectionModel(c *domain.Connection) *connectionModel {
	return &connectionModel{
		ID: c.ID, ListingID: c.ListingID, BuyerID: c.BuyerID, SellerID: c.SellerID,
		Status: string(c.Status), Intro: c.Intro, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
}

func toDomainConnection(m *connectionModel) *domain.Connection {
	return &domain.Connection{
		ID: m.ID, ListingID: m.ListingID, BuyerID: m.BuyerID, SellerID: m.SellerID,
		Status: domain.ConnectionStatus(m.Status), Intro: m.Intro, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
	}
}

func toMessageModel(msg *domain.Message) *messageModel {
	return &messageModel{
		ID: msg.ID, ConnectionID: msg.ConnectionID, SenderUserID: msg.SenderUserID,
		Body: msg.Body, CreatedAt: msg.CreatedAt,
	}
}

func toDomainMessage(m *messageModel) *domain.Message {
	return &domain.Message{
		ID: m.ID, ConnectionID: m.ConnectionID, SenderUserID: m.SenderUserID,
		Body: m.Body, CreatedAt: m.CreatedAt,
	}
}

func toMediaModel(media *domain.ListingMedia) *listingMediaModel {
	return &listingMediaModel{
		ID: media.ID, ListingID: media.ListingID, ObjectKey: media.ObjectKey,
		URL: media.URL, FileName: media.FileName, Position: media.Position, CreatedAt: media.CreatedAt,
	}
}

func toDomainMedia(m *listingMediaModel) *domain.ListingMedia {
	return &domain.ListingMedia{
		ID: m.ID, ListingID: m.ListingID, ObjectKey: m.ObjectKey,
		URL: m.URL, FileName: m.FileName, Position: m.Position, CreatedAt: m.CreatedAt,
	}
}
