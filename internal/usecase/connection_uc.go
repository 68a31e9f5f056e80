package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ConnectionUsecase runs the buyer-seller connection lifecycle and the
// message threads behind approved connections.
type ConnectionUsecase struct {
	store     domain.UnitOfWork
	cache     domain.ListingCache
	publisher domain.EventPublisher
	logger    *logger.Logger
	tracer    trace.Tracer
}

func NewConnectionUsecase(store domain.UnitOfWork, cache domain.ListingCache, publisher domain.EventPublisher, log *logger.Logger) *ConnectionUsecase {
	return &ConnectionUsecase{
		store:     store,
		cache:     cache,
		publisher: publisher,
		logger:    log.Named("ConnectionUsecase"),
		tracer:    otel.Tracer("usecase/connection"),
	}
}

// Request opens (or re-opens) the buyer's connection to a listing's
// seller. One connection exists per buyer and listing: repeat requests
// return the existing one, a rejected one is reopened with the new intro.
func (uc *ConnectionUsecase) Request(ctx context.Context, actor domain.Actor, listingID, intro string) (*domain.Connection, error) {
	ctx, span := uc.tracer.Start(ctx, "Request")
	defer span.End()

	buyer, err := uc.resolveBuyer(ctx, actor)
	if err != nil {
		return nil, err
	}

	listing, err := uc.store.Listings().FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsPublished() {
		return nil, fmt.Errorf("%w: listing %s", domain.ErrNotFound, listingID)
	}

	var (
		conn      *domain.Connection
		requested bool
	)
	err = uc.store.Within(ctx, func(r domain.Repositories) error {
		existing, err := r.Connections().FindByBuyerAndListing(ctx, buyer.ID, listingID)
		switch {
		case err == nil:
			if existing.Status == domain.ConnectionRejected {
				existing.Reopen(intro)
				if err := r.Connections().Update(ctx, existing); err != nil {
					return fmt.Errorf("%w: failed to reopen connection: %v", domain.ErrRepository, err)
				}
				requested = true
			}
			conn = existing
			return nil
		case errors.Is(err, domain.ErrNotFound):
			conn, err = domain.NewConnection(listingID, buyer.ID, listing.SellerID, intro)
			if err != nil {
				return err
			}
			if err := r.Connections().Create(ctx, conn); err != nil {
				return fmt.Errorf("%w: failed to create connection: %v", domain.ErrRepository, err)
			}
			requested = true
			return nil
		default:
			return fmt.Errorf("%w: failed to load connection: %v", domain.ErrRepository, err)
		}
	})
	if err != nil {
		uc.logger.Error("failed to request connection", zap.String("listing_id", listingID), zap.Error(err))
		return nil, err
	}

	if requested {
		uc.logger.Info("connection requested",
			zap.String("connection_id", conn.ID), zap.String("listing_id", listingID))
		uc.publish(ctx, SubjectConnectionRequested, ConnectionEvent{
			ConnectionID: conn.ID, ListingID: listingID, BuyerID: buyer.ID,
			SellerID: conn.SellerID, Status: string(conn.Status), OccurredAt: time.Now().UTC(),
		})
	}
	return conn, nil
}

// Approve accepts a pending connection. The listing's seller (or an
// admin) decides; approval bumps the listing's connection counter.
func (uc *ConnectionUsecase) Approve(ctx context.Context, actor domain.Actor, connectionID string) (*domain.Connection, error) {
	return uc.decide(ctx, actor, connectionID, domain.ConnectionApproved)
}

// Reject declines a pending connection.
func (uc *ConnectionUsecase) Reject(ctx context.Context, actor domain.Actor, connectionID string) (*domain.Connection, error) {
	return uc.decide(ctx, actor, connectionID, domain.ConnectionRejected)
}

func (uc *ConnectionUsecase) decide(ctx context.Context, actor domain.Actor, connectionID string, status domain.ConnectionStatus) (*domain.Connection, error) {
	ctx, span := uc.tracer.Start(ctx, "Decide")
	defer span.End()

	var conn *domain.Connection
	err := uc.store.Within(ctx, func(r domain.Repositories) error {
		var err error
		conn, err = r.Connections().FindByID(ctx, connectionID)
		if err != nil {
			return err
		}
		if err := uc.authorizeDecision(ctx, actor, conn); err != nil {
			return err
		}
		if err := conn.Decide(status); err != nil {
			return err
		}
		if err := r.Connections().Update(ctx, conn); err != nil {
			return fmt.Errorf("%w: failed to update connection: %v", domain.ErrRepository, err)
		}
		if status == domain.ConnectionApproved {
			if err := r.Listings().IncrementConnectionCount(ctx, conn.ListingID); err != nil {
				return fmt.Errorf("%w: failed to increment connection count: %v", domain.ErrRepository, err)
			}
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("failed to decide connection",
			zap.String("connection_id", connectionID), zap.String("decision", string(status)), zap.Error(err))
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.DeleteListing(ctx, conn.ListingID); err != nil {
			uc.logger.Warn("listing cache invalidation failed", zap.String("listing_id", conn.ListingID), zap.Error(err))
		}
	}

	subject := SubjectConnectionApproved
	if status == domain.ConnectionRejected {
		subject = SubjectConnectionRejected
	}
	uc.logger.Info("connection decided",
		zap.String("connection_id", conn.ID), zap.String("status", string(conn.Status)))
	uc.publish(ctx, subject, ConnectionEvent{
		ConnectionID: conn.ID, ListingID: conn.ListingID, BuyerID: conn.BuyerID,
		SellerID: conn.SellerID, Status: string(conn.Status), OccurredAt: time.Now().UTC(),
	})
	return conn, nil
}

// ConnectionView is a connection row for list endpoints.
type ConnectionView struct {
	ID           string    `json:"id"`
	ListingID    string    `json:"listing_id"`
	ListingTitle string    `json:"listing_title,omitempty"`
	BuyerID      string    `json:"buyer_id"`
	SellerID     string    `json:"seller_id"`
	Status       string    `json:"status"`
	Intro        string    `json:"intro,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListMine pages the caller's connections: buyers see their requests,
// sellers see requests on their listings, admins see everything.
func (uc *ConnectionUsecase) ListMine(ctx context.Context, actor domain.Actor, page, perPage int) ([]ConnectionView, domain.Pagination, error) {
	ctx, span := uc.tracer.Start(ctx, "ListMine")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > domain.MaxPerPage {
		perPage = domain.DefaultPerPage
	}

	var (
		conns []*domain.Connection
		total int64
		err   error
	)
	switch {
	case actor.IsAdmin():
		conns, total, err = uc.store.Connections().List(ctx, page, perPage)
	case actor.IsBuyer():
		var buyer *domain.Buyer
		buyer, err = uc.resolveBuyer(ctx, actor)
		if err != nil {
			return nil, domain.Pagination{}, err
		}
		conns, total, err = uc.store.Connections().ListByBuyer(ctx, buyer.ID, page, perPage)
	case actor.IsSeller():
		var seller *domain.Seller
		seller, err = uc.resolveSeller(ctx, actor)
		if err != nil {
			return nil, domain.Pagination{}, err
		}
		conns, total, err = uc.store.Connections().ListBySeller(ctx, seller.ID, page, perPage)
	default:
		return nil, domain.Pagination{}, fmt.Errorf("%w: connections require an account", domain.ErrForbidden)
	}
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("%w: failed to list connections: %v", domain.ErrRepository, err)
	}

	ids := make([]string, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.ListingID)
	}
	titles := map[string]string{}
	if len(ids) > 0 {
		listings, err := uc.store.Listings().FindByIDs(ctx, ids)
		if err != nil {
			return nil, domain.Pagination{}, fmt.Errorf("%w: failed to load listings: %v", domain.ErrRepository, err)
		}
		for _, l := range listings {
			titles[l.ID] = l.Title
		}
	}

	views := make([]ConnectionView, 0, len(conns))
	for _, c := range conns {
		views = append(views, ConnectionView{
			ID:           c.ID,
			ListingID:    c.ListingID,
			ListingTitle: titles[c.ListingID],
			BuyerID:      c.BuyerID,
			SellerID:     c.SellerID,
			Status:       string(c.Status),
			Intro:        c.Intro,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		})
	}
	return views, domain.NewPagination(page, perPage, total), nil
}

// SendMessage appends to an approved connection's thread. Only the two
// participants may write.
func (uc *ConnectionUsecase) SendMessage(ctx context.Context, actor domain.Actor, connectionID, body string) (*domain.Message, error) {
	ctx, span := uc.tracer.Start(ctx, "SendMessage")
	defer span.End()

	conn, err := uc.store.Connections().FindByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	participant, err := uc.isParticipant(ctx, actor, conn)
	if err != nil {
		return nil, err
	}
	if !participant {
		return nil, fmt.Errorf("%w: only connection participants can send messages", domain.ErrForbidden)
	}
	if conn.Status != domain.ConnectionApproved {
		return nil, fmt.Errorf("%w: connection is not approved", domain.ErrConflict)
	}

	msg, err := domain.NewMessage(connectionID, actor.UserID, body)
	if err != nil {
		return nil, err
	}
	err = uc.store.Within(ctx, func(r domain.Repositories) error {
		if err := r.Messages().Create(ctx, msg); err != nil {
			return fmt.Errorf("%w: failed to create message: %v", domain.ErrRepository, err)
		}
		return nil
	})
	if err != nil {
		uc.logger.Error("failed to send message", zap.String("connection_id", connectionID), zap.Error(err))
		return nil, err
	}

	uc.publish(ctx, SubjectConnectionMessage, ConnectionEvent{
		ConnectionID: conn.ID, ListingID: conn.ListingID, BuyerID: conn.BuyerID,
		SellerID: conn.SellerID, Status: string(conn.Status), OccurredAt: time.Now().UTC(),
	})
	return msg, nil
}

// MessageView is one thread entry.
type MessageView struct {
	ID           string    `json:"id"`
	ConnectionID string    `json:"connection_id"`
	SenderUserID string    `json:"sender_user_id"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListMessages pages a thread oldest-first for its participants; admins
// may read for moderation.
func (uc *ConnectionUsecase) ListMessages(ctx context.Context, actor domain.Actor, connectionID string, page, perPage int) ([]MessageView, domain.Pagination, error) {
	ctx, span := uc.tracer.Start(ctx, "ListMessages")
	defer span.End()

	conn, err := uc.store.Connections().FindByID(ctx, connectionID)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	participant, err := uc.isParticipant(ctx, actor, conn)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	if !participant && !actor.IsAdmin() {
		return nil, domain.Pagination{}, fmt.Errorf("%w: only connection participants can read messages", domain.ErrForbidden)
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > domain.MaxPerPage {
		perPage = domain.DefaultPerPage
	}

	msgs, total, err := uc.store.Messages().ListByConnection(ctx, connectionID, page, perPage)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("%w: failed to list messages: %v", domain.ErrRepository, err)
	}

	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, MessageView{
			ID:           m.ID,
			ConnectionID: m.ConnectionID,
			SenderUserID: m.SenderUserID,
			Body:         m.Body,
			CreatedAt:    m.CreatedAt,
		})
	}
	return views, domain.NewPagination(page, perPage, total), nil
}

func (uc *ConnectionUsecase) authorizeDecision(ctx context.Context, actor domain.Actor, conn *domain.Connection) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.IsSeller() {
		seller, err := uc.store.Sellers().FindByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: only the listing's seller can decide", domain.ErrForbidden)
			}
			return fmt.Errorf("%w: failed to resolve seller profile: %v", domain.ErrRepository, err)
		}
		if seller.ID == conn.SellerID {
			return nil
		}
	}
	return fmt.Errorf("%w: only the listing's seller can decide", domain.ErrForbidden)
}

func (uc *ConnectionUsecase) isParticipant(ctx context.Context, actor domain.Actor, conn *domain.Connection) (bool, error) {
	if actor.IsAnonymous() {
		return false, nil
	}
	buyer, err := uc.store.Buyers().FindByID(ctx, conn.BuyerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("%w: failed to resolve buyer: %v", domain.ErrRepository, err)
	}
	if buyer != nil && buyer.UserID == actor.UserID {
		return true, nil
	}
	seller, err := uc.store.Sellers().FindByID(ctx, conn.SellerID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("%w: failed to resolve seller: %v", domain.ErrRepository, err)
	}
	if seller != nil && seller.UserID == actor.UserID {
		return true, nil
	}
	return false, nil
}

func (uc *ConnectionUsecase) resolveBuyer(ctx context.Context, actor domain.Actor) (*domain.Buyer, error) {
	if !actor.IsBuyer() {
		return nil, fmt.Errorf("%w: buyer role required", domain.ErrForbidden)
	}
	buyer, err := uc.store.Buyers().FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: buyer profile not found", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to resolve buyer profile: %v", domain.ErrRepository, err)
	}
	return buyer, nil
}

func (uc *ConnectionUsecase) resolveSeller(ctx context.Context, actor domain.Actor) (*domain.Seller, error) {
	seller, err := uc.store.Sellers().FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: seller profile not found", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: failed to resolve seller profile: %v", domain.ErrRepository, err)
	}
	return seller, nil
}

func (uc *ConnectionUsecase) publish(ctx context.Context, subject string, event any) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, subject, event); err != nil {
		uc.logger.Warn("failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}
