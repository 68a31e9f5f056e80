package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_CreatesOnePendingConnection(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	pub := &fakePublisher{}
	seller := seedSeller(store, "user-1", "Leeds Dental")
	buyer := seedBuyer(store, "user-2", "Avery Quinn")
	listing := seedListing(store, seller.ID, domain.StatusPublished)
	uc := NewConnectionUsecase(store, nil, pub, testLogger())

	conn, err := uc.Request(ctx, buyerActor(buyer), listing.ID, "I run two practices nearby")

	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionPending, conn.Status)
	assert.Equal(t, buyer.ID, conn.BuyerID)
	assert.Equal(t, seller.ID, conn.SellerID)
	assert.Equal(t, "I run two practices nearby", conn.Intro)
	assert.Equal(t, []string{SubjectConnectionRequested}, pub.subjects())

	// Asking again hands back the same connection without a new event.
	again, err := uc.Request(ctx, buyerActor(buyer), listing.ID, "different intro")
	require.NoError(t, err)
	assert.Equal(t, conn.ID, again.ID)
	assert.Equal(t, "I run two practices nearby", again.Intro, "a live request keeps its intro")
	assert.Len(t, store.conns, 1)
	assert.Len(t, pub.events, 1)
}

func TestRequest_ReopensRejectedConnection(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	pub := &fakePublisher{}
	seller := seedSeller(store, "user-1", "Leeds Dental")
	buyer := seedBuyer(store, "user-2", "Avery Quinn")
	listing := seedListing(store, seller.ID, domain.StatusPublished)
	rejected := seedConnection(store, listing, buyer.ID, domain.ConnectionRejected)
	uc := NewConnectionUsecase(store, nil, pub, testLogger())

	conn, err := uc.Request(ctx, buyerActor(buyer), listing.ID, "second attempt")

	require.NoError(t, err)
	assert.Equal(t, rejected.ID, conn.ID, "reopening keeps the connection's identity")
	assert.Equal(t, domain.ConnectionPending, conn.Status)
	assert.Equal(t, "second attempt", conn.Intro)
	assert.Equal(t, []string{SubjectConnectionRequested}, pub.subjects())
}

func TestRequest_Guards(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seller := seedSeller(store, "user-1", "Leeds Dental")
	buyer := seedBuyer(store, "user-2", "Avery Quinn")
	draft := seedListing(store, seller.ID, domain.StatusDraft)
	published := seedListing(store, seller.ID, domain.StatusPublished)
	uc := NewConnectionUsecase(store, nil, nil, testLogger())

	_, err := uc.Request(ctx, sellerActor(seller), published.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden, "sellers cannot request connections")

	_, err = uc.Request(ctx, domain.Actor{UserID: "user-9", Role: domain.RoleBuyer}, published.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound, "buyer role without a profile")

	_, err = uc.Request(ctx, buyerActor(buyer), draft.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound, "unpublished listings cannot be requested")

	_, err = uc.Request(ctx, buyerActor(buyer), "no-such-listing", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDecide_ApproveBumpsConnectionCount(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	pub := &fakePublisher{}
	cache := newFakeCache()
	seller := seedSeller(store, "user-1", "Leeds Dental")
	buyer := seedBuyer(store, "user-2", "Avery Quinn")
	listing := seedListing(store, seller.ID, domain.StatusPublished)
	conn := seedConnection(store, listing, buyer.ID, domain.ConnectionPending)
	uc := NewConnectionUsecase(store, cache, pub, testLogger())

	decided, err := uc.Approve(ctx, sellerActor(seller), conn.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionApproved, decided.Status)
	assert.Equal(t, int64(1), store.listings[listing.ID].ConnectionCount)
	assert.Contains(t, cache.deletes, listing.ID)
	assert.Equal(t, []string{SubjectConnectionApproved}, pub.subjects())

	// A decided connection cannot be decided again.
	_, err = uc.Reject(ctx, sellerActor(seller), conn.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, int64(1), store.listings[listing.ID].ConnectionCount)
}

func TestDecide_RejectLeavesCountAlone(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	pub := &fakePublisher{}
	seller := seedSeller(store, "user-1", "Leeds Dental")
	buyer := seedBuyer(store, "user-2", "Avery Quinn")
	listing := seedListing(store, seller.ID, domain.StatusPublished)
	conn := seedConnection(store, listing, buyer.ID, domain.ConnectionPending)
	uc := NewConnectionUsecase(store, nil, pub, testLogger())

	decided, err := uc.Reject(ctx, sellerActor(seller), conn.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionRejected, decided.Status)
	assert.Zero(t, store.listings[listing.ID].ConnectionCount)
	assert.Equal(t, []string{SubjectConnectionRejected}, pub.subjects())
}

func TestDecide_Authorization(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seller := seedSeller(store, "user-1", "Leeds Dental")
	other := seedSeller(store, "user-2", "York Dental")
	buyer := seedBuyer(store, "user-3", "Avery Quinn")
	listing := seedListing(store, seller.ID, domain.StatusPublished)
	uc := NewConnectionUsecase(store, nil, nil, testLogger())

	conn := seedConnection(store, listing, buyer.ID, domain.ConnectionPending)
	_, err := uc.Approve(ctx, sellerActor(other), conn.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "another seller cannot decide")

	_, err = uc.Approve(ctx, buyerActor(buyer), conn.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden, "the buyer cannot approve their own request")

	_, err = uc.Approve(ctx, adminActor(), conn.ID)
	assert.NoError(t, err, "admins may decide on the seller's behalf")

	_, err = uc.Approve(ctx, adminActor(), "no-such-connection")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSendMessage_ParticipantsOnApprovedThread(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	pub := &fakePublisher{}
	seller := seedSeller(store, "user-1", "Leeds Dental")
	buyer := seedBuyer(store, "user-2", "Avery Quinn")
	stranger := seedBuyer(store, "user-3", "Morgan Lee")
	listing := seedListing(store, seller.ID, domain.StatusPublished)
	conn := seedConnection(store, listing, buyer.ID, domain.ConnectionApproved)
	uc := NewConnectionUsecase(store, nil, pub, testLogger())

	msg, err := uc.SendMessage(ctx, buyerActor(buyer), conn.ID, "  Is the lease assignable?  ")
	require.NoError(t, err)
	assert.Equal(t, "Is the lease assignable?", msg.Body)
	assert.Equal(t, buyer.UserID, msg.SenderUserID)

	_, err = uc.SendMessage(ctx, sellerActor(seller), conn.ID, "Yes, twelve years remaining.")
	require.NoError(t, err)
	assert.Len(t, store.messages, 2)
	assert.Equal(t, []string{SubjectConnectionMessage, SubjectConnectionMessage}, pub.subjects())

	_, err = uc.SendMessage(ctx, buyerActor(stranger), conn.ID, "hello")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.SendMessage(ctx, adminActor(), conn.ID, "hello")
	assert.ErrorIs(t, err, domain.ErrForbidden, "admins read threads, they do not write")
}

func TestSendMessage_Validation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seller := seedSeller(store, "user-1", "Leeds Dental")
	buyer := seedBuyer(store, "user-2", "Avery Quinn")
	listing := seedListing(store, seller.ID, domain.StatusPublished)
	approved := seedConnection(store, listing, buyer.ID, domain.ConnectionApproved)
	pending := seedConnection(store, seedListing(store, seller.ID, domain.StatusPublished), buyer.ID, domain.ConnectionPending)
	uc := NewConnectionUsecase(store, nil, nil, testLogger())

	_, err := uc.SendMessage(ctx, buyerActor(buyer), pending.ID, "hello")
	assert.ErrorIs(t, err, domain.ErrConflict, "no messages before approval")

	_, err = uc.SendMessage(ctx, buyerActor(buyer), approved.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.SendMessage(ctx, buyerActor(buyer), approved.ID, strings.Repeat("a", 2001))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, store.messages)
}

func TestListMessages_OldestFirstForParticipantsAndAdmins(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	seller := seedSeller(store, "user-1", "Leeds Dental")
	buyer := seedBuyer(store, "user-2", "Avery Quinn")
	stranger := seedBuyer(store, "user-3", "Morgan Lee")
	listing := seedListing(store, seller.ID, domain.StatusPublished)
	conn := seedConnection(store, listing, buyer.ID, domain.ConnectionApproved)
	uc := NewConnectionUsecase(store, nil, nil, testLogger())

	for i, body := range []string{"first", "second", "third"} {
		msg, err := domain.NewMessage(conn.ID, buyer.UserID, body)
		require.NoError(t, err)
		msg.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		store.messages = append(store.messages, msg)
	}

	views, page, err := uc.ListMessages(ctx, sellerActor(seller), conn.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "first", views[0].Body)
	assert.Equal(t, "second", views[1].Body)
	assert.Equal(t, int64(3), page.TotalItems)
	assert.True(t, page.HasNext)

	_, _, err = uc.ListMessages(ctx, adminActor(), conn.ID, 1, 20)
	assert.NoError(t, err)

	_, _, err = uc.ListMessages(ctx, buyerActor(stranger), conn.ID, 1, 20)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListMine_ScopesByRole(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	sellerA := seedSeller(store, "user-1", "Leeds Dental")
	sellerB := seedSeller(store, "user-2", "York Dental")
	buyerA := seedBuyer(store, "user-3", "Avery Quinn")
	buyerB := seedBuyer(store, "user-4", "Morgan Lee")
	listingA := seedListing(store, sellerA.ID, domain.StatusPublished)
	listingB := seedListing(store, sellerB.ID, domain.StatusPublished)
	listingB.Title = "Orthodontic practice in York"

	older := seedConnection(store, listingA, buyerA.ID, domain.ConnectionApproved)
	older.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	newer := seedConnection(store, listingB, buyerA.ID, domain.ConnectionPending)
	seedConnection(store, listingA, buyerB.ID, domain.ConnectionPending)

	uc := NewConnectionUsecase(store, nil, nil, testLogger())

	t.Run("buyer sees own requests newest first", func(t *testing.T) {
		views, page, err := uc.ListMine(ctx, buyerActor(buyerA), 1, 20)
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, newer.ID, views[0].ID)
		assert.Equal(t, "Orthodontic practice in York", views[0].ListingTitle)
		assert.Equal(t, older.ID, views[1].ID)
		assert.Equal(t, int64(2), page.TotalItems)
	})

	t.Run("seller sees requests on own listings", func(t *testing.T) {
		views, _, err := uc.ListMine(ctx, sellerActor(sellerA), 1, 20)
		require.NoError(t, err)
		require.Len(t, views, 2)
		for _, v := range views {
			assert.Equal(t, listingA.ID, v.ListingID)
		}
	})

	t.Run("admin sees everything", func(t *testing.T) {
		views, _, err := uc.ListMine(ctx, adminActor(), 1, 20)
		require.NoError(t, err)
		assert.Len(t, views, 3)
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		_, _, err := uc.ListMine(ctx, domain.Actor{}, 1, 20)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}
