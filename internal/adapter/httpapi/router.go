package httpapi

import (
	"net/http"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/logger"
	"github.com/anshulag21/eaglehurst-platform-sub001/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterDeps bundles everything the HTTP surface needs. Role checks
// live in the usecases; the router only authenticates.
type RouterDeps struct {
	Listings    *ListingHandler
	Edits       *EditHandler
	Saved       *SavedHandler
	Connections *ConnectionHandler
	Media       *MediaHandler
	Profiles    *ProfileHandler

	JWTSecret   string
	ServiceName string
	Logger      *logger.Logger
	Metrics     *metrics.MetricsManager
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger(deps.Logger))
	r.Use(Tracing(deps.ServiceName))
	if deps.Metrics != nil {
		r.Use(Metrics(deps.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(v1 chi.Router) {
		// Public reads; a valid token upgrades the view, no token is fine.
		v1.Group(func(pub chi.Router) {
			pub.Use(OptionalJWTAuth(deps.JWTSecret, deps.Logger))

			pub.Get("/listings", deps.Listings.HandleBrowse)
			pub.Get("/listings/{id}", deps.Listings.HandleGet)
		})

		v1.Group(func(auth chi.Router) {
			auth.Use(JWTAuth(deps.JWTSecret, deps.Logger))

			auth.Post("/profiles/seller", deps.Profiles.HandleRegisterSeller)
			auth.Post("/profiles/buyer", deps.Profiles.HandleRegisterBuyer)

			auth.Post("/listings", deps.Listings.HandleCreate)
			auth.Patch("/listings/{id}", deps.Listings.HandleUpdate)
			auth.Delete("/listings/{id}", deps.Listings.HandleDelete)
			auth.Get("/listings/{id}/analytics", deps.Listings.HandleAnalytics)
			auth.Post("/listings/{id}/approve", deps.Listings.HandleApprove)
			auth.Post("/listings/{id}/reject", deps.Listings.HandleReject)

			auth.Get("/listings/{id}/pending-edit", deps.Edits.HandleGetPending)
			auth.Post("/listings/{id}/pending-edit/approve", deps.Edits.HandleApprove)
			auth.Post("/listings/{id}/pending-edit/reject", deps.Edits.HandleReject)

			auth.Post("/listings/{id}/media", deps.Media.HandleUpload)
			auth.Delete("/listings/{id}/media/{mediaID}", deps.Media.HandleRemove)

			auth.Post("/listings/{id}/save", deps.Saved.HandleSave)
			auth.Delete("/listings/{id}/save", deps.Saved.HandleUnsave)
			auth.Post("/listings/{id}/connections", deps.Connections.HandleRequest)

			auth.Get("/my/listings", deps.Listings.HandleMyListings)
			auth.Get("/my/saved", deps.Saved.HandleListSaved)
			auth.Get("/my/connections", deps.Connections.HandleListMine)

			auth.Get("/admin/pending-edits", deps.Edits.HandleQueue)

			auth.Post("/connections/{id}/approve", deps.Connections.HandleApprove)
			auth.Post("/connections/{id}/reject", deps.Connections.HandleReject)
			auth.Post("/connections/{id}/messages", deps.Connections.HandleSendMessage)
			auth.Get("/connections/{id}/messages", deps.Connections.HandleListMessages)
		})
	})

	return r
}
