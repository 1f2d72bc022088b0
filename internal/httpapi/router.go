package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/wolfeidau/tenantd/internal/auth"
	"github.com/wolfeidau/tenantd/internal/logger"
	"github.com/wolfeidau/tenantd/internal/usecase"
)

// RouterDeps bundles everything NewRouter needs.
type RouterDeps struct {
	Service       *usecase.Service
	Authenticator auth.Authenticator
	CORSOrigins   []string
	Logger        zerolog.Logger
}

// NewRouter builds the full HTTP surface. Middleware order is CORS,
// request id, client ip, authentication, then request logging, so log
// entries carry the request id and resolved principal state.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           7200,
	})
	r.Use(corsMiddleware.Handler)
	r.Use(RequestID)
	r.Use(ClientIP)
	r.Use(Principal(deps.Authenticator))
	r.Use(logger.NewHTTPRequests(deps.Logger))

	r.Get("/health", health)

	api := NewAPI(deps.Service)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", api.createUser)
			r.Route("/me", func(r chi.Router) {
				r.Get("/", api.getSelf)
				r.Patch("/", api.updateSelf)
				r.Delete("/", api.deleteSelf)
				r.Get("/organizations", api.listSelfOrganizations)
			})
		})

		r.Route("/organizations", func(r chi.Router) {
			r.Post("/", api.createOrganization)

			r.Route("/{orgID}", func(r chi.Router) {
				r.Get("/", api.getOrganization)
				r.Patch("/", api.renameOrganization)
				r.Delete("/", api.deleteOrganization)
				r.Post("/archive", api.archiveOrganization)
				r.Post("/restore", api.restoreOrganization)
				r.Post("/transfer-ownership", api.transferOwnership)
				r.Post("/leave", api.leave)
				r.Post("/invitations/accept", api.acceptInvitation)

				r.Route("/members", func(r chi.Router) {
					r.Get("/", api.listMembers)
					r.Post("/", api.addMember)
					r.Patch("/{userID}", api.updateMemberRole)
					r.Delete("/{userID}", api.removeMember)
				})
			})
		})
	})

	return r
}
