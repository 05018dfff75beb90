package router

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/handler"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/adapter/http/middleware"
	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups everything the router mounts. Media is optional.
type Handlers struct {
	Auth      *handler.AuthHandler
	Property  *handler.PropertyHandler
	Booking   *handler.BookingHandler
	Enquiry   *handler.EnquiryHandler
	Dashboard *handler.DashboardHandler
	Media     *handler.MediaHandler
}

// New builds the HTTP API. Every route runs behind JWTAuth; a request without
// a token reaches the handler as the anonymous actor and role checks happen
// in the usecases.
func New(h Handlers, tokens middleware.TokenParser, log *logger.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(log.Named("http")))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if h.Media != nil {
		r.Get("/media/*", h.Media.Get)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.JWTAuth(tokens))

		api.Post("/auth/register", h.Auth.RegisterSeller)
		api.Post("/auth/agents/register", h.Auth.RegisterAgent)
		api.Post("/auth/login", h.Auth.Login)

		api.Route("/properties", func(pr chi.Router) {
			pr.Post("/", h.Property.Submit)
			pr.Get("/", h.Property.ListLive)
			pr.Get("/mine", h.Property.ListMine)
			pr.Route("/{id}", func(p chi.Router) {
				p.Get("/", h.Property.Get)
				p.Post("/images", h.Property.UploadImage)
				p.Put("/pricing", h.Property.SetPricing)
				p.Post("/verify", h.Property.Verify)
				p.Post("/bookings", h.Booking.Reserve)
				p.Post("/bookings/cancel", h.Booking.Cancel)
				p.Post("/close", h.Booking.CloseSale)
				p.Post("/enquiries", h.Enquiry.Send)
			})
		})

		api.Get("/bookings", h.Booking.ListHeld)
		api.Post("/bookings/{id}/payments", h.Booking.SubmitPayment)
		api.Post("/payments/{id}/verify", h.Booking.VerifyPayment)

		api.Get("/seller/stats", h.Dashboard.SellerStats)
		api.Get("/agent/stats", h.Dashboard.AgentStats)
		api.Get("/agent/queue", h.Property.ListPending)
		api.Get("/agent/enquiries", h.Enquiry.ListForAgent)
		api.Post("/agents/{id}/feedback", h.Enquiry.Feedback)

		api.Get("/admin/agents", h.Auth.ListAgents)
		api.Post("/admin/agents", h.Auth.AddAgent)
		api.Post("/admin/agents/{id}/approve", h.Auth.ApproveAgent)
		api.Post("/admin/agents/{id}/reject", h.Auth.RejectAgent)
		api.Get("/admin/reports", h.Dashboard.AdminReport)
	})
	return r
}
