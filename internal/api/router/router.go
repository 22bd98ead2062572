package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/hausservice-booking/internal/http/middleware"
	"github.com/wolfman30/hausservice-booking/internal/consent"
	"github.com/wolfman30/hausservice-booking/internal/leads"
	"github.com/wolfman30/hausservice-booking/internal/webcal"
	"github.com/wolfman30/hausservice-booking/pkg/logging"
)

// ReadinessCheck reports whether a dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	BookingHandler     *webcal.Handler
	LeadsHandler       *leads.Handler
	ConsentHandler     *consent.Handler
	LeadLimiter        *httpmiddleware.RateLimiter
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	ReadinessChecks    map[string]ReadinessCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", health)
		public.Get("/ready", readiness(cfg.ReadinessChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Handle("/static/*", webcal.StaticHandler())

		if cfg.BookingHandler != nil {
			public.Get("/", http.RedirectHandler("/booking", http.StatusFound).ServeHTTP)
			public.Route("/booking", func(r chi.Router) {
				r.Get("/", cfg.BookingHandler.ShowCalendar)
				r.Post("/date", cfg.BookingHandler.SelectDate)
				r.Post("/slot", cfg.BookingHandler.ToggleSlot)
				r.Post("/month", cfg.BookingHandler.NavigateMonth)
				r.Post("/confirm", cfg.BookingHandler.Confirm)
			})
			public.Get("/contact", cfg.BookingHandler.ShowContact)
		}

		if cfg.ConsentHandler != nil {
			public.Get("/consent", cfg.ConsentHandler.GetConsent)
			public.Post("/consent", cfg.ConsentHandler.SaveConsent)
		}

		if cfg.LeadsHandler != nil {
			public.Route("/leads", func(r chi.Router) {
				if cfg.LeadLimiter != nil {
					r.Use(httpmiddleware.RateLimit(cfg.LeadLimiter))
				}
				r.Post("/contact", cfg.LeadsHandler.CreateContactLead)
			})
		}
	})

	// Admin routes (protected by HMAC JWT)
	if cfg.AdminAuthSecret != "" && cfg.LeadsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/leads", cfg.LeadsHandler.ListLeads)
			admin.Get("/leads.ics", cfg.LeadsHandler.CalendarFeed)
		})
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readiness(checks map[string]ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		body := map[string]any{"status": "ok", "checks": results}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		writeJSON(w, status, body)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
