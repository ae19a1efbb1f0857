package http

import (
	"net/http"

	"medsync/internal/assistant"
	"medsync/internal/auth"
	"medsync/internal/config"
	"medsync/internal/extract"
	"medsync/internal/gemini"
	"medsync/internal/http/handler"
	mw "medsync/internal/http/middleware"
	"medsync/internal/meds"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, sessions *meds.Manager, ai *gemini.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc, Sessions: sessions}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)
	r.With(auth.RequireAuth(jwtSvc)).Post("/auth/logout", ah.Logout)

	me := &handler.MeHandler{DB: db}
	r.With(auth.RequireAuth(jwtSvc)).Get("/me", me.Me)

	medH := &handler.MedicationHandler{Sessions: sessions}
	r.Route("/medications", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/", medH.List)
		r.Post("/", medH.Create)
		r.Put("/{id}", medH.Update)
		r.Delete("/{id}", medH.Delete)
		r.Post("/{id}/refill", medH.Refill)
	})

	schedH := &handler.ScheduleHandler{Sessions: sessions}
	r.Route("/schedule", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/", schedH.List)
		r.Post("/{id}/status", schedH.MarkDose)
	})

	dashH := &handler.DashboardHandler{Sessions: sessions}
	r.With(auth.RequireAuth(jwtSvc)).Get("/dashboard", dashH.Stats)

	extH := &handler.ExtractHandler{Adapter: &extract.Adapter{Client: ai}}
	r.Route("/extract", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/image", extH.Image)
		r.Post("/text", extH.Text)
	})

	asstH := &handler.AssistantHandler{Assistant: &assistant.Assistant{Client: ai}, Sessions: sessions}
	r.Route("/assistant", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/chat", asstH.Chat)
		r.Get("/history", asstH.History)
	})

	return r
}
