package web

import (
	"log"
	"net/http"

	"github.com/ibrahim99035/portfolio-server/internal/domain"
	"github.com/ibrahim99035/portfolio-server/internal/transport/web/mw"
	authv1 "github.com/ibrahim99035/portfolio-server/internal/transport/web/v1/auth"
	"github.com/ibrahim99035/portfolio-server/internal/transport/web/v1/health"
	"github.com/ibrahim99035/portfolio-server/internal/transport/web/v1/linkedin"
	resv1 "github.com/ibrahim99035/portfolio-server/internal/transport/web/v1/resource"
)

type routerDeps struct {
	logger   *log.Logger
	tokens   domain.TokenManager
	health   *health.Handler
	auth     *authv1.Handler
	linkedin *linkedin.Handler
	certs    *resv1.Handler
	images   *resv1.Handler
	journey  *resv1.Handler
	landing  *resv1.Handler
	odoo     *resv1.Handler
	projects *resv1.Handler
}

func newRouter(d routerDeps) http.Handler {
	mux := http.NewServeMux()
	ad := mw.AuthDeps{Tokens: d.tokens}

	opt := func(h http.HandlerFunc) http.Handler { return mw.OptionalAuth(ad, h) }
	adm := func(h http.HandlerFunc) http.Handler { return mw.RequireAuth(ad, h) }
	upload := func(h http.HandlerFunc) http.Handler {
		return mw.RequireAuth(ad, limitBody(64<<20, h)) // 64MB лимит
	}

	// health
	mux.HandleFunc("GET /v1/healthz", d.health.Liveness)
	mux.HandleFunc("GET /v1/readyz", d.health.Readiness)

	// auth
	mux.HandleFunc("POST /api/auth/login", d.auth.Login)
	mux.Handle("POST /api/auth/verify", adm(d.auth.Verify))
	mux.HandleFunc("POST /api/auth/logout", d.auth.Logout)

	// общий CRUD шести коллекций
	crud := func(slug string, h *resv1.Handler) {
		mux.Handle("GET /api/"+slug, opt(h.List))
		mux.Handle("GET /api/"+slug+"/{id}", opt(h.GetOne))
		mux.Handle("POST /api/"+slug, upload(h.Create))
		mux.Handle("PUT /api/"+slug+"/{id}", upload(h.Update))
		mux.Handle("DELETE /api/"+slug+"/{id}", adm(h.Delete))
	}
	crud("certificates", d.certs)
	crud("images", d.images)
	crud("journey", d.journey)
	crud("landing-pages", d.landing)
	crud("odoo", d.odoo)
	crud("personal-info", d.projects)

	// производные ручки; литеральные пути специфичнее {id} — матчер
	// ServeMux разрешает их первыми
	mux.Handle("GET /api/images/stations", opt(d.images.Distinct("station", "images:stations")))
	mux.Handle("PUT /api/journey/reorder", adm(d.journey.Reorder))
	mux.Handle("PUT /api/landing-pages/{id}/toggle-featured", adm(d.landing.ToggleFeatured))
	mux.Handle("GET /api/odoo/categories", opt(d.odoo.Distinct("category", "odoo:categories")))
	mux.Handle("GET /api/odoo/stats", opt(d.odoo.Stats))
	mux.Handle("PUT /api/odoo/{id}/clients", adm(d.odoo.Clients))
	mux.Handle("GET /api/personal-info/statuses", opt(d.projects.Distinct("status", "personal-info:statuses")))
	mux.Handle("PUT /api/personal-info/{id}/toggle-featured", adm(d.projects.ToggleFeatured))

	// linkedin: синглтон и вложенные массивы
	mux.Handle("GET /api/linkedin", opt(d.linkedin.Get))
	mux.Handle("POST /api/linkedin", adm(d.linkedin.Upsert))
	mux.Handle("PUT /api/linkedin/{id}", adm(d.linkedin.Update))
	mux.Handle("DELETE /api/linkedin/{id}", adm(d.linkedin.Delete))
	mux.Handle("POST /api/linkedin/{id}/experience", adm(d.linkedin.AddSub("experience")))
	mux.Handle("PUT /api/linkedin/{id}/experience/{expId}", adm(d.linkedin.UpdateSub("experience", "expId")))
	mux.Handle("DELETE /api/linkedin/{id}/experience/{expId}", adm(d.linkedin.DeleteSub("experience", "expId")))
	mux.Handle("POST /api/linkedin/{id}/education", adm(d.linkedin.AddSub("education")))
	mux.Handle("POST /api/linkedin/{id}/skills", adm(d.linkedin.AddSub("skills")))
	mux.Handle("POST /api/linkedin/{id}/certifications", adm(d.linkedin.AddSub("certifications")))

	// 🔗 middleware
	return mw.WithRequestID(mw.Logging(d.logger)(mux))
}

func limitBody(n int64, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h(w, r)
	}
}
