package http

import (
	"log/slog"
	"net/http"

	"contactmanager/internal/adapters/view"
	"contactmanager/internal/delivery/http/controllers"
	"contactmanager/internal/delivery/http/middleware"

	_ "contactmanager/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

// APIOptions configures the cross-cutting middleware of the contacts API.
type APIOptions struct {
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter
}

// NewAPIRouter initializes the contacts REST API with request id, logging, CORS and rate limiting.
func NewAPIRouter(logger *slog.Logger, contactController *controllers.ContactController, opts APIOptions) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/contacts", contactController.ListContacts)
	mux.HandleFunc("GET /api/contacts/{$}", contactController.ListContacts)
	mux.HandleFunc("POST /api/contacts", contactController.CreateContact)
	mux.HandleFunc("POST /api/contacts/{$}", contactController.CreateContact)
	mux.HandleFunc("GET /api/contacts/{id}", contactController.GetContact)
	mux.HandleFunc("PUT /api/contacts/{id}", contactController.UpdateContact)
	mux.HandleFunc("DELETE /api/contacts/{id}", contactController.DeleteContact)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var h http.Handler = mux
	if opts.RateLimiter != nil {
		h = middleware.RateLimit(opts.RateLimiter, h)
	}
	h = middleware.CORS(opts.AllowedOrigins, h)
	h = middleware.LoggingMiddleware(logger, h)
	return middleware.RequestID(h)
}

// NewWebRouter initializes the server-rendered contacts UI.
func NewWebRouter(logger *slog.Logger, webController *controllers.WebController) http.Handler {
	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("GET /{$}", webController.Home)
	mux.HandleFunc("GET /contacts/new", webController.NewContact)
	mux.HandleFunc("GET /contacts/{id}/edit", webController.EditContact)

	// Regions
	mux.HandleFunc("GET /contacts", webController.ContactList)
	mux.HandleFunc("GET /tags", webController.TagSelector)
	mux.HandleFunc("GET /tags/checkboxes", webController.TagCheckboxes)

	// Forms
	mux.HandleFunc("POST /contacts", webController.CreateContact)
	mux.HandleFunc("POST /contacts/{id}", webController.UpdateContact)
	mux.HandleFunc("POST /contacts/{id}/delete", webController.DeleteContact)
	mux.HandleFunc("POST /tags", webController.CreateTag)
	mux.HandleFunc("POST /refresh", webController.Refresh)

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(view.StaticFS())))

	return middleware.RequestID(middleware.LoggingMiddleware(logger, mux))
}
