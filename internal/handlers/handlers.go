package handlers

import (
	"Bookshelf/internal/config"
	"Bookshelf/internal/middleware"
	"Bookshelf/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const booksPath = "/books"

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	bookService *service.BookService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, logger, config)
	bookHandler := NewBookHandler(bookService, logger, config)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/test", userHandler.Status)
	r.Get(config.LoginPath(), userHandler.LoginPage)

	// Book routes, только для аутентифицированных
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(config.LoginPath()))

		r.Route(booksPath, func(r chi.Router) {
			r.Get("/", bookHandler.Index)
			r.Post("/", bookHandler.Store)
			r.Get("/{id}/edit", bookHandler.Edit)
			r.Get("/{id}/file", bookHandler.File)
			r.Patch("/{id}", bookHandler.Update)
			r.Put("/{id}", bookHandler.Update)
			r.Delete("/{id}", bookHandler.Destroy)
		})

		r.Get("/api/admin/books", bookHandler.AdminIndex)
	})

	return &Handler{Router: r}
}
