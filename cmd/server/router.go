package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/annotune/annotune-api/internal/api"
	apimiddleware "github.com/annotune/annotune-api/internal/api/middleware"
)

// setupRouter wires middleware, handlers and routes. Mutating endpoints
// sit behind token authentication; listing and streaming endpoints stay
// public so the player UI works without a session.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.Trace)

	userHandler := api.NewUserHandler(app.userService, app.validate, app.logger)
	musicHandler := api.NewMusicHandler(app.musicService, app.validate, app.logger)
	taggingHandler := api.NewTaggingHandler(app.questionService, app.taskService, app.validate, app.logger)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.tokenService, app.userStore)

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", userHandler.Register)
		r.Post("/login", userHandler.Login)
		r.Get("/list", userHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/", userHandler.Current)
		})
	})

	r.Route("/music", func(r chi.Router) {
		r.Get("/", musicHandler.List)
		r.Get("/file", musicHandler.GetFile)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/", musicHandler.RegisterBatch)
			r.Delete("/", musicHandler.Delete)
		})
	})

	r.Route("/tagging", func(r chi.Router) {
		r.Get("/question/list", taggingHandler.QuestionList)
		r.Get("/task/list", taggingHandler.TaskList)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/question/operate", taggingHandler.QuestionOperate)
			r.Post("/tag", taggingHandler.Tag)
			r.Post("/task/operate", taggingHandler.TaskOperate)
			r.Get("/download", taggingHandler.Download)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
