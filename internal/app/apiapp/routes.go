package apiapp

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	authsvc "github.com/pkazlouski/devfolio/backend/internal/services/auth"
	ghstatssvc "github.com/pkazlouski/devfolio/backend/internal/services/ghstats"
	languagessvc "github.com/pkazlouski/devfolio/backend/internal/services/languages"
	mediasvc "github.com/pkazlouski/devfolio/backend/internal/services/media"
	skillssvc "github.com/pkazlouski/devfolio/backend/internal/services/skills"
	threadssvc "github.com/pkazlouski/devfolio/backend/internal/services/threads"
	"github.com/pkazlouski/devfolio/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService     *authsvc.Service
	ThreadService   *threadssvc.Service
	LanguageService *languagessvc.Service
	SkillService    *skillssvc.Service
	MediaService    *mediasvc.Service
	MediaResolver   *mediasvc.Resolver
	GitHubService   *ghstatssvc.Service
	Logger          *zap.Logger
}

// RegisterRoutes keeps reads public; anything that writes goes through the
// admin auth middleware.
func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	threadHandler := handlers.NewThreadHandler(deps.ThreadService)
	commentHandler := handlers.NewCommentHandler(deps.ThreadService)
	languageHandler := handlers.NewLanguageHandler(deps.LanguageService)
	skillHandler := handlers.NewSkillHandler(deps.SkillService)
	mediaHandler := handlers.NewMediaHandler(deps.MediaService, deps.MediaResolver)
	githubHandler := handlers.NewGitHubHandler(deps.GitHubService)

	adminMW := AdminAuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login)
		r.With(adminMW).Post("/logout", authHandler.Logout)
	})

	r.Route("/threads", func(r chi.Router) {
		r.Get("/", threadHandler.List)
		r.Get("/{id}", threadHandler.Detail)
		r.With(adminMW).Post("/", threadHandler.Create)
		r.With(adminMW).Patch("/{id}", threadHandler.Update)
		r.With(adminMW).Delete("/{id}", threadHandler.Delete)

		r.Get("/{id}/media", mediaHandler.ListByThread)
		r.Post("/{id}/comments", commentHandler.Create)
	})
	r.With(adminMW).Delete("/comments/{id}", commentHandler.Delete)

	r.Route("/languages", func(r chi.Router) {
		r.Get("/", languageHandler.List)
		r.With(adminMW).Post("/", languageHandler.Create)
		r.With(adminMW).Delete("/{id}", languageHandler.Delete)
	})

	r.Route("/skill-categories", func(r chi.Router) {
		r.Get("/", skillHandler.ListCategories)
		r.With(adminMW).Post("/", skillHandler.CreateCategory)
		r.With(adminMW).Delete("/{id}", skillHandler.DeleteCategory)
	})

	r.Route("/skills", func(r chi.Router) {
		r.Get("/", skillHandler.ListSkills)
		r.With(adminMW).Post("/", skillHandler.CreateSkill)
		r.With(adminMW).Delete("/{id}", skillHandler.DeleteSkill)
	})

	r.Route("/media", func(r chi.Router) {
		r.Get("/url", mediaHandler.ResolveURL)
		r.Get("/{id}", mediaHandler.Get)
		r.With(adminMW).Post("/", mediaHandler.Upload)
		r.With(adminMW).Patch("/{id}", mediaHandler.Update)
		r.With(adminMW).Delete("/{id}", mediaHandler.Delete)
	})

	r.Get("/github/stats", githubHandler.Stats)
}
