// Package api exposes the backend over HTTP.
package api

import (
	"net/http"
	"slices"

	"jobmatch-backend/internal/email"
	"jobmatch-backend/internal/inference"
	"jobmatch-backend/internal/messaging"
	"jobmatch-backend/internal/verification"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type BackendService struct {
	db        *gorm.DB
	engine    *inference.Engine
	publisher messaging.Publisher
	codes     *verification.Store
	mailer    email.Mailer

	platforms []string
	regions   []string
}

func NewBackendService(db *gorm.DB, engine *inference.Engine, publisher messaging.Publisher, codes *verification.Store, mailer email.Mailer, platforms, regions []string) *BackendService {
	return &BackendService{
		db:        db,
		engine:    engine,
		publisher: publisher,
		codes:     codes,
		mailer:    mailer,
		platforms: platforms,
		regions:   regions,
	}
}

func (s *BackendService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))

	r.Post("/match", RestHandler(s.Match))

	r.Route("/users", func(r chi.Router) {
		r.Post("/", RestHandler(s.GetOrCreateUser))
		r.Put("/{user_id}/cv", RestHandler(s.AttachCv))
		r.Route("/{user_id}/liked-posts", func(r chi.Router) {
			r.Get("/", RestHandler(s.GetLikedPosts))
			r.Post("/", RestHandler(s.AddLikedPost))
			r.Delete("/{post_id}", RestHandler(s.RemoveLikedPost))
		})
		r.Get("/{user_id}/predictions", RestHandler(s.GetPredictions))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/request-code", RestHandler(s.RequestCode))
		r.Post("/verify-code", RestHandler(s.VerifyCode))
	})

	r.Route("/train", func(r chi.Router) {
		r.Post("/", RestHandler(s.SubmitTrainingJob))
		r.Get("/{run_id}", RestHandler(s.GetTrainingRun))
	})
}

func (s *BackendService) knownPlatform(platform string) bool {
	return slices.Contains(s.platforms, platform)
}

func (s *BackendService) knownRegion(region string) bool {
	return slices.Contains(s.regions, region)
}
