package handlers

import (
	"time"

	"github.com/jmoiron/sqlx"

	"picklist/internal/config"
	"picklist/internal/repos"
	"picklist/internal/services"
	"picklist/internal/store"
)

type Deps struct {
	AuthHandler   *AuthHandler
	ListHandler   *ListHandler
	ImportHandler *ImportHandler
	StatsHandler  *StatsHandler

	Auth *services.AuthService
}

func NewDeps(db *sqlx.DB, cfg config.Config, rec services.Recognizer) *Deps {
	listRepo := repos.NewListRepo(db)
	timerRepo := repos.NewTimerRepo(db)
	userRepo := repos.NewUserRepo(db)

	local := store.NewLocal(listRepo)
	authSvc := &services.AuthService{Users: userRepo, Secret: cfg.JWTSecret}
	lifeSvc := services.NewLifecycleService(local, timerRepo, rec)
	if cfg.FlushSeconds > 0 {
		lifeSvc.FlushInterval = time.Duration(cfg.FlushSeconds) * time.Second
	}
	statsSvc := services.NewStatsService(local, local)

	return &Deps{
		AuthHandler:   &AuthHandler{Auth: authSvc},
		ListHandler:   &ListHandler{Lists: local, Life: lifeSvc},
		ImportHandler: &ImportHandler{Life: lifeSvc},
		StatsHandler:  &StatsHandler{Stats: statsSvc},
		Auth:          authSvc,
	}
}
