// Package app wires the application together by hand: config, database,
// repositories, usecases, HTTP handler and server.
package app

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/lexloop/lexloop/internal/adapter/httpapi"
	adapterrepo "github.com/lexloop/lexloop/internal/adapter/repository"
	"github.com/lexloop/lexloop/internal/infrastructure/config"
	"github.com/lexloop/lexloop/internal/infrastructure/database"
	"github.com/lexloop/lexloop/internal/infrastructure/server"
	"github.com/lexloop/lexloop/internal/usecase"
)

// Container aggregates the application dependencies.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	DB     *sqlx.DB
	Server *server.Server
}

// Initialize builds the full dependency graph. The returned cleanup closes
// the database.
func Initialize() (*Container, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := server.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}

	db, cleanup, err := database.NewConnection(cfg)
	if err != nil {
		return nil, nil, err
	}

	users := adapterrepo.NewUserRepository(db)
	words := adapterrepo.NewWordRepository(db)
	books := adapterrepo.NewBookRepository(db)
	records := adapterrepo.NewRecordRepository(db)
	plans := adapterrepo.NewPlanRepository(db)
	goals := adapterrepo.NewGoalRepository(db)
	learningPlans := adapterrepo.NewLearningPlanRepository(db)
	assessments := adapterrepo.NewAssessmentRepository(db)
	tests := adapterrepo.NewTestRepository(db)

	tokens := httpapi.NewTokenManager(
		cfg.Auth.Secret,
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
	)

	handler := httpapi.NewHandler(
		usecase.NewUserUsecase(users),
		usecase.NewVocabularyUsecase(words, books),
		usecase.NewLearningUsecase(records, plans, books),
		usecase.NewAssessmentUsecase(assessments, records, words, books),
		usecase.NewTestUsecase(tests, records, words, books),
		usecase.NewProgressUsecase(records, books, words, goals, learningPlans),
		tokens,
		logger,
	)

	srv := server.NewServer(cfg, logger, handler.Routes())

	return &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Server: srv,
	}, cleanup, nil
}
