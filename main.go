package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/joeshaw/envdecode"

	serverconfig "github.com/ranger-dev/ranger-agent/api/server/config"
	healthcheckHandlers "github.com/ranger-dev/ranger-agent/api/server/handlers/healthcheck"
	incidentHandlers "github.com/ranger-dev/ranger-agent/api/server/handlers/incident"
	ingestHandlers "github.com/ranger-dev/ranger-agent/api/server/handlers/ingest"
	"github.com/ranger-dev/ranger-agent/internal/adapter"
	"github.com/ranger-dev/ranger-agent/internal/envconf"
	"github.com/ranger-dev/ranger-agent/internal/locker"
	"github.com/ranger-dev/ranger-agent/internal/logger"
	"github.com/ranger-dev/ranger-agent/internal/repository"
	"github.com/ranger-dev/ranger-agent/pkg/action"
	"github.com/ranger-dev/ranger-agent/pkg/cloud"
	"github.com/ranger-dev/ranger-agent/pkg/engine"
	"github.com/ranger-dev/ranger-agent/pkg/notifier"
	"github.com/ranger-dev/ranger-agent/pkg/orchestrator"
	"github.com/ranger-dev/ranger-agent/pkg/plan"
	"github.com/ranger-dev/ranger-agent/pkg/pulsar"
	"github.com/ranger-dev/ranger-agent/pkg/runbook"
)

func main() {
	var envDecoderConf envconf.EnvDecoderConf = envconf.EnvDecoderConf{}

	if err := envdecode.StrictDecode(&envDecoderConf); err != nil {
		logger.NewErrorConsole(true).Fatal().Caller().Msgf("could not decode env conf: %v", err)

		os.Exit(1)
	}

	l := logger.NewConsole(envDecoderConf.Debug)

	db, err := adapter.New(&envDecoderConf.DBConf)

	if err != nil {
		l.Fatal().Caller().Msgf("could not create database connection: %v", err)
	}

	if err := repository.AutoMigrate(db, false); err != nil {
		l.Fatal().Caller().Msgf("auto migration failed: %v", err)
	}

	repo := repository.NewRepository(db)

	catalog := runbook.NewCatalog(envDecoderConf.RunbookDir, l)

	if err := catalog.Load(); err != nil {
		l.Fatal().Caller().Msgf("could not load runbook catalog: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if envDecoderConf.WatchRunbooks {
		go func() {
			if err := catalog.Watch(ctx); err != nil && err != context.Canceled {
				l.Error().Caller().Msgf("runbook watcher exited with error: %v", err)
			}
		}()
	}

	lkr, err := locker.New(&envDecoderConf.LockConf, repo)

	if err != nil {
		l.Fatal().Caller().Msgf("could not create lock store: %v", err)
	}

	registry := action.DefaultRegistry(cloud.NewState())

	l.Info().Caller().Msgf("registered action types: %v", registry.Types())

	orch := &orchestrator.Orchestrator{
		Repository: repo,
		Catalog:    catalog,
		Generator: &plan.Generator{
			Repository: repo,
			Registry:   registry,
			Logger:     l,
		},
		Engine: &engine.Engine{
			Repository:     repo,
			Registry:       registry,
			Locker:         lkr,
			Logger:         l,
			ResourceParams: engine.DefaultResourceParams(),
			LockTTL:        envDecoderConf.LockConf.LockTTL,
		},
		Notifier: notifier.New(&envDecoderConf.NotifierConf, l),
		Logger:   l,
	}

	// sweep expired leases so a crashed holder cannot pin a resource
	go func() {
		p := pulsar.NewPulsar(ctx, time.Minute)

		for range p.Pulsate() {
			if purged, err := repo.Lock.PurgeExpired(); err != nil {
				l.Error().Caller().Msgf("could not purge expired locks: %v", err)
			} else if purged > 0 {
				l.Info().Caller().Msgf("purged %d expired locks", purged)
			}
		}
	}()

	conf := &serverconfig.Config{
		Logger:       l,
		Repository:   repo,
		Catalog:      catalog,
		Orchestrator: orch,
	}

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Method("GET", "/livez", healthcheckHandlers.NewLivezHandler(conf))
	r.Method("GET", "/readyz", healthcheckHandlers.NewReadyzHandler(conf))

	r.Method("POST", "/events", ingestHandlers.NewWebhookHandler(conf))

	r.Method("GET", "/incidents", incidentHandlers.NewListIncidentsHandler(conf))
	r.Method("GET", "/incidents/{uid}", incidentHandlers.NewGetIncidentHandler(conf))
	r.Method("GET", "/incidents/{uid}/plan", incidentHandlers.NewGetPlanHandler(conf))
	r.Method("GET", "/incidents/{uid}/logs", incidentHandlers.NewListActionLogsHandler(conf))
	r.Method("POST", "/incidents/{uid}/approve", incidentHandlers.NewApproveIncidentHandler(conf))

	l.Info().Caller().Msgf("starting API server on port %d", envDecoderConf.ServerPort)

	if err := http.ListenAndServe(fmt.Sprintf(":%d", envDecoderConf.ServerPort), r); err != nil {
		l.Error().Caller().Msgf("error starting API server: %v", err)
	}
}
