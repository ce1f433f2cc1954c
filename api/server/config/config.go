package config

import (
	"github.com/ranger-dev/ranger-agent/internal/logger"
	"github.com/ranger-dev/ranger-agent/internal/repository"
	"github.com/ranger-dev/ranger-agent/pkg/orchestrator"
	"github.com/ranger-dev/ranger-agent/pkg/runbook"
)

type Config struct {
	Logger *logger.Logger

	Repository *repository.Repository

	Catalog *runbook.Catalog

	Orchestrator *orchestrator.Orchestrator
}
