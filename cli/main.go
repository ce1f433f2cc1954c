package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joeshaw/envdecode"
	"github.com/ranger-dev/ranger-agent/internal/adapter"
	"github.com/ranger-dev/ranger-agent/internal/envconf"
	"github.com/ranger-dev/ranger-agent/internal/locker"
	"github.com/ranger-dev/ranger-agent/internal/logger"
	"github.com/ranger-dev/ranger-agent/internal/repository"
	"github.com/ranger-dev/ranger-agent/internal/utils"
	"github.com/ranger-dev/ranger-agent/pkg/action"
	"github.com/ranger-dev/ranger-agent/pkg/cloud"
	"github.com/ranger-dev/ranger-agent/pkg/engine"
	"github.com/ranger-dev/ranger-agent/pkg/notifier"
	"github.com/ranger-dev/ranger-agent/pkg/orchestrator"
	"github.com/ranger-dev/ranger-agent/pkg/plan"
	"github.com/ranger-dev/ranger-agent/pkg/runbook"
	flag "github.com/spf13/pflag"
)

// The CLI is a local simulator: it drives the same orchestrator the server
// uses, against the configured store, without going through HTTP.
func main() {
	envDecoderConf := &envconf.EnvDecoderConf{}

	if err := envdecode.StrictDecode(envDecoderConf); err != nil {
		logger.NewErrorConsole(true).Fatal().Caller().Msgf("could not decode env conf: %v", err)
		os.Exit(1)
	}

	var debug bool

	flag.BoolVar(&debug, "debug", envDecoderConf.Debug, "enable debug logging")
	flag.Parse()

	l := logger.NewConsole(debug)

	args := flag.Args()

	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	orch, repo := wire(envDecoderConf, l)

	ctx := context.Background()

	switch args[0] {
	case "simulate":
		if len(args) < 2 {
			l.Fatal().Caller().Msg("usage: ranger simulate <alarm-event.json>")
		}

		simulate(ctx, orch, l, args[1])
	case "list":
		list(repo, l)
	case "show":
		if len(args) < 2 {
			l.Fatal().Caller().Msg("usage: ranger show <incident-id>")
		}

		show(repo, l, args[1])
	case "approve":
		if len(args) < 2 {
			l.Fatal().Caller().Msg("usage: ranger approve <incident-id>")
		}

		approve(ctx, orch, l, args[1])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ranger <simulate|list|show|approve> [args]")
}

func wire(conf *envconf.EnvDecoderConf, l *logger.Logger) (*orchestrator.Orchestrator, *repository.Repository) {
	db, err := adapter.New(&conf.DBConf)

	if err != nil {
		l.Fatal().Caller().Msgf("could not create database connection: %v", err)
	}

	if err := repository.AutoMigrate(db, false); err != nil {
		l.Fatal().Caller().Msgf("auto migration failed: %v", err)
	}

	repo := repository.NewRepository(db)

	catalog := runbook.NewCatalog(conf.RunbookDir, l)

	if err := catalog.Load(); err != nil {
		l.Fatal().Caller().Msgf("could not load runbook catalog: %v", err)
	}

	lkr, err := locker.New(&conf.LockConf, repo)

	if err != nil {
		l.Fatal().Caller().Msgf("could not create lock store: %v", err)
	}

	registry := action.DefaultRegistry(cloud.NewState())

	return &orchestrator.Orchestrator{
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
			LockTTL:        conf.LockConf.LockTTL,
		},
		Notifier: notifier.New(&conf.NotifierConf, l),
		Logger:   l,
	}, repo
}

func simulate(ctx context.Context, orch *orchestrator.Orchestrator, l *logger.Logger, path string) {
	raw, err := os.ReadFile(path)

	if err != nil {
		l.Fatal().Caller().Msgf("could not read alarm event file: %v", err)
	}

	result, err := orch.ProcessEvent(ctx, raw)

	if err != nil {
		l.Fatal().Caller().Msgf("simulation failed: %v", err)
	}

	if !result.Created {
		fmt.Printf("no incident created: %s\n", result.Message)
		return
	}

	fmt.Printf("incident %s: %s\n", result.IncidentID, result.Status)

	if result.AwaitingApproval {
		fmt.Printf("plan requires approval, run: ranger approve %s\n", result.IncidentID)
	}

	if result.Message != "" {
		fmt.Println(result.Message)
	}
}

func list(repo *repository.Repository, l *logger.Logger) {
	incidents, err := repo.Incident.ListIncidents(&utils.ListIncidentsFilter{}, utils.WithOrder(utils.OrderDesc))

	if err != nil {
		l.Fatal().Caller().Msgf("could not list incidents: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tALARM\tSTATUS\tCREATED")

	for _, incident := range incidents {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			incident.UniqueID,
			incident.AlarmName,
			incident.Status,
			incident.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}

	w.Flush()
}

func show(repo *repository.Repository, l *logger.Logger, incidentID string) {
	incident, err := repo.Incident.ReadIncident(incidentID)

	if err != nil {
		l.Fatal().Caller().Msgf("incident %s not found: %v", incidentID, err)
	}

	fmt.Printf("Incident: %s\n", incident.UniqueID)
	fmt.Printf("Alarm:    %s\n", incident.AlarmName)
	fmt.Printf("Status:   %s\n", incident.Status)
	fmt.Printf("Severity: %s\n", incident.Severity)
	fmt.Printf("Summary:  %s\n", incident.Summary)

	p, err := repo.Plan.LatestPlan(incidentID)

	if err != nil {
		return
	}

	actions, err := p.GetActions()

	if err != nil {
		l.Fatal().Caller().Msgf("could not decode plan: %v", err)
	}

	fmt.Printf("\nPlan v%d (approval required: %t):\n", p.Version, p.ApprovalRequired)

	for _, a := range actions {
		fmt.Printf("- %s (%s)\n", a.ID, a.Type)
	}

	entries, err := repo.ActionLog.ListEntries(&utils.ListActionLogsFilter{IncidentID: &incidentID})

	if err != nil || len(entries) == 0 {
		return
	}

	fmt.Println("\nAction log:")

	for _, entry := range entries {
		fmt.Printf("- %s %s %s\n", entry.CreatedAt.Format("15:04:05"), entry.ActionID, entry.Status)
	}
}

func approve(ctx context.Context, orch *orchestrator.Orchestrator, l *logger.Logger, incidentID string) {
	result, err := orch.Resume(ctx, incidentID)

	if err != nil {
		if errors.Is(err, orchestrator.ErrIncidentNotFound) {
			l.Fatal().Caller().Msgf("incident %s not found", incidentID)
		}

		if errors.Is(err, orchestrator.ErrInvalidTransition) {
			l.Fatal().Caller().Msgf("incident %s is not awaiting approval", incidentID)
		}

		l.Fatal().Caller().Msgf("approve failed: %v", err)
	}

	fmt.Printf("incident %s: %s\n", result.IncidentID, result.Status)

	if result.Message != "" {
		fmt.Println(result.Message)
	}
}
