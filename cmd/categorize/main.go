package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimgiray/heartbeat/internal/models"
	"github.com/alimgiray/heartbeat/internal/repositories"
	"github.com/alimgiray/heartbeat/internal/services"
	"github.com/alimgiray/heartbeat/internal/workers"
	"github.com/alimgiray/heartbeat/pkg/config"
	"github.com/alimgiray/heartbeat/pkg/database"
	"github.com/alimgiray/heartbeat/pkg/logger"
	"github.com/alimgiray/heartbeat/pkg/triggers"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <owner> <repository>\n", os.Args[0])
		os.Exit(2)
	}
	owner, repo := os.Args[1], os.Args[2]

	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init()

	// Initialize database
	if err := database.Init(); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Merge-bot command prefixes differ between projects, so they come
	// from a config file rather than code.
	triggerList, err := triggers.Load(config.AppConfig.Triggers.Path)
	if err != nil {
		logger.Fatalf("Failed to load merge triggers: %v", err)
	}

	// Initialize dependencies
	corpusService := services.NewCorpusService(config.AppConfig.Corpus.Root)
	classifyService := services.NewClassifyService(corpusService, triggerList)
	exportService := services.NewExportService()
	roleEventRepo := repositories.NewRoleEventRepository(database.DB)
	firstInteractionRepo := repositories.NewFirstInteractionRepository(database.DB)
	issueUnitRepo := repositories.NewIssueUnitRepository(database.DB)
	categorizeService := services.NewCategorizeService(
		corpusService,
		exportService,
		roleEventRepo,
		firstInteractionRepo,
		issueUnitRepo,
		config.AppConfig.Corpus.OutputDir,
	)

	manager := workers.NewWorkerManager(classifyService, config.AppConfig.Workers.Categorize)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := categorizeService.Run(ctx, owner, repo, manager)
	if err != nil {
		logger.Fatalf("Categorize run failed: %v", err)
	}

	for _, role := range models.Roles {
		logger.Infof("%s: %d events", role, summary.EventCounts[role])
	}
	logger.Infof("Wrote results for %d users to %s", summary.Users, summary.OutputDir)
}
