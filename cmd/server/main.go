package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/JASIELAB/CULTUREMEDIA/internal/config"
	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository/csvfile"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository/mongodb"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository/sheets"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository/xlsxfile"
	"github.com/JASIELAB/CULTUREMEDIA/internal/scheduler"
	"github.com/JASIELAB/CULTUREMEDIA/internal/server/handlers"
	"github.com/JASIELAB/CULTUREMEDIA/internal/server/router"
	exportsvc "github.com/JASIELAB/CULTUREMEDIA/internal/service/export"
	inventorysvc "github.com/JASIELAB/CULTUREMEDIA/internal/service/inventory"
	notifysvc "github.com/JASIELAB/CULTUREMEDIA/internal/service/notify"
	reportingsvc "github.com/JASIELAB/CULTUREMEDIA/internal/service/reporting"
	"github.com/JASIELAB/CULTUREMEDIA/pkg/clients/webhook"
	"github.com/JASIELAB/CULTUREMEDIA/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	var (
		batches   repository.BatchRepository
		solutions repository.SolutionRepository
		movements repository.MovementRepository
	)
	switch cfg.Store.Backend {
	case config.BackendMongoDB:
		mongoStore, err := mongodb.NewStore(context.Background(), cfg.Store.MongoURI, cfg.Store.MongoDBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
		}
		defer func() {
			if err := mongoStore.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		batches, solutions, movements = mongoStore.Batches(), mongoStore.Solutions(), mongoStore.Movements()
	default:
		csvStore, err := csvfile.Open(cfg.Store.DataDir, baseLogger.Named("repo.csv"))
		if err != nil {
			baseLogger.Fatal("failed to init csv store", zap.Error(err))
		}
		batches, solutions, movements = csvStore.Batches(), csvStore.Solutions(), csvStore.Movements()
	}

	var recipeSource repository.RecipeSource
	switch cfg.Recipes.Source {
	case config.RecipeSourceSheets:
		recipeSource, err = sheets.NewRecipeSheetRepository(context.Background(), cfg.Recipes, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets recipe source", zap.Error(err))
		}
	default:
		if cfg.Recipes.WorkbookPath == "" {
			baseLogger.Warn("no recipe workbook configured, recipe endpoints disabled")
			break
		}
		recipeSource, err = xlsxfile.NewRecipeWorkbook(cfg.Recipes.WorkbookPath, cfg.Recipes.HeaderOffset, baseLogger.Named("repo.xlsx"))
		if err != nil {
			baseLogger.Fatal("failed to init recipe workbook", zap.Error(err))
		}
	}

	webhookClient := webhook.NewClient(cfg.Notify)
	notifySvc := notifysvc.NewService(webhookClient, baseLogger.Named("svc.notify"))

	codes := models.CodeFormat{Sep1: cfg.Labeling.Sep1, Sep2: cfg.Labeling.Sep2}
	inventorySvc := inventorysvc.NewService(batches, solutions, movements, codes, notifySvc, baseLogger.Named("svc.inventory"))
	exportSvc := exportsvc.NewService(batches, solutions, movements, baseLogger.Named("svc.export"))
	reportingSvc := reportingsvc.NewService(movements, batches, baseLogger.Named("svc.reporting"))

	engine := router.New(router.Handlers{
		Batches:   handlers.NewBatchHandler(inventorySvc, baseLogger.Named("handlers.batches")),
		Solutions: handlers.NewSolutionHandler(inventorySvc, baseLogger.Named("handlers.solutions")),
		Recipes:   handlers.NewRecipeHandler(recipeSource, baseLogger.Named("handlers.recipes")),
		Exports:   handlers.NewExportHandler(exportSvc, reportingSvc, baseLogger.Named("handlers.exports")),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, reportingSvc, notifySvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
