package main

import (
	"context"
	"time"

	"github.com/MarcoPoloResearchLab/lembrete/internal/app"
	"github.com/MarcoPoloResearchLab/lembrete/internal/config"
	"github.com/MarcoPoloResearchLab/lembrete/internal/database"
	"github.com/MarcoPoloResearchLab/lembrete/internal/holidays"
	"github.com/MarcoPoloResearchLab/lembrete/internal/kvstore"
	"github.com/MarcoPoloResearchLab/lembrete/internal/logging"
	"github.com/MarcoPoloResearchLab/lembrete/internal/notes"
	"github.com/MarcoPoloResearchLab/lembrete/internal/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// runtime bundles the components shared by the server and CLI commands.
type runtime struct {
	config     config.AppConfig
	logger     *zap.Logger
	notes      *notes.Store
	controller *app.Controller
	dispatcher *server.RealtimeDispatcher
	closers    []func()
}

func openRuntime(ctx context.Context) (*runtime, error) {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel, appConfig.LogFormat)
	if err != nil {
		return nil, err
	}

	rt := &runtime{config: appConfig, logger: logger}
	rt.closers = append(rt.closers, func() { _ = logger.Sync() })

	storage, err := rt.openStorage()
	if err != nil {
		rt.Close()
		return nil, err
	}

	noteStore, err := notes.NewStore(notes.StoreConfig{
		Storage: storage,
		Logger:  logger,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}
	noteStore.Load(ctx)

	dispatcher := server.NewRealtimeDispatcher()
	controller, err := app.NewController(app.ControllerConfig{
		Notes:     noteStore,
		Holidays:  holidays.ForYears(appConfig.HolidayFromYear, appConfig.HolidayToYear),
		WeekStart: appConfig.WeekStart,
		Clock:     time.Now,
		Notifier:  dispatcher,
		Logger:    logger,
	})
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.notes = noteStore
	rt.controller = controller
	rt.dispatcher = dispatcher
	return rt, nil
}

func (rt *runtime) openStorage() (notes.KeyValueStore, error) {
	if rt.config.Ephemeral {
		rt.logger.Info("using in-memory note storage")
		return kvstore.NewMemoryStore(), nil
	}

	db, err := database.OpenSQLite(rt.config.DatabasePath, rt.logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, func() { _ = sqlDB.Close() })

	return kvstore.NewSQLStore(db, time.Now)
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() {
	for index := len(rt.closers) - 1; index >= 0; index-- {
		rt.closers[index]()
	}
	rt.closers = nil
}
