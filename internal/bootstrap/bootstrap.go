// Package bootstrap wires the dispatch engine from configuration for the binaries.
package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"

	"golang-wa-dispatch/internal/adapters/db/sqlstore"
	"golang-wa-dispatch/internal/adapters/provider/wablast"
	"golang-wa-dispatch/internal/adapters/provider/wadirect"
	"golang-wa-dispatch/internal/app"
	"golang-wa-dispatch/internal/config"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB connects to the configured database.
func OpenDB(conf config.Config) (*gorm.DB, error) {
	level := logger.Silent
	if conf.LogLevel == "debug" {
		level = logger.Info
	}
	db, err := sqlstore.Open(conf.DatabaseDriver, conf.DatabaseURL, sqlstore.PoolConfig{
		MaxOpenConns:    conf.DBMaxOpenConns,
		MaxIdleConns:    conf.DBMaxIdleConns,
		ConnMaxLifetime: conf.DBConnMaxLifetime,
	}, level)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// NewEngine builds the engine with both provider adapters over db.
func NewEngine(db *gorm.DB, log *slog.Logger) *app.Engine {
	repo := sqlstore.New(db)
	hc := &http.Client{}
	return app.NewEngine(
		app.NewGatewayConfigResolver(repo, log),
		app.NewRetryingSender(),
		app.NewDeliveryLogger(repo, log),
		log,
		wadirect.New(hc),
		wablast.New(hc),
	)
}
