package app

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/karadag/storefront/config"
	"github.com/karadag/storefront/internal/repository"
	"github.com/karadag/storefront/internal/repository/gormrepo"
	"github.com/karadag/storefront/internal/repository/mongorepo"
)

// openStores connects the backend selected by database.type
func openStores(ctx context.Context, cfg *config.AppConfig) (*repository.Stores, error) {
	switch strings.ToLower(cfg.Database.Type) {
	case "mongodb", "mongo":
		return openMongo(ctx, cfg.Database)
	case "postgres", "postgresql", "sqlite", "":
		db, err := getDatabase(cfg.Database, cfg.System.Workdir)
		if err != nil {
			return nil, err
		}
		return gormrepo.New(db), nil
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Database.Type)
	}
}

func getDatabase(cfg config.DBConfig, workdir string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	if cfg.Debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	if strings.EqualFold(cfg.Type, "sqlite") || cfg.Type == "" {
		dir := path.Join(workdir, "data")
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, pkgerrors.Wrap(err, "create data dir")
		}
		dsn := cfg.URI
		if dsn == "" {
			dsn = path.Join(dir, cfg.Name+".db") + "?_busy_timeout=5000"
		}
		dialector = sqlite.Open(dsn)
	} else {
		dsn := cfg.URI
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
				cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name, time.Local.String())
		}
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "open database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "database handle")
	}
	if db.Dialector.Name() == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxConn)
		sqlDB.SetMaxIdleConns(cfg.IdleConn)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	zap.S().Infof("opened %s database", db.Dialector.Name())
	return db, nil
}

func openMongo(ctx context.Context, cfg config.DBConfig) (*repository.Stores, error) {
	uri := cfg.URI
	if uri == "" {
		uri = fmt.Sprintf("mongodb://%s:%d", cfg.Host, cfg.Port)
	}
	opts := options.Client().ApplyURI(uri)
	if cfg.MaxConn > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxConn))
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "connect mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, pkgerrors.Wrap(err, "ping mongodb")
	}
	name := cfg.Name
	if name == "" {
		name = "storefront"
	}
	zap.S().Infof("connected to mongodb database %s", name)
	return mongorepo.New(client, client.Database(name)), nil
}
