package main

import (
	"context"
	"fmt"
	"time"

	"github.com/emagodi/contracts/internal/config"
	"github.com/emagodi/contracts/internal/requisition/entity"
	"github.com/emagodi/contracts/internal/requisition/job"
	"github.com/emagodi/contracts/internal/requisition/repository"
	"github.com/emagodi/contracts/internal/requisition/service"
	"github.com/emagodi/contracts/internal/shared/notify"
	"github.com/emagodi/contracts/internal/shared/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// models 需要迁移的表
var models = []interface{}{
	&entity.Requisition{},
	&entity.Approval{},
	&entity.Attachment{},
	&entity.ContractDraft{},
	&entity.Signature{},
	&entity.User{},
	&entity.ActivityLog{},
}

type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	rdb      *redis.Client
	repos    *repository.Repositories
	services *service.Services
}

// bootstrap 加载配置并初始化日志、数据库、Redis、文件存储与服务
func bootstrap(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := initDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepositories(db)
	return &app{
		cfg:      cfg,
		logger:   zapLogger,
		db:       db,
		rdb:      initRedis(cfg.Redis),
		repos:    repos,
		services: service.NewServices(db, repos, store, zapLogger),
	}, nil
}

func (a *app) Close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	a.logger.Sync()
}

// newReminder 组装续约提醒任务：到期查询 + 用户目录 + Redis 短信队列
func (a *app) newReminder() *job.RenewalReminder {
	queue := notify.NewRedisQueue(a.rdb, a.cfg.Reminder.QueueKey)
	r := job.NewRenewalReminder(a.services.DueDate, a.repos.User, queue, a.logger)
	r.SetRole(a.cfg.Reminder.RecipientRole)
	if a.cfg.Reminder.DistLock {
		r.SetLocker(job.NewRedisLocker(a.rdb, a.logger))
	}
	return r
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	level := logger.Warn
	switch cfg.LogLevel {
	case "info":
		level = logger.Info
	case "error":
		level = logger.Error
	case "silent":
		level = logger.Silent
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func initStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case "minio":
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		s, err := storage.NewMinIOStorage(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			Bucket:    cfg.MinIO.Bucket,
			UseSSL:    cfg.MinIO.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("init minio storage: %w", err)
		}
		return s, nil
	default:
		s, err := storage.NewLocalStorage(cfg.Storage.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("init local storage: %w", err)
		}
		return s, nil
	}
}
