package data

import (
	"context"
	"fmt"

	"github.com/lk2023060901/media-attached-filter/internal/conf"
	mediadata "github.com/lk2023060901/media-attached-filter/internal/media/data"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/database"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/logger"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/minio"
	"github.com/lk2023060901/media-attached-filter/internal/pkg/redis"
	"go.uber.org/zap"
)

// Data 聚合全部外部资源
type Data struct {
	DB    *database.DB
	Redis *redis.Client // 未启用时为 nil
	MinIO *minio.Client // 未启用时为 nil

	logger *logger.Logger
}

// NewData 建立数据库、Redis 与对象存储连接，并迁移媒体库表结构
func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&config.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init database: %w", err)
	}
	return newData(db, config, log)
}

// NewDataWithDB 使用已打开的数据库构建 Data，Redis 与对象存储仍按配置初始化
func NewDataWithDB(db *database.DB, config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	return newData(db, config, log)
}

func newData(db *database.DB, config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	if err := mediadata.Migrate(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate media tables: %w", err)
	}

	d := &Data{DB: db, logger: log}

	if config.Redis.Enabled {
		rdb, err := redis.New(&config.Redis, log)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		d.Redis = rdb
	} else {
		log.Info("redis disabled, rate limiting is off")
	}

	if config.MinIO.Enabled {
		mc, err := minio.NewClient(context.Background(), &config.MinIO, log)
		if err != nil {
			d.close()
			return nil, nil, fmt.Errorf("failed to init minio: %w", err)
		}
		d.MinIO = mc
	} else {
		log.Info("minio disabled, uploads are refused")
	}

	return d, d.close, nil
}

// HealthCheck 检查数据库、Redis 与对象存储可用性
func (d *Data) HealthCheck(ctx context.Context) error {
	if err := d.DB.HealthCheck(ctx); err != nil {
		return err
	}
	if d.Redis != nil {
		if err := d.Redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}
	if d.MinIO != nil {
		if err := d.MinIO.Ping(ctx); err != nil {
			return fmt.Errorf("minio ping failed: %w", err)
		}
	}
	return nil
}

func (d *Data) close() {
	d.logger.Info("cleaning up data resources")

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if err := d.DB.Close(); err != nil {
		d.logger.Warn("failed to close database", zap.Error(err))
	}
}
