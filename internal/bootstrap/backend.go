// Package bootstrap connects the configured infrastructure for the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"dairyflow/internal/config"
	"dairyflow/pkg/logger"
	"dairyflow/tokenstore"

	"github.com/redis/go-redis/v9"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Backend is an opened key-value backend plus whatever must be released
// when the process exits.
type Backend struct {
	tokenstore.Backend
	// Redis is set when the backend talks to redis, so callers can share
	// the connection.
	Redis  *redis.Client
	closer func() error
}

func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer()
}

// OpenBackend connects the named backend using cfg.
func OpenBackend(ctx context.Context, kind string, cfg *config.Config) (*Backend, error) {
	switch kind {
	case config.BackendMemory:
		return &Backend{Backend: tokenstore.NewMemoryBackend()}, nil

	case config.BackendFile:
		path := cfg.Store.FilePath
		if path == "" {
			var err error
			if path, err = DefaultSessionPath(); err != nil {
				return nil, err
			}
		}
		return &Backend{Backend: tokenstore.NewFileBackend(path)}, nil

	case config.BackendRedis:
		rdb, err := InitRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Backend: tokenstore.NewRedisBackend(rdb, cfg.Store.Prefix, cfg.Store.TTL),
			Redis:   rdb,
			closer:  rdb.Close,
		}, nil

	case config.BackendEtcd:
		cli, err := InitEtcd(cfg.Etcd)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Backend: tokenstore.NewEtcdBackend(cli, cfg.Store.Prefix),
			closer:  cli.Close,
		}, nil

	case config.BackendMySQL:
		db, err := InitDB(cfg.MySQL)
		if err != nil {
			return nil, err
		}
		backend, err := tokenstore.NewSQLBackend(db)
		if err != nil {
			return nil, fmt.Errorf("failed to migrate session table: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		return &Backend{Backend: backend, closer: sqlDB.Close}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// DefaultSessionPath is where the CLI keeps its session when no file path
// is configured.
func DefaultSessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "dairyflow", "session.json"), nil
}

func InitRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func InitEtcd(cfg config.EtcdConfig) (*clientv3.Client, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
		Logger:      logger.L().Named("etcd"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}
	return cli, nil
}

func InitDB(cfg config.MySQLConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}
	logger.Debug("mysql connected", zap.String("dialect", db.Dialector.Name()))
	return db, nil
}
