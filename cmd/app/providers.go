package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yanqian/faq-kb/internal/domain/faq"
	"github.com/yanqian/faq-kb/internal/domain/media"
	"github.com/yanqian/faq-kb/internal/infra/config"
	"github.com/yanqian/faq-kb/internal/infra/faqcache"
	"github.com/yanqian/faq-kb/internal/infra/faqrepo"
	"github.com/yanqian/faq-kb/internal/infra/mediastore"
)

func provideFAQConfig(cfg *config.Config) faq.Config {
	return faq.Config{
		CacheTTL: cfg.FAQ.CacheTTL,
	}
}

func provideMediaConfig(cfg *config.Config) media.Config {
	return media.Config{
		MaxBytes:      cfg.Media.MaxBytes,
		PublicBaseURL: cfg.Media.PublicBaseURL,
	}
}

// provideFAQRepository prefers MongoDB, then Postgres, then memory.
func provideFAQRepository(cfg *config.Config, logger *slog.Logger) faq.Repository {
	if repo := openMongoRepository(cfg, logger); repo != nil {
		return repo
	}
	if repo := openPostgresRepository(cfg, logger); repo != nil {
		return repo
	}
	logger.Info("no faq database configured, using memory repository")
	return faqrepo.NewMemoryRepository()
}

func openMongoRepository(cfg *config.Config, logger *slog.Logger) *faqrepo.MongoRepository {
	uri := strings.TrimSpace(cfg.FAQ.Mongo.URI)
	if uri == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("failed to initialize mongo client, trying next backend", "error", err)
		return nil
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Error("mongo ping failed, trying next backend", "error", err)
		_ = client.Disconnect(context.Background())
		return nil
	}
	repo := faqrepo.NewMongoRepository(client.Database(cfg.FAQ.Mongo.Database).Collection(cfg.FAQ.Mongo.Collection))
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure mongo indexes", "error", err)
	}
	logger.Info("faq mongo repository enabled", "database", cfg.FAQ.Mongo.Database, "collection", cfg.FAQ.Mongo.Collection)
	return repo
}

func openPostgresRepository(cfg *config.Config, logger *slog.Logger) *faqrepo.PostgresRepository {
	dsn := strings.TrimSpace(cfg.FAQ.Postgres.DSN)
	if dsn == "" {
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, trying next backend", "error", err)
		return nil
	}
	if cfg.FAQ.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.FAQ.Postgres.MaxConns
	}
	if cfg.FAQ.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.FAQ.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, trying next backend", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, trying next backend", "error", err)
		pool.Close()
		return nil
	}
	repo := faqrepo.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure postgres schema, trying next backend", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("faq postgres repository enabled")
	return repo
}

func provideFAQCache(cfg *config.Config, logger *slog.Logger) faq.Cache {
	if cfg.FAQ.Redis.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return faqcache.NewMemoryCache()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return faqcache.NewMemoryCache()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
			client.Close()
		} else {
			logger.Info("faq valkey cache enabled", "addr", cfg.FAQ.Redis.Addr)
			return faqcache.NewValkeyCache(client, cfg.FAQ.Redis.Prefix)
		}
	}
	return faqcache.NewMemoryCache()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.FAQ.Redis.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.FAQ.Redis.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.FAQ.Redis.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideObjectStorage(cfg *config.Config, logger *slog.Logger) media.ObjectStorage {
	s3 := cfg.Media.S3
	if strings.TrimSpace(s3.Endpoint) == "" || strings.TrimSpace(s3.Bucket) == "" {
		logger.Info("media s3 storage not configured, keeping images in memory")
		return mediastore.NewMemoryStorage()
	}
	storage, err := mediastore.NewS3Storage(s3.Endpoint, s3.AccessKey, s3.SecretKey, s3.Bucket, s3.Region, logger)
	if err != nil {
		logger.Error("failed to initialize s3 storage, keeping images in memory", "error", err)
		return mediastore.NewMemoryStorage()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := storage.EnsureBucket(ctx); err != nil {
		logger.Error("media bucket unavailable, keeping images in memory", "bucket", s3.Bucket, "error", err)
		return mediastore.NewMemoryStorage()
	}
	logger.Info("media s3 storage enabled", "bucket", s3.Bucket)
	return storage
}
