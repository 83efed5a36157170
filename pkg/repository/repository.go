package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/consoleshop/pkg/config"
	"github.com/example/consoleshop/pkg/models"
	"go.uber.org/zap"
)

// ProductStore persists the whole catalog at once. SaveProducts also
// raises the stored high-water mark to the highest id it was given, and
// LastProductID returns that mark, so ids of removed products are never
// handed out again.
type ProductStore interface {
	LoadProducts(ctx context.Context) ([]models.Product, error)
	SaveProducts(ctx context.Context, products []models.Product) error
	LastProductID(ctx context.Context) (uint64, error)
}

// CartStore persists one cart per username, replacing it wholesale.
type CartStore interface {
	LoadCart(ctx context.Context, username string) ([]models.CartItem, error)
	SaveCart(ctx context.Context, username string, items []models.CartItem) error
}

// AccountStore is append-only; accounts are never edited or deleted.
type AccountStore interface {
	LoadAccounts(ctx context.Context) ([]models.Account, error)
	AppendAccount(ctx context.Context, account models.Account) error
}

// BillLedger is a write-only audit trail of checkouts.
type BillLedger interface {
	AppendBill(ctx context.Context, bill *models.Bill) error
}

// Stores bundles the repositories selected by configuration.
type Stores struct {
	Products ProductStore
	Carts    CartStore
	Accounts AccountStore
	Bills    BillLedger

	closers []func(context.Context) error
}

// Open builds the stores named in cfg.Storage. Carts and bills follow the
// main backend unless overridden with redis or mongo.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	s := &Stores{}

	switch cfg.Storage.Backend {
	case config.BackendFile:
		repo, err := NewFileRepository(cfg.Storage.DataDir, cfg.Shop.Currency, logger.Named("file-store"))
		if err != nil {
			return nil, err
		}
		s.Products, s.Carts, s.Accounts, s.Bills = repo, repo, repo, repo

	case config.BackendMySQL, config.BackendSQLite:
		repo, err := NewGormRepository(cfg, logger.Named("sql-store"))
		if err != nil {
			return nil, err
		}
		s.Products, s.Carts, s.Accounts, s.Bills = repo, repo, repo, repo
		s.closers = append(s.closers, func(context.Context) error { return repo.Close() })

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Storage.Carts == config.BackendRedis {
		redisRepo := NewRedisRepository(&cfg.Redis)
		if err := redisRepo.Ping(ctx); err != nil {
			s.Close(ctx)
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		s.Carts = redisRepo
		s.closers = append(s.closers, func(context.Context) error { return redisRepo.Close() })
		logger.Info("Carts stored in Redis", zap.String("addr", cfg.Redis.Addr))
	}

	if cfg.Storage.Bills == config.BackendMongo {
		mongoRepo, err := NewMongoRepository(&cfg.MongoDB)
		if err != nil {
			s.Close(ctx)
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		s.Bills = mongoRepo
		s.closers = append(s.closers, mongoRepo.Close)
		logger.Info("Bills stored in MongoDB",
			zap.String("database", cfg.MongoDB.Database),
			zap.String("collection", cfg.MongoDB.Collection))
	}

	return s, nil
}

// Close releases every connection opened by Open.
func (s *Stores) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
