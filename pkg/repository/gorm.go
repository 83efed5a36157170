package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/consoleshop/pkg/config"
	"github.com/example/consoleshop/pkg/models"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// billRecord is the SQL row for a bill. Lines are kept as a JSON column.
type billRecord struct {
	ID        uint            `gorm:"primaryKey"`
	Username  string          `gorm:"type:varchar(100);not null;index"`
	Items     string          `gorm:"type:text"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2)"`
	CreatedAt time.Time
}

func (billRecord) TableName() string {
	return "bills"
}

// sequenceRecord keeps a high-water mark that outlives the rows it numbered.
type sequenceRecord struct {
	Name  string `gorm:"primaryKey;type:varchar(50)"`
	Value uint64 `gorm:"not null"`
}

func (sequenceRecord) TableName() string {
	return "sequences"
}

const productSequence = "products"

// GormRepository stores every record kind in one SQL database.
type GormRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewGormRepository(cfg *config.Config, logger *zap.Logger) (*GormRepository, error) {
	var dialector gorm.Dialector
	switch cfg.Storage.Backend {
	case config.BackendMySQL:
		dialector = mysql.Open(cfg.MySQL.DSN())
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create sqlite dir: %w", err)
		}
		dialector = sqlite.Open(cfg.Storage.SQLitePath)
	default:
		return nil, fmt.Errorf("backend %q is not an SQL backend", cfg.Storage.Backend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Storage.Backend, err)
	}

	if cfg.Storage.Backend == config.BackendMySQL {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	}

	return NewGormRepositoryFromDB(db, logger)
}

// NewGormRepositoryFromDB migrates the schema on an already opened db.
func NewGormRepositoryFromDB(db *gorm.DB, logger *zap.Logger) (*GormRepository, error) {
	if err := db.AutoMigrate(&models.Product{}, &models.CartItem{}, &models.Account{}, &billRecord{}, &sequenceRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &GormRepository{db: db, logger: logger}, nil
}

func (r *GormRepository) LoadProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("position").Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, nil
}

// SaveProducts replaces the products table inside one transaction.
func (r *GormRepository) SaveProducts(ctx context.Context, products []models.Product) error {
	rows := make([]models.Product, len(products))
	for i, p := range products {
		p.Position = i
		rows[i] = p
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := raiseSequence(tx, productSequence, maxProductID(rows)); err != nil {
			return fmt.Errorf("failed to update product sequence: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error; err != nil {
			return fmt.Errorf("failed to clear products: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save products: %w", err)
		}
		return nil
	})
}

func (r *GormRepository) LastProductID(ctx context.Context) (uint64, error) {
	var seq sequenceRecord
	err := r.db.WithContext(ctx).Where("name = ?", productSequence).Limit(1).Find(&seq).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load product sequence: %w", err)
	}
	return seq.Value, nil
}

// raiseSequence sets the named mark to value unless it is already higher.
func raiseSequence(tx *gorm.DB, name string, value uint64) error {
	var seq sequenceRecord
	res := tx.Where("name = ?", name).Limit(1).Find(&seq)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Create(&sequenceRecord{Name: name, Value: value}).Error
	}
	if value <= seq.Value {
		return nil
	}
	return tx.Model(&sequenceRecord{}).Where("name = ?", name).Update("value", value).Error
}

func (r *GormRepository) LoadCart(ctx context.Context, username string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).Where("username = ?", username).Order("seq").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return items, nil
}

func (r *GormRepository) SaveCart(ctx context.Context, username string, items []models.CartItem) error {
	rows := make([]models.CartItem, len(items))
	for i, it := range items {
		it.Seq = 0
		it.Username = username
		rows[i] = it
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("username = ?", username).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save cart: %w", err)
		}
		return nil
	})
}

func (r *GormRepository) LoadAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.WithContext(ctx).Order("created_at").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return accounts, nil
}

func (r *GormRepository) AppendAccount(ctx context.Context, account models.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(&account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *GormRepository) AppendBill(ctx context.Context, bill *models.Bill) error {
	items, err := json.Marshal(bill.Lines)
	if err != nil {
		return fmt.Errorf("failed to serialize bill lines: %w", err)
	}

	rec := &billRecord{
		Username:  bill.Username,
		Items:     string(items),
		Total:     bill.Total,
		CreatedAt: bill.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		r.logger.Error("Failed to create bill", zap.String("username", bill.Username), zap.Error(err))
		return fmt.Errorf("failed to create bill: %w", err)
	}
	return nil
}

// Bills returns the stored bills of one user, oldest first.
func (r *GormRepository) Bills(ctx context.Context, username string) ([]models.Bill, error) {
	var recs []billRecord
	if err := r.db.WithContext(ctx).Where("username = ?", username).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}

	bills := make([]models.Bill, len(recs))
	for i, rec := range recs {
		var lines []models.BillLine
		if err := json.Unmarshal([]byte(rec.Items), &lines); err != nil {
			r.logger.Warn("Failed to parse items for bill", zap.Uint("bill_id", rec.ID), zap.Error(err))
			lines = []models.BillLine{}
		}
		bills[i] = models.Bill{
			Username:  rec.Username,
			Lines:     lines,
			Total:     rec.Total,
			CreatedAt: rec.CreatedAt,
		}
	}
	return bills, nil
}

func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
