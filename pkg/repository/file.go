package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/consoleshop/pkg/models"
	"go.uber.org/zap"
)

const (
	productsFile  = "products.txt"
	productSeq    = "products.seq"
	adminsFile    = "admins.txt"
	customersFile = "customers.txt"
	cartPrefix    = "cart_"
	billPrefix    = "bill_"
	fileSuffix    = ".txt"
)

// FileRepository keeps every store as a plain-text file in one directory.
// Whole-store saves go through writeFileAtomic; accounts and bills are
// appended in place.
type FileRepository struct {
	dir      string
	currency string
	logger   *zap.Logger
}

func NewFileRepository(dir, currency string, logger *zap.Logger) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FileRepository{
		dir:      dir,
		currency: currency,
		logger:   logger,
	}, nil
}

func (r *FileRepository) path(name string) string {
	return filepath.Join(r.dir, name)
}

func (r *FileRepository) cartPath(username string) string {
	return r.path(cartPrefix + username + fileSuffix)
}

func (r *FileRepository) billPath(username string) string {
	return r.path(billPrefix + username + fileSuffix)
}

// readStore opens name for decoding. A missing file yields (nil, nil).
func (r *FileRepository) readStore(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(name), err)
	}
	return data, nil
}

// tolerate turns a malformed-record error into a warning so the records
// before it are still served.
func (r *FileRepository) tolerate(name string, err error) error {
	var rec *recordError
	if errors.As(err, &rec) {
		r.logger.Warn("Ignoring malformed tail of store",
			zap.String("file", filepath.Base(name)),
			zap.Int("line", rec.Line),
			zap.Error(rec.Err))
		return nil
	}
	return err
}

func (r *FileRepository) LoadProducts(ctx context.Context) ([]models.Product, error) {
	last, err := r.LastProductID(ctx)
	if err != nil {
		return nil, err
	}
	name := r.path(productsFile)
	data, err := r.readStore(name)
	if err != nil || data == nil {
		return nil, err
	}
	products, err := decodeProducts(bytes.NewReader(data), last)
	return products, r.tolerate(name, err)
}

// SaveProducts raises products.seq before rewriting products.txt, so the
// mark is never behind an id that reached disk.
func (r *FileRepository) SaveProducts(ctx context.Context, products []models.Product) error {
	last, err := r.LastProductID(ctx)
	if err != nil {
		return err
	}
	if high := maxProductID(products); high > last {
		if err := writeFileAtomic(r.path(productSeq), []byte(strconv.FormatUint(high, 10)+"\n")); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := encodeProducts(&buf, products); err != nil {
		return err
	}
	return writeFileAtomic(r.path(productsFile), buf.Bytes())
}

// LastProductID reads products.seq; a missing file means no id was issued.
func (r *FileRepository) LastProductID(ctx context.Context) (uint64, error) {
	data, err := r.readStore(r.path(productSeq))
	if err != nil || data == nil {
		return 0, err
	}
	last, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed %s: %w", productSeq, err)
	}
	return last, nil
}

func (r *FileRepository) LoadCart(ctx context.Context, username string) ([]models.CartItem, error) {
	name := r.cartPath(username)
	data, err := r.readStore(name)
	if err != nil || data == nil {
		return nil, err
	}
	items, err := decodeCart(bytes.NewReader(data))
	return items, r.tolerate(name, err)
}

func (r *FileRepository) SaveCart(ctx context.Context, username string, items []models.CartItem) error {
	var buf bytes.Buffer
	if err := encodeCart(&buf, items); err != nil {
		return err
	}
	return writeFileAtomic(r.cartPath(username), buf.Bytes())
}

// LoadAccounts reads admins first, then customers.
func (r *FileRepository) LoadAccounts(ctx context.Context) ([]models.Account, error) {
	var all []models.Account
	for _, file := range []string{adminsFile, customersFile} {
		name := r.path(file)
		data, err := r.readStore(name)
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		accounts, err := decodeAccounts(bytes.NewReader(data))
		if err := r.tolerate(name, err); err != nil {
			return nil, err
		}
		all = append(all, accounts...)
	}
	return all, nil
}

func (r *FileRepository) AppendAccount(ctx context.Context, account models.Account) error {
	if strings.ContainsAny(account.Username+account.PasswordHash, " \t\r\n") {
		return fmt.Errorf("account fields must not contain whitespace")
	}
	file := customersFile
	if account.Role == models.RoleAdmin {
		file = adminsFile
	}
	return appendFile(r.path(file), func(w io.Writer) error {
		return encodeAccount(w, account)
	})
}

func (r *FileRepository) AppendBill(ctx context.Context, bill *models.Bill) error {
	return appendFile(r.billPath(bill.Username), func(w io.Writer) error {
		return encodeBill(w, bill, r.currency)
	})
}

func appendFile(name string, write func(io.Writer) error) error {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filepath.Base(name), err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to %s: %w", filepath.Base(name), err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// writeFileAtomic writes to a temp file in the same directory and renames
// it over dst, so readers see either the old content or the new one.
func writeFileAtomic(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	f, err := os.CreateTemp(dir, filepath.Base(dst)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(dst), err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(dst), err)
	}

	// best-effort directory fsync
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
