package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/consoleshop/pkg/models"
	"github.com/example/consoleshop/pkg/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Directory maps usernames to credentials and roles for both admins and
// customers.
type Directory struct {
	accounts []models.Account
	store    repository.AccountStore
	logger   *zap.Logger
	cost     int
}

func LoadDirectory(ctx context.Context, store repository.AccountStore, logger *zap.Logger) (*Directory, error) {
	accounts, err := store.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	logger.Info("Accounts loaded", zap.Int("accounts", len(accounts)))
	return &Directory{
		accounts: accounts,
		store:    store,
		logger:   logger,
		cost:     bcrypt.DefaultCost,
	}, nil
}

// SetHashCost changes the bcrypt cost used for new registrations.
func (d *Directory) SetHashCost(cost int) {
	d.cost = cost
}

func (d *Directory) Len() int {
	return len(d.accounts)
}

// Exists reports whether any account, admin or customer, uses username.
func (d *Directory) Exists(username string) bool {
	for _, a := range d.accounts {
		if a.Username == username {
			return true
		}
	}
	return false
}

// maxPasswordLen is the longest input bcrypt accepts.
const maxPasswordLen = 72

// validCredential rejects values that cannot be stored as one
// space-separated field or used in a per-user file name.
func validCredential(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \t\r\n/\\")
}

// Register creates an account. The username is checked for uniqueness
// across both roles before the role is validated.
func (d *Directory) Register(ctx context.Context, username, password, role string) (models.Account, error) {
	if !validCredential(username) {
		return models.Account{}, fmt.Errorf("%w: username must be a single word", ErrInvalidInput)
	}
	if d.Exists(username) {
		return models.Account{}, fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
	}
	if !validCredential(password) {
		return models.Account{}, fmt.Errorf("%w: password must be a single word", ErrInvalidInput)
	}
	if len(password) > maxPasswordLen {
		return models.Account{}, fmt.Errorf("%w: password longer than %d bytes", ErrInvalidInput, maxPasswordLen)
	}
	r, err := models.ParseRole(role)
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return models.Account{}, fmt.Errorf("%w: password longer than %d bytes", ErrInvalidInput, maxPasswordLen)
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := models.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         r,
		CreatedAt:    time.Now(),
	}
	if err := d.store.AppendAccount(ctx, account); err != nil {
		d.logger.Error("Failed to store account", zap.String("username", username), zap.Error(err))
		return models.Account{}, fmt.Errorf("failed to store account: %w", err)
	}
	d.accounts = append(d.accounts, account)

	d.logger.Info("Account registered", zap.String("username", username), zap.String("role", r.String()))
	return account, nil
}

// Login returns the first account matching both username and password.
// Unknown users and wrong passwords fail the same way.
func (d *Directory) Login(ctx context.Context, username, password string) (models.Account, error) {
	for _, a := range d.accounts {
		if a.Username == username && passwordMatches(a.PasswordHash, password) {
			d.logger.Info("Login succeeded", zap.String("username", username), zap.String("role", a.Role.String()))
			return a, nil
		}
	}
	d.logger.Info("Login failed", zap.String("username", username))
	return models.Account{}, ErrAuthFailure
}

// passwordMatches accepts bcrypt hashes and, for records written before
// hashing was introduced, plaintext passwords.
func passwordMatches(stored, password string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return stored == password
}
