package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/example/consoleshop/pkg/models"
	"github.com/example/consoleshop/pkg/shop"
	"go.uber.org/zap"
)

// App runs the interactive menus against a Shop.
type App struct {
	shop     *shop.Shop
	p        *prompter
	currency string
	logger   *zap.Logger
}

func New(s *shop.Shop, in io.Reader, out io.Writer, currency string, logger *zap.Logger) *App {
	return &App{
		shop:     s,
		p:        newPrompter(in, out),
		currency: currency,
		logger:   logger,
	}
}

// session is the logged-in state; the zero value is logged out.
type session struct {
	account models.Account
}

func (s *session) loggedIn() bool {
	return s.account.Username != ""
}

func (s *session) logout() {
	s.account = models.Account{}
}

// Run shows the main menu until the user exits or input ends. When ctx
// is cancelled Run stops at the next prompt and returns ctx.Err().
func (a *App) Run(ctx context.Context) error {
	err := a.mainMenu(ctx)
	switch {
	case errors.Is(err, io.EOF):
		a.p.println()
		return nil
	case ctx.Err() != nil:
		a.p.println()
		return ctx.Err()
	}
	return err
}

func (a *App) mainMenu(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.p.println("======Main Menu======")
		a.p.println("1. Register")
		a.p.println("2. Login")
		a.p.println("3. Exit")
		choice, err := a.p.int(ctx, "Enter your choice: ")
		if errors.Is(err, errNotANumber) {
			choice, err = 0, nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = a.register(ctx)
		case 2:
			err = a.login(ctx)
		case 3:
			a.p.println("Exiting program. Goodbye!")
			return nil
		default:
			a.p.println("Invalid choice! Try again.")
		}
		if err != nil {
			return err
		}
	}
}

func (a *App) register(ctx context.Context) error {
	a.p.println("=====Registration======")
	username, err := a.p.line(ctx, "Enter username: ")
	if err != nil {
		return err
	}
	if a.shop.Accounts.Exists(username) {
		a.report(shop.ErrDuplicateUsername)
		return nil
	}
	password, err := a.p.line(ctx, "Enter password: ")
	if err != nil {
		return err
	}
	role, err := a.p.line(ctx, "Enter role (admin/customer): ")
	if err != nil {
		return err
	}

	if _, err := a.shop.Accounts.Register(ctx, username, password, role); err != nil {
		a.report(err)
		return nil
	}
	a.p.println("Registration successful!")
	return nil
}

func (a *App) login(ctx context.Context) error {
	a.p.println()
	a.p.println("--- Login ---")
	username, err := a.p.line(ctx, "Enter username: ")
	if err != nil {
		return err
	}
	password, err := a.p.line(ctx, "Enter password: ")
	if err != nil {
		return err
	}

	account, err := a.shop.Accounts.Login(ctx, username, password)
	if err != nil {
		a.report(err)
		return nil
	}

	sess := &session{account: account}
	a.p.printf("Logged in successfully! Role: %s\n", account.Role)

	switch account.Role {
	case models.RoleAdmin:
		err = a.adminMenu(ctx, sess)
	case models.RoleCustomer:
		err = a.customerMenu(ctx, sess)
	}
	sess.logout()
	return err
}

// report prints the message for a failed operation. Anything that is not
// a user error is a storage failure and is logged.
func (a *App) report(err error) {
	if !shop.IsUserError(err) {
		a.logger.Error("Operation failed", zap.Error(err))
	}

	var stock *shop.StockError
	switch {
	case errors.As(err, &stock):
		a.p.printf("Only %d items in stock.\n", stock.Available)
	case errors.Is(err, shop.ErrInvalidIndex):
		a.p.println("Invalid ID!")
	case errors.Is(err, shop.ErrInvalidInput):
		a.p.println("Invalid input!")
	case errors.Is(err, shop.ErrInsufficientStock):
		a.p.println("Not enough items in stock.")
	case errors.Is(err, shop.ErrEmptyCart):
		a.p.println("Your cart is empty. Nothing to checkout.")
	case errors.Is(err, shop.ErrDuplicateUsername):
		a.p.println("Username already exists! Try another.")
	case errors.Is(err, shop.ErrInvalidRole):
		a.p.println("Invalid role. Try again.")
	case errors.Is(err, shop.ErrAuthFailure):
		a.p.println("Invalid username or password!")
	default:
		a.p.println("Storage error, the last change may not have been saved.")
	}
}

func (a *App) money(s fmt.Stringer) string {
	return s.String() + " " + a.currency
}

func (a *App) listProducts(empty string) {
	products := a.shop.Catalog.Products()
	if len(products) == 0 {
		a.p.println(empty)
		return
	}
	a.p.println("=======Products List=======")
	for _, p := range products {
		a.p.printf("%d. %s | Price: %s | Stock: %d\n", p.ID, p.Name, a.money(p.Price), p.Stock)
	}
}
