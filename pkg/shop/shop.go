package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/example/consoleshop/pkg/models"
	"github.com/example/consoleshop/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Shop owns the catalog and account directory and hands out carts.
type Shop struct {
	Catalog  *Catalog
	Accounts *Directory

	carts  repository.CartStore
	ledger repository.BillLedger
	logger *zap.Logger
	now    func() time.Time
}

// New loads the catalog and accounts from stores.
func New(ctx context.Context, stores *repository.Stores, logger *zap.Logger) (*Shop, error) {
	catalog, err := LoadCatalog(ctx, stores.Products, logger.Named("catalog"))
	if err != nil {
		return nil, err
	}
	accounts, err := LoadDirectory(ctx, stores.Accounts, logger.Named("accounts"))
	if err != nil {
		return nil, err
	}

	return &Shop{
		Catalog:  catalog,
		Accounts: accounts,
		carts:    stores.Carts,
		ledger:   stores.Bills,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// OpenCart loads the stored cart of username. It is called once per
// customer session.
func (s *Shop) OpenCart(ctx context.Context, username string) (*Cart, error) {
	items, err := s.carts.LoadCart(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &Cart{
		owner:   username,
		items:   items,
		catalog: s.Catalog,
		store:   s.carts,
		logger:  s.logger.Named("cart"),
	}, nil
}

// Checkout bills every line of the cart, appends the bill to the ledger
// and empties the cart. Stock was already taken when the items were added,
// so the catalog is only rewritten, not changed.
func (s *Shop) Checkout(ctx context.Context, cart *Cart) (*models.Bill, error) {
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	bill := &models.Bill{
		Username:  cart.Owner(),
		Lines:     make([]models.BillLine, 0, cart.Len()),
		Total:     decimal.Zero,
		CreatedAt: s.now(),
	}
	for _, it := range cart.Items() {
		subtotal := it.Subtotal()
		bill.Lines = append(bill.Lines, models.BillLine{
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			Subtotal: subtotal,
		})
		bill.Total = bill.Total.Add(subtotal)
	}

	if err := s.ledger.AppendBill(ctx, bill); err != nil {
		s.logger.Error("Failed to record bill", zap.String("username", bill.Username), zap.Error(err))
		return nil, fmt.Errorf("failed to record bill: %w", err)
	}

	if err := cart.Clear(ctx); err != nil {
		s.logger.Warn("Bill recorded but cart not emptied, another checkout would bill the same lines",
			zap.String("username", bill.Username),
			zap.Int("lines", cart.Len()))
		return bill, err
	}
	if err := s.Catalog.Persist(ctx); err != nil {
		return bill, err
	}

	s.logger.Info("Checkout completed",
		zap.String("username", bill.Username),
		zap.Int("lines", len(bill.Lines)),
		zap.String("total", bill.Total.String()))
	return bill, nil
}
