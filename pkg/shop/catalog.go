package shop

import (
	"context"
	"fmt"

	"github.com/example/consoleshop/pkg/models"
	"github.com/example/consoleshop/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Catalog is the ordered list of products shared by every customer.
// Every mutation rewrites the product store.
type Catalog struct {
	products []models.Product
	nextID   uint64
	store    repository.ProductStore
	logger   *zap.Logger
}

// LoadCatalog reads the product store once.
func LoadCatalog(ctx context.Context, store repository.ProductStore, logger *zap.Logger) (*Catalog, error) {
	products, err := store.LoadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	last, err := store.LastProductID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load product sequence: %w", err)
	}

	c := &Catalog{
		products: products,
		nextID:   last,
		store:    store,
		logger:   logger,
	}
	for _, p := range products {
		if p.ID > c.nextID {
			c.nextID = p.ID
		}
	}
	c.nextID++

	logger.Info("Catalog loaded", zap.Int("products", len(products)))
	return c, nil
}

func (c *Catalog) Len() int {
	return len(c.products)
}

// Products returns a copy of the catalog in display order.
func (c *Catalog) Products() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Lookup(id uint64) (models.Product, bool) {
	i := c.indexOf(id)
	if i < 0 {
		return models.Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) indexOf(id uint64) int {
	for i := range c.products {
		if c.products[i].ID == id {
			return i
		}
	}
	return -1
}

// Persist rewrites the product store with the current state.
func (c *Catalog) Persist(ctx context.Context) error {
	for i := range c.products {
		c.products[i].Position = i
	}
	if err := c.store.SaveProducts(ctx, c.products); err != nil {
		c.logger.Error("Failed to save catalog", zap.Error(err))
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

func validProduct(name string, price decimal.Decimal, stock int64) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty product name", ErrInvalidInput)
	case !models.ValidPrice(price):
		return fmt.Errorf("%w: price %s", ErrInvalidInput, price)
	case stock < 0:
		return fmt.Errorf("%w: negative stock", ErrInvalidInput)
	}
	return nil
}

// Add appends a product under a fresh id.
func (c *Catalog) Add(ctx context.Context, name string, price decimal.Decimal, stock int64) (models.Product, error) {
	if err := validProduct(name, price, stock); err != nil {
		return models.Product{}, err
	}
	p := models.Product{
		ID:       c.nextID,
		Name:     name,
		Price:    price,
		Stock:    stock,
		Position: len(c.products),
	}
	c.nextID++
	c.products = append(c.products, p)

	c.logger.Info("Product added",
		zap.Uint64("product_id", p.ID),
		zap.String("name", p.Name),
		zap.String("price", p.Price.String()),
		zap.Int64("stock", p.Stock))

	return p, c.Persist(ctx)
}

// Edit overwrites every field of the product with the given id.
func (c *Catalog) Edit(ctx context.Context, id uint64, name string, price decimal.Decimal, stock int64) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, id)
	}
	if err := validProduct(name, price, stock); err != nil {
		return err
	}

	c.products[i].Name = name
	c.products[i].Price = price
	c.products[i].Stock = stock

	c.logger.Info("Product updated", zap.Uint64("product_id", id))
	return c.Persist(ctx)
}

// Remove deletes the product; the rest keep their order and ids.
func (c *Catalog) Remove(ctx context.Context, id uint64) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, id)
	}

	c.products = append(c.products[:i], c.products[i+1:]...)

	c.logger.Info("Product removed", zap.Uint64("product_id", id))
	return c.Persist(ctx)
}

// DecrementStock takes qty units out of stock.
func (c *Catalog) DecrementStock(ctx context.Context, id uint64, qty int64) error {
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, id)
	}
	if qty < 1 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if c.products[i].Stock < qty {
		return &StockError{Product: c.products[i].Name, Available: c.products[i].Stock, Requested: qty}
	}

	c.products[i].Stock -= qty
	if err := c.Persist(ctx); err != nil {
		c.products[i].Stock += qty
		return err
	}
	return nil
}

// RestoreStock puts qty units back. A product removed in the meantime is
// not resurrected; the units are dropped and false is returned.
func (c *Catalog) RestoreStock(ctx context.Context, id uint64, qty int64) (bool, error) {
	i := c.indexOf(id)
	if i < 0 {
		c.logger.Warn("Released stock for unknown product",
			zap.Uint64("product_id", id),
			zap.Int64("quantity", qty))
		return false, nil
	}

	c.products[i].Stock += qty
	return true, c.Persist(ctx)
}

// StockError is returned when a product cannot cover a requested quantity.
type StockError struct {
	Product   string
	Available int64
	Requested int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("only %d items of %s in stock", e.Available, e.Product)
}

func (e *StockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
