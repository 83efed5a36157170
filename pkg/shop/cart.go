package shop

import (
	"context"
	"fmt"

	"github.com/example/consoleshop/pkg/models"
	"github.com/example/consoleshop/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Cart is one customer's pending selection. Stock is reserved in the
// catalog when an item is added and released when it is removed or the
// cart is abandoned; checkout keeps the reservation.
type Cart struct {
	owner   string
	items   []models.CartItem
	catalog *Catalog
	store   repository.CartStore
	logger  *zap.Logger
}

func (c *Cart) Owner() string {
	return c.owner
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Items returns a copy of the cart lines in the order they were added.
func (c *Cart) Items() []models.CartItem {
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (c *Cart) save(ctx context.Context) error {
	return c.write(ctx, c.items)
}

func (c *Cart) write(ctx context.Context, items []models.CartItem) error {
	if err := c.store.SaveCart(ctx, c.owner, items); err != nil {
		c.logger.Error("Failed to save cart", zap.String("username", c.owner), zap.Error(err))
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// AddItem snapshots the product's current name and price into a new line
// and reserves qty units of its stock.
func (c *Cart) AddItem(ctx context.Context, productID uint64, qty int64) (models.CartItem, error) {
	if qty < 1 {
		return models.CartItem{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	p, ok := c.catalog.Lookup(productID)
	if !ok {
		return models.CartItem{}, fmt.Errorf("%w: no product with id %d", ErrInvalidInput, productID)
	}

	if err := c.catalog.DecrementStock(ctx, productID, qty); err != nil {
		return models.CartItem{}, err
	}

	item := models.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  qty,
	}
	c.items = append(c.items, item)

	if err := c.save(ctx); err != nil {
		c.items = c.items[:len(c.items)-1]
		if _, rerr := c.catalog.RestoreStock(ctx, productID, qty); rerr != nil {
			c.logger.Error("Failed to release reservation", zap.Uint64("product_id", productID), zap.Error(rerr))
		}
		return models.CartItem{}, err
	}

	c.logger.Info("Item added to cart",
		zap.String("username", c.owner),
		zap.Uint64("product_id", productID),
		zap.Int64("quantity", qty))
	return item, nil
}

// RemoveItem drops the 1-based line and returns its stock to the catalog.
func (c *Cart) RemoveItem(ctx context.Context, line int) (models.CartItem, error) {
	if line < 1 || line > len(c.items) {
		return models.CartItem{}, fmt.Errorf("%w: %d", ErrInvalidIndex, line)
	}

	item := c.items[line-1]
	c.items = append(c.items[:line-1], c.items[line:]...)
	if err := c.save(ctx); err != nil {
		c.items = append(c.items[:line-1], append([]models.CartItem{item}, c.items[line-1:]...)...)
		return models.CartItem{}, err
	}

	c.release(ctx, item)
	return item, nil
}

// Clear empties the cart without touching stock. The lines stay in
// memory when the empty cart cannot be stored, matching the store.
func (c *Cart) Clear(ctx context.Context) error {
	if err := c.write(ctx, nil); err != nil {
		return err
	}
	c.items = nil
	return nil
}

// Abandon releases every reservation and empties the cart.
func (c *Cart) Abandon(ctx context.Context) error {
	items := c.items
	if err := c.Clear(ctx); err != nil {
		return err
	}
	for _, it := range items {
		c.release(ctx, it)
	}
	c.logger.Info("Cart abandoned", zap.String("username", c.owner), zap.Int("lines", len(items)))
	return nil
}

// release is best effort: the cart change is already stored, so a failed
// catalog write is logged rather than undone.
func (c *Cart) release(ctx context.Context, item models.CartItem) {
	if item.ProductID == 0 {
		return
	}
	if _, err := c.catalog.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
		c.logger.Error("Failed to release reservation",
			zap.Uint64("product_id", item.ProductID),
			zap.Int64("quantity", item.Quantity),
			zap.Error(err))
	}
}
