package console

import (
	"context"
	"errors"

	"github.com/example/consoleshop/pkg/shop"
)

func (a *App) customerMenu(ctx context.Context, sess *session) error {
	cart, err := a.shop.OpenCart(ctx, sess.account.Username)
	if err != nil {
		a.report(err)
		sess.logout()
		return nil
	}
	a.p.printf("Customer Username: %s\n", sess.account.Username)

	for sess.loggedIn() {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.p.println(" =======Customer Menu=======")
		a.p.println("1. View Products")
		a.p.println("2. Add to Cart")
		a.p.println("3. View Cart")
		a.p.println("4. Checkout")
		a.p.println("5. Remove from Cart")
		a.p.println("6. Empty Cart")
		a.p.println("7. Logout")
		choice, err := a.p.int(ctx, "Enter your choice: ")
		if errors.Is(err, errNotANumber) {
			choice, err = 0, nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			a.listProducts("No products available currently.")
		case 2:
			err = a.addToCart(ctx, cart)
		case 3:
			a.viewCart(cart)
		case 4:
			a.checkout(ctx, cart)
		case 5:
			err = a.removeFromCart(ctx, cart)
		case 6:
			a.emptyCart(ctx, cart)
		case 7:
			a.p.println("Logging out... Thanks for visiting our shop.")
			sess.logout()
		default:
			a.p.println("Invalid choice! Try again.")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *App) addToCart(ctx context.Context, cart *shop.Cart) error {
	if a.shop.Catalog.Len() == 0 {
		a.p.println("No products available to add.")
		return nil
	}
	id, err := a.p.id(ctx, "Enter product ID: ")
	if err != nil {
		return a.inputErr(err)
	}
	qty, err := a.p.int(ctx, "Enter quantity: ")
	if err != nil {
		return a.inputErr(err)
	}

	if _, err := cart.AddItem(ctx, id, qty); err != nil {
		a.report(err)
		return nil
	}
	a.p.println("Added to your cart successfully!")
	return nil
}

func (a *App) viewCart(cart *shop.Cart) {
	items := cart.Items()
	if len(items) == 0 {
		a.p.println("Your cart is empty.")
		return
	}
	a.p.println("=======Your Cart=======")
	for i, it := range items {
		a.p.printf("%d. %s | Price: %s | Qty: %d\n", i+1, it.Name, a.money(it.Price), it.Quantity)
	}
	a.p.printf("Cart Total: %s\n", a.money(cart.Total()))
}

func (a *App) checkout(ctx context.Context, cart *shop.Cart) {
	bill, err := a.shop.Checkout(ctx, cart)
	if bill == nil {
		a.report(err)
		return
	}

	a.p.println("=======Checkout=======")
	for _, l := range bill.Lines {
		a.p.printf("%s | Price: %s | Qty: %d | Subtotal: %s\n",
			l.Name, a.money(l.Price), l.Quantity, a.money(l.Subtotal))
	}
	a.p.printf("Total Amount: %s\n", a.money(bill.Total))
	a.p.println("Thank you for your purchase! Your products will be delivered soon.")

	// the bill is recorded; a failure after that only affects the cart file
	if err != nil {
		a.report(err)
	}
}

func (a *App) removeFromCart(ctx context.Context, cart *shop.Cart) error {
	if cart.IsEmpty() {
		a.p.println("Your cart is empty.")
		return nil
	}
	a.viewCart(cart)
	line, err := a.p.int(ctx, "Enter cart item number to remove: ")
	if err != nil {
		return a.inputErr(err)
	}

	item, err := cart.RemoveItem(ctx, int(line))
	if err != nil {
		a.report(err)
		return nil
	}
	a.p.printf("Removed %s from your cart.\n", item.Name)
	return nil
}

func (a *App) emptyCart(ctx context.Context, cart *shop.Cart) {
	if cart.IsEmpty() {
		a.p.println("Your cart is empty.")
		return
	}
	if err := cart.Abandon(ctx); err != nil {
		a.report(err)
		return
	}
	a.p.println("Your cart has been emptied.")
}
