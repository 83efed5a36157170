package console

import (
	"context"
	"errors"
)

func (a *App) adminMenu(ctx context.Context, sess *session) error {
	for sess.loggedIn() {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.p.println("=======Admin Menu=======")
		a.p.println("1. Add Product")
		a.p.println("2. View Products")
		a.p.println("3. Edit Product")
		a.p.println("4. Remove Product")
		a.p.println("5. Logout")
		choice, err := a.p.int(ctx, "Enter your choice: ")
		if errors.Is(err, errNotANumber) {
			choice, err = 0, nil
		}
		if err != nil {
			return err
		}

		switch choice {
		case 1:
			err = a.addProduct(ctx)
		case 2:
			a.listProducts("No products available.")
		case 3:
			err = a.editProduct(ctx)
		case 4:
			err = a.removeProduct(ctx)
		case 5:
			a.p.println("Logging out...")
			sess.logout()
		default:
			a.p.println("Invalid choice!")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// inputErr separates bad answers, which are reported, from end of input,
// which is returned.
func (a *App) inputErr(err error) error {
	if errors.Is(err, errNotANumber) {
		a.p.println("Invalid input!")
		return nil
	}
	return err
}

func (a *App) addProduct(ctx context.Context) error {
	name, err := a.p.line(ctx, "Enter product name: ")
	if err != nil {
		return err
	}
	price, err := a.p.price(ctx, "Enter price (in " + a.currency + "): ")
	if err != nil {
		return a.inputErr(err)
	}
	stock, err := a.p.count(ctx, "Enter stock: ")
	if err != nil {
		return a.inputErr(err)
	}

	if _, err := a.shop.Catalog.Add(ctx, name, price, stock); err != nil {
		a.report(err)
		return nil
	}
	a.p.println("Product added successfully!")
	return nil
}

func (a *App) editProduct(ctx context.Context) error {
	id, err := a.p.id(ctx, "Enter product ID to edit: ")
	if err != nil {
		if errors.Is(err, errNotANumber) {
			a.p.println("Invalid ID!")
			return nil
		}
		return err
	}
	if _, ok := a.shop.Catalog.Lookup(id); !ok {
		a.p.println("Invalid ID!")
		return nil
	}

	name, err := a.p.line(ctx, "Enter new name: ")
	if err != nil {
		return err
	}
	price, err := a.p.price(ctx, "Enter new price: ")
	if err != nil {
		return a.inputErr(err)
	}
	stock, err := a.p.count(ctx, "Enter new stock: ")
	if err != nil {
		return a.inputErr(err)
	}

	if err := a.shop.Catalog.Edit(ctx, id, name, price, stock); err != nil {
		a.report(err)
		return nil
	}
	a.p.println("Product updated successfully!")
	return nil
}

func (a *App) removeProduct(ctx context.Context) error {
	id, err := a.p.id(ctx, "Enter product ID to remove: ")
	if err != nil {
		if errors.Is(err, errNotANumber) {
			a.p.println("Invalid ID!")
			return nil
		}
		return err
	}

	if err := a.shop.Catalog.Remove(ctx, id); err != nil {
		a.report(err)
		return nil
	}
	a.p.println("Product removed successfully!")
	return nil
}
