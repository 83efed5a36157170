package repository

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/consoleshop/pkg/models"
	"github.com/shopspring/decimal"
)

// Text layouts shared by the flat-file store.
//
//	products:  <name>\n<price> <stock> <id>\n
//	cart:      <name>\n<price> <quantity> <productID>\n
//	accounts:  <username> <password> <role>\n
//
// The trailing id field is optional on read so files written without it
// still load.

const (
	billHeader = "=================New Bill================="
	billFooter = "=================================================="
)

// recordError reports a malformed record; records before it are still valid.
type recordError struct {
	Line int
	Err  error
}

func (e *recordError) Error() string {
	return fmt.Sprintf("malformed record at line %d: %v", e.Line, e.Err)
}

func (e *recordError) Unwrap() error {
	return e.Err
}

// scanPairs walks a two-line-per-record layout, calling fn with the name
// line and the numeric fields of the following line.
func scanPairs(r io.Reader, fn func(name string, fields []string) error) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		name := strings.TrimSuffix(sc.Text(), "\r")
		if !sc.Scan() {
			if strings.TrimSpace(name) == "" {
				return nil
			}
			return &recordError{Line: line, Err: io.ErrUnexpectedEOF}
		}
		line++
		if err := fn(name, strings.Fields(sc.Text())); err != nil {
			return &recordError{Line: line, Err: err}
		}
	}
	return sc.Err()
}

// decodeProducts numbers records stored without an id after both the
// highest id in the file and last.
func decodeProducts(r io.Reader, last uint64) ([]models.Product, error) {
	var products []models.Product
	err := scanPairs(r, func(name string, fields []string) error {
		if len(fields) < 2 || len(fields) > 3 {
			return fmt.Errorf("want 2 or 3 fields, got %d", len(fields))
		}
		price, err := decimal.NewFromString(fields[0])
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		stock, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("stock: %w", err)
		}
		var id uint64
		if len(fields) == 3 {
			if id, err = strconv.ParseUint(fields[2], 10, 64); err != nil {
				return fmt.Errorf("id: %w", err)
			}
		}
		products = append(products, models.Product{
			ID:       id,
			Name:     name,
			Price:    price,
			Stock:    stock,
			Position: len(products),
		})
		return nil
	})
	assignMissingIDs(products, last)
	return products, err
}

func maxProductID(products []models.Product) uint64 {
	var high uint64
	for _, p := range products {
		if p.ID > high {
			high = p.ID
		}
	}
	return high
}

func assignMissingIDs(products []models.Product, last uint64) {
	next := maxProductID(products)
	if last > next {
		next = last
	}
	for i := range products {
		if products[i].ID == 0 {
			next++
			products[i].ID = next
		}
	}
}

func encodeProducts(w io.Writer, products []models.Product) error {
	bw := bufio.NewWriter(w)
	for _, p := range products {
		fmt.Fprintf(bw, "%s\n%s %d %d\n", p.Name, p.Price.String(), p.Stock, p.ID)
	}
	return bw.Flush()
}

func decodeCart(r io.Reader) ([]models.CartItem, error) {
	var items []models.CartItem
	err := scanPairs(r, func(name string, fields []string) error {
		if len(fields) < 2 || len(fields) > 3 {
			return fmt.Errorf("want 2 or 3 fields, got %d", len(fields))
		}
		price, err := decimal.NewFromString(fields[0])
		if err != nil {
			return fmt.Errorf("price: %w", err)
		}
		qty, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("quantity: %w", err)
		}
		var productID uint64
		if len(fields) == 3 {
			if productID, err = strconv.ParseUint(fields[2], 10, 64); err != nil {
				return fmt.Errorf("product id: %w", err)
			}
		}
		items = append(items, models.CartItem{
			ProductID: productID,
			Name:      name,
			Price:     price,
			Quantity:  qty,
		})
		return nil
	})
	return items, err
}

func encodeCart(w io.Writer, items []models.CartItem) error {
	bw := bufio.NewWriter(w)
	for _, it := range items {
		fmt.Fprintf(bw, "%s\n%s %d %d\n", it.Name, it.Price.String(), it.Quantity, it.ProductID)
	}
	return bw.Flush()
}

func decodeAccounts(r io.Reader) ([]models.Account, error) {
	var accounts []models.Account
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return accounts, &recordError{Line: line, Err: fmt.Errorf("want 3 fields, got %d", len(fields))}
		}
		role, err := models.ParseRole(fields[2])
		if err != nil {
			return accounts, &recordError{Line: line, Err: err}
		}
		accounts = append(accounts, models.Account{
			Username:     fields[0],
			PasswordHash: fields[1],
			Role:         role,
		})
	}
	return accounts, sc.Err()
}

func encodeAccount(w io.Writer, a models.Account) error {
	_, err := fmt.Fprintf(w, "%s %s %s\n", a.Username, a.PasswordHash, a.Role)
	return err
}

// encodeBill renders the human-readable receipt appended to bill_<user>.txt.
func encodeBill(w io.Writer, bill *models.Bill, currency string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, billHeader)
	for _, l := range bill.Lines {
		fmt.Fprintf(bw, "%s | Price: %s %s | Qty: %d | Subtotal: %s %s\n",
			l.Name, l.Price.String(), currency, l.Quantity, l.Subtotal.String(), currency)
	}
	fmt.Fprintf(bw, "Total Amount: %s %s\n", bill.Total.String(), currency)
	fmt.Fprintln(bw, billFooter)
	fmt.Fprintln(bw)
	return bw.Flush()
}
