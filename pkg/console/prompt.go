package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/consoleshop/pkg/models"
	"github.com/shopspring/decimal"
)

// errNotANumber marks input that failed to parse; menus re-prompt on it.
var errNotANumber = errors.New("not a number")

// prompter reads one answer per line. Lines are read by a background
// goroutine so a prompt can be abandoned when the context is cancelled.
// io.EOF from the underlying reader is passed through so callers can end
// the session.
type prompter struct {
	lines <-chan string
	err   error
	out   io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	lines := make(chan string)
	p := &prompter{lines: lines, out: out}
	go p.scan(bufio.NewScanner(in), lines)
	return p
}

// scan sets p.err before closing lines; readers only look at it after
// seeing the close.
func (p *prompter) scan(sc *bufio.Scanner, lines chan<- string) {
	for sc.Scan() {
		lines <- sc.Text()
	}
	p.err = sc.Err()
	close(lines)
}

func (p *prompter) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *prompter) println(args ...interface{}) {
	fmt.Fprintln(p.out, args...)
}

// line prints label and returns the next input line without surrounding
// whitespace, or ctx.Err() if ctx ends first.
func (p *prompter) line(ctx context.Context, label string) (string, error) {
	p.printf("%s", label)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case s, ok := <-p.lines:
		if !ok {
			if p.err != nil {
				return "", p.err
			}
			return "", io.EOF
		}
		return strings.TrimSpace(s), nil
	}
}

func (p *prompter) int(ctx context.Context, label string) (int64, error) {
	s, err := p.line(ctx, label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errNotANumber
	}
	return n, nil
}

func (p *prompter) id(ctx context.Context, label string) (uint64, error) {
	s, err := p.line(ctx, label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errNotANumber
	}
	return n, nil
}

// count reads a non-negative integer such as a stock level.
func (p *prompter) count(ctx context.Context, label string) (int64, error) {
	n, err := p.int(ctx, label)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errNotANumber
	}
	return n, nil
}

// price reads a non-negative amount with at most models.PriceScale
// fractional digits.
func (p *prompter) price(ctx context.Context, label string) (decimal.Decimal, error) {
	s, err := p.line(ctx, label)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !models.ValidPrice(d) {
		return decimal.Zero, errNotANumber
	}
	return d, nil
}
