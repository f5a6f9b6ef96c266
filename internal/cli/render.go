package cli

import (
	"fmt"
	"io"
	"math/big"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

const (
	menuWidth          = 50
	listWidth          = 80
	listDescriptionMax = 28
)

// Renderer writes human-readable output for every outcome of the menu.
type Renderer struct {
	out      io.Writer
	currency string
}

func NewRenderer(out io.Writer, currency string) *Renderer {
	return &Renderer{out: out, currency: currency}
}

func (r *Renderer) ShowMenu() {
	rule := strings.Repeat("=", menuWidth)
	fmt.Fprintf(r.out, "\n%s\nEXPENSE TRACKER\n%s\n", rule, rule)
	fmt.Fprintln(r.out, "1. Add a new expense")
	fmt.Fprintln(r.out, "2. Delete an expense by id")
	fmt.Fprintln(r.out, "3. List expenses")
	fmt.Fprintln(r.out, "4. Show total amount")
	fmt.Fprintln(r.out, "5. Exit")
	fmt.Fprintln(r.out, rule)
}

func (r *Renderer) ShowExpenseAdded(e core.Expense) {
	fmt.Fprintln(r.out, "\nExpense added.")
	fmt.Fprintf(r.out, "   ID:          %d\n", e.ID)
	fmt.Fprintf(r.out, "   Amount:      %s\n", r.money(e.Amount))
	fmt.Fprintf(r.out, "   Description: %s\n", e.Description)
	fmt.Fprintf(r.out, "   Category:    %s\n", e.Category)
	fmt.Fprintf(r.out, "   Date:        %s\n", e.Date)
}

func (r *Renderer) ShowExpenseDeleted(id int64, removed bool) {
	if removed {
		fmt.Fprintf(r.out, "\nExpense id=%d deleted.\n", id)
		return
	}
	fmt.Fprintf(r.out, "\nExpense id=%d not found.\n", id)
}

func (r *Renderer) ShowExpensesList(expenses []core.Expense) {
	if len(expenses) == 0 {
		fmt.Fprintln(r.out, "\nNo expenses recorded yet.")
		return
	}

	rule := strings.Repeat("=", listWidth)
	fmt.Fprintf(r.out, "\n%s\nEXPENSES\n%s\n", rule, rule)

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAmount\tCategory\tDescription\tDate")
	for _, e := range expenses {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			e.ID, FormatMoney(e.Amount), e.Category, truncate(e.Description, listDescriptionMax), e.Date)
	}
	tw.Flush()

	fmt.Fprintln(r.out, rule)
	fmt.Fprintf(r.out, "Total expenses: %d\n", len(expenses))
}

func (r *Renderer) ShowTotal(total decimal.Decimal) {
	rule := strings.Repeat("=", menuWidth)
	fmt.Fprintf(r.out, "\n%s\nTOTAL SPENT: %s\n%s\n", rule, r.money(total), rule)
}

func (r *Renderer) ShowError(msg string) {
	fmt.Fprintf(r.out, "\nError: %s\n", msg)
}

func (r *Renderer) ShowWarning(msg string) {
	fmt.Fprintf(r.out, "\nWarning: %s\n", msg)
}

func (r *Renderer) ShowMessage(msg string) {
	fmt.Fprintf(r.out, "\n%s\n", msg)
}

func (r *Renderer) money(d decimal.Decimal) string {
	return FormatMoney(d) + " " + r.currency
}

// FormatMoney renders d with two decimals and thousands separators,
// e.g. 1234567.5 -> "1,234,567.50". Formatting never goes through float64.
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return sign + fixed
	}
	return sign + humanize.BigComma(n) + "." + frac
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
