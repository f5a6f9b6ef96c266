// Package export writes the expense list to an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"expenses/internal/core"
)

// SheetName is the worksheet that holds the expenses.
const SheetName = "Expenses"

var headers = []string{"ID", "Amount", "Category", "Description", "Date"}

// WriteXLSX writes one row per expense followed by a total row.
// Amounts are stored as numbers so the sheet can sum them itself.
func WriteXLSX(w io.Writer, expenses []core.Expense, total decimal.Decimal, currency string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	amountFmt := "#,##0.00"
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt})
	if err != nil {
		return fmt.Errorf("amount style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		CustomNumFmt: &amountFmt,
	})
	if err != nil {
		return fmt.Errorf("total style: %w", err)
	}

	for col, width := range map[string]float64{"A": 8, "B": 14, "C": 16, "D": 40, "E": 20} {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("column width %s: %w", col, err)
		}
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "E1", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, e := range expenses {
		row := i + 2
		amount, _ := e.Amount.Float64()
		values := []any{e.ID, amount, e.Category, e.Description, e.Date}
		if err := f.SetSheetRow(SheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("write expense %d: %w", e.ID, err)
		}
		cell := fmt.Sprintf("B%d", row)
		if err := f.SetCellStyle(SheetName, cell, cell, amountStyle); err != nil {
			return fmt.Errorf("style expense %d: %w", e.ID, err)
		}
	}

	totalRow := len(expenses) + 2
	totalValue, _ := total.Float64()
	summary := []any{"Total", totalValue, currency, fmt.Sprintf("%d expenses", len(expenses))}
	if err := f.SetSheetRow(SheetName, fmt.Sprintf("A%d", totalRow), &summary); err != nil {
		return fmt.Errorf("write total: %w", err)
	}
	if err := f.SetCellStyle(SheetName, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("E%d", totalRow), totalStyle); err != nil {
		return fmt.Errorf("style total: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
