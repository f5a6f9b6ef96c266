package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DateLayout is the persisted timestamp format (second precision, local time).
	DateLayout = "2006-01-02 15:04:05"

	DefaultCategory    = "Other"
	DefaultDescription = "No description"
)

// Expense is a single recorded expense. Values are fixed once created.
type Expense struct {
	ID          int64
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        string
}

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrMalformedRecord    = errors.New("malformed expense record")
)

// NewExpense builds an expense stamped with at. Inputs are trusted as given.
func NewExpense(id int64, amount decimal.Decimal, description, category string, at time.Time) Expense {
	return Expense{
		ID:          id,
		Amount:      amount,
		Description: description,
		Category:    category,
		Date:        at.Format(DateLayout),
	}
}

// Equal reports whether both expenses carry the same values.
// Amounts are compared numerically, so 15 and 15.0 are equal.
func (e Expense) Equal(o Expense) bool {
	return e.ID == o.ID &&
		e.Amount.Equal(o.Amount) &&
		e.Description == o.Description &&
		e.Category == o.Category &&
		e.Date == o.Date
}

// expenseJSON is the wire form. Pointers let decoding tell absent from zero.
type expenseJSON struct {
	ID          *int64           `json:"id"`
	Amount      *json.RawMessage `json:"amount"`
	Description *string          `json:"description"`
	Category    *string          `json:"category,omitempty"`
	Date        *string          `json:"date,omitempty"`
}

// MarshalJSON writes the canonical object; amount is emitted as a JSON number.
func (e Expense) MarshalJSON() ([]byte, error) {
	amount := json.RawMessage(e.Amount.String())
	return json.Marshal(expenseJSON{
		ID:          &e.ID,
		Amount:      &amount,
		Description: &e.Description,
		Category:    &e.Category,
		Date:        &e.Date,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON. A missing category falls back
// to DefaultCategory and a missing date to the current time; missing id,
// amount or description is ErrMalformedRecord.
func (e *Expense) UnmarshalJSON(data []byte) error {
	var w expenseJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	var missing []string
	if w.ID == nil {
		missing = append(missing, "id")
	}
	if w.Amount == nil {
		missing = append(missing, "amount")
	}
	if w.Description == nil {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedRecord, strings.Join(missing, ", "))
	}
	if *w.ID <= 0 {
		return fmt.Errorf("%w: id %d is not positive", ErrMalformedRecord, *w.ID)
	}

	amount, err := decodeAmount(*w.Amount)
	if err != nil {
		return err
	}

	out := Expense{
		ID:          *w.ID,
		Amount:      amount,
		Description: *w.Description,
		Category:    DefaultCategory,
		Date:        time.Now().Format(DateLayout),
	}
	if w.Category != nil {
		out.Category = *w.Category
	}
	if w.Date != nil {
		if _, err := time.ParseInLocation(DateLayout, *w.Date, time.Local); err != nil {
			return fmt.Errorf("%w: date %q: %v", ErrMalformedRecord, *w.Date, err)
		}
		out.Date = *w.Date
	}

	*e = out
	return nil
}

// decodeAmount accepts only a JSON number; quoted strings are rejected.
func decodeAmount(raw json.RawMessage) (decimal.Decimal, error) {
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return decimal.Decimal{}, fmt.Errorf("%w: amount %s is not a number", ErrMalformedRecord, raw)
	}
	amount, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: amount %s: %v", ErrMalformedRecord, raw, err)
	}
	return amount, nil
}

// Normalize applies the interactive defaults: blank description and category
// are replaced by their placeholders, surrounding whitespace is trimmed.
func Normalize(description, category string) (string, string) {
	description = strings.TrimSpace(description)
	category = strings.TrimSpace(category)
	if description == "" {
		description = DefaultDescription
	}
	if category == "" {
		category = DefaultCategory
	}
	return description, category
}

// ValidateDescription rejects descriptions longer than maxLen runes.
// A maxLen of zero or less disables the check.
func ValidateDescription(description string, maxLen int) error {
	if maxLen > 0 && len([]rune(description)) > maxLen {
		return fmt.Errorf("%w (max %d characters)", ErrDescriptionTooLong, maxLen)
	}
	return nil
}
