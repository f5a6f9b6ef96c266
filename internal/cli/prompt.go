package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
)

// ErrInvalidID is returned when the typed identifier is not a positive integer.
var ErrInvalidID = errors.New("invalid id")

// ExpenseInput is what the user typed for a new expense, already parsed
// and defaulted.
type ExpenseInput struct {
	Amount      decimal.Decimal
	Description string
	Category    string
}

type line struct {
	text string
	err  error
}

// Prompter asks questions on out and reads answers from in, one per line.
// Reads are abandoned when the context is cancelled. Close stops the reader
// goroutine; one blocked inside in.Read exits once that read returns.
type Prompter struct {
	out     io.Writer
	lines   <-chan line
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	maxDesc int
}

func NewPrompter(in io.Reader, out io.Writer, maxDescription int) *Prompter {
	lines := make(chan line)
	p := &Prompter{
		out:     out,
		lines:   lines,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		maxDesc: maxDescription,
	}
	go p.read(in, lines)
	return p
}

func (p *Prompter) read(in io.Reader, lines chan<- line) {
	defer close(p.stopped)
	defer close(lines)

	send := func(l line) bool {
		select {
		case lines <- l:
			return true
		case <-p.done:
			return false
		}
	}

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if !send(line{text: sc.Text()}) {
			return
		}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	send(line{err: err})
}

// Close releases the reader goroutine. Later reads report io.EOF.
func (p *Prompter) Close() {
	p.once.Do(func() { close(p.done) })
}

func (p *Prompter) ask(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	select {
	case <-p.done:
		return "", io.EOF
	default:
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-p.done:
		return "", io.EOF
	case l, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}

// Choice reads a menu selection.
func (p *Prompter) Choice(ctx context.Context) (string, error) {
	return p.ask(ctx, "\nChoose an option (1-5): ")
}

// ExpenseInput reads amount, description and category. The amount must be
// a positive number; blank description and category get their defaults.
func (p *Prompter) ExpenseInput(ctx context.Context) (ExpenseInput, error) {
	raw, err := p.ask(ctx, "Amount: ")
	if err != nil {
		return ExpenseInput{}, err
	}
	amount, err := core.ParseAmount(raw)
	if err != nil {
		return ExpenseInput{}, fmt.Errorf("%w %q: enter a positive number", err, raw)
	}

	description, err := p.ask(ctx, "Description: ")
	if err != nil {
		return ExpenseInput{}, err
	}
	category, err := p.ask(ctx, fmt.Sprintf("Category (default '%s'): ", core.DefaultCategory))
	if err != nil {
		return ExpenseInput{}, err
	}

	description, category = core.Normalize(description, category)
	if err := core.ValidateDescription(description, p.maxDesc); err != nil {
		return ExpenseInput{}, err
	}

	return ExpenseInput{Amount: amount, Description: description, Category: category}, nil
}

// ExpenseID reads the identifier of the expense to delete.
func (p *Prompter) ExpenseID(ctx context.Context) (int64, error) {
	raw, err := p.ask(ctx, "Expense id to delete: ")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w %q", ErrInvalidID, raw)
	}
	return id, nil
}

// Pause waits for the user to press Enter.
func (p *Prompter) Pause(ctx context.Context) error {
	_, err := p.ask(ctx, "\nPress Enter to continue...")
	return err
}
