package cli

import (
	"context"
	"errors"
	"io"

	"github.com/shopspring/decimal"

	"expenses/internal/core"
	applog "expenses/internal/log"
	"expenses/internal/services"
)

// ExpenseStore is the part of services.ExpenseStore the menu needs.
type ExpenseStore interface {
	Create(ctx context.Context, amount decimal.Decimal, description, category string) (core.Expense, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	ListAll() []core.Expense
	TotalAmount() decimal.Decimal
}

// App is the interactive menu loop.
type App struct {
	store  ExpenseStore
	prompt *Prompter
	view   *Renderer
	logger *applog.Logger
}

func NewApp(store ExpenseStore, prompt *Prompter, view *Renderer, logger *applog.Logger) *App {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &App{
		store:  store,
		prompt: prompt,
		view:   view,
		logger: logger.WithComponent(applog.ComponentCLI),
	}
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
// End of input and the exit choice return nil; cancellation returns ctx.Err().
func (a *App) Run(ctx context.Context) error {
	for {
		a.view.ShowMenu()
		choice, err := a.prompt.Choice(ctx)
		if err != nil {
			return a.stop(err)
		}

		switch choice {
		case "1":
			err = a.addExpense(ctx)
		case "2":
			err = a.deleteExpense(ctx)
		case "3":
			a.view.ShowExpensesList(a.store.ListAll())
		case "4":
			a.view.ShowTotal(a.store.TotalAmount())
		case "5":
			a.view.ShowMessage("Goodbye!")
			return nil
		default:
			a.view.ShowError("invalid choice, pick an option from 1 to 5")
		}
		if err != nil {
			return a.stop(err)
		}

		if err := a.prompt.Pause(ctx); err != nil {
			return a.stop(err)
		}
	}
}

func (a *App) addExpense(ctx context.Context) error {
	in, err := a.prompt.ExpenseInput(ctx)
	if err != nil {
		if isInputClosed(err) {
			return err
		}
		a.view.ShowError(err.Error())
		return nil
	}

	e, err := a.store.Create(ctx, in.Amount, in.Description, in.Category)
	a.view.ShowExpenseAdded(e)
	if err != nil {
		a.reportNotPersisted(ctx, applog.OpCreate, err)
	}
	return nil
}

func (a *App) deleteExpense(ctx context.Context) error {
	id, err := a.prompt.ExpenseID(ctx)
	if err != nil {
		if isInputClosed(err) {
			return err
		}
		a.view.ShowError(err.Error())
		return nil
	}

	removed, err := a.store.DeleteByID(ctx, id)
	a.view.ShowExpenseDeleted(id, removed)
	if err != nil {
		a.reportNotPersisted(ctx, applog.OpDelete, err)
	}
	return nil
}

func (a *App) reportNotPersisted(ctx context.Context, op string, err error) {
	a.logger.WarnContext(ctx, "Change kept in memory only",
		applog.NewFields().WithOperation(op).WithError(err).ToSlice()...)
	if errors.Is(err, services.ErrNotPersisted) {
		a.view.ShowWarning("the change is kept for this session but could not be saved: " + err.Error())
		return
	}
	a.view.ShowError(err.Error())
}

func (a *App) stop(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func isInputClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
