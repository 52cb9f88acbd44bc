package dashboard

import (
	"fmt"
	"slices"
	"time"

	"budgetdash/internal/core"
	"budgetdash/internal/log"
)

// Controller holds the loaded transactions and the selection, and keeps the
// derived View current after every change. It is not safe for concurrent
// use; callers sharing one across goroutines must synchronize.
type Controller struct {
	cfg    core.BudgetConfig
	now    func() time.Time
	logger *log.Logger

	txs         []core.Transaction
	sel         Selection
	monthChosen bool
	view        View
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l.WithComponent(log.ComponentDashboard)
		}
	}
}

// NewController returns a controller with no transactions and the default
// selection.
func NewController(cfg core.BudgetConfig, opts ...Option) *Controller {
	c := &Controller{
		cfg:    cfg,
		now:    time.Now,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.sel = DefaultSelection(c.now())
	c.recompute()
	return c
}

// Load replaces the transactions. Unless a month was chosen explicitly, the
// selection moves to the month of the first dated transaction.
func (c *Controller) Load(txs []core.Transaction) {
	c.txs = slices.Clone(txs)
	if !c.monthChosen {
		c.sel.Month = InitialMonth(c.txs, c.now())
	}
	c.recompute()
}

// SetMonth selects a month.
func (c *Controller) SetMonth(ym core.YearMonth) error {
	if ym.IsZero() || ym.Month < time.January || ym.Month > time.December {
		return fmt.Errorf("%w: %v", core.ErrInvalidMonth, ym)
	}
	c.sel.Month = ym
	c.monthChosen = true
	c.recompute()
	return nil
}

// SetGranularity selects the time-series bucket size.
func (c *Controller) SetGranularity(g core.TimeGranularity) error {
	if !g.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidGranularity, g)
	}
	c.sel.Granularity = g
	c.recompute()
	return nil
}

// SetCategoryFilter replaces the selected categories. An empty list
// disables category filtering.
func (c *Controller) SetCategoryFilter(categories []string) {
	c.sel.Categories = slices.Clone(categories)
	if c.sel.Categories == nil {
		c.sel.Categories = []string{}
	}
	c.recompute()
}

// ToggleCategory adds the category to the filter, or removes it when it is
// already selected.
func (c *Controller) ToggleCategory(category string) {
	if i := slices.Index(c.sel.Categories, category); i >= 0 {
		c.sel.Categories = slices.Delete(slices.Clone(c.sel.Categories), i, i+1)
	} else {
		c.sel.Categories = append(slices.Clone(c.sel.Categories), category)
	}
	c.recompute()
}

// SetSearch sets the table search text.
func (c *Controller) SetSearch(text string) {
	c.sel.Search = text
	c.recompute()
}

// Selection returns a copy of the current selection.
func (c *Controller) Selection() Selection {
	return c.sel.Clone()
}

// Transactions returns a copy of the loaded transactions.
func (c *Controller) Transactions() []core.Transaction {
	return slices.Clone(c.txs)
}

// View returns the view derived from the current state.
func (c *Controller) View() View {
	return c.view
}

func (c *Controller) recompute() {
	v, err := Derive(c.txs, c.sel, c.cfg, c.now())
	if err != nil {
		// Setters validate, so this only happens with a corrupted selection.
		c.logger.Error("Failed to derive dashboard view", log.FieldError, err)
		return
	}
	c.view = v
	c.logger.Debug("Derived dashboard view",
		log.FieldOperation, log.OpDerive,
		log.FieldMonth, c.sel.Month.String(),
		log.FieldGranularity, string(c.sel.Granularity),
		log.FieldRows, len(v.Transactions))
}
