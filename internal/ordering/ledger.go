// Package ordering manages a session's in-progress order and its confirmation.
package ordering

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"maitred/internal/catalog"
	"maitred/internal/models"
	"maitred/internal/normalize"

	"go.uber.org/zap"
)

// Quantity bounds for a single add
const (
	MinQuantity = 1
	MaxQuantity = 100
)

// lineQuantityField names the ValidationError raised when an add would push
// an existing line past MaxQuantity
const lineQuantityField = "line_quantity"

// Line is one item of the in-progress order
type Line struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// Ledger is the mutable order of one session. Lines keep insertion order.
// A Ledger is not safe for concurrent use; the owning session serializes access.
type Ledger struct {
	catalog *catalog.Catalog
	lines   []Line
	logger  *zap.Logger

	// pending identifies a confirmation that has not been fully persisted yet;
	// retries of the same contents reuse it
	pendingID string
	pendingAt time.Time
}

// NewLedger creates an empty ledger priced against cat
func NewLedger(cat *catalog.Catalog, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{catalog: cat, logger: logger}
}

// ValidateQuantity checks that quantity is within [MinQuantity, MaxQuantity]
func ValidateQuantity(quantity int) error {
	if quantity < MinQuantity || quantity > MaxQuantity {
		return &models.ValidationError{Field: "quantity", Value: quantity, Min: MinQuantity, Max: MaxQuantity}
	}
	return nil
}

// AddItem resolves itemText against the catalog and adds quantity units of it.
// Both the added quantity and the resulting line quantity must stay within
// [MinQuantity, MaxQuantity]. The ledger is left untouched on error; when only
// the line total is out of range the resolved item is still returned.
func (l *Ledger) AddItem(itemText string, quantity int) (models.MenuItem, error) {
	if err := ValidateQuantity(quantity); err != nil {
		return models.MenuItem{}, err
	}

	item, err := l.catalog.Resolve(itemText)
	if err != nil {
		return models.MenuItem{}, err
	}

	if i := l.find(item.Name); i >= 0 {
		combined := l.lines[i].Quantity + quantity
		if combined > MaxQuantity {
			return item, &models.ValidationError{Field: lineQuantityField, Value: combined, Min: MinQuantity, Max: MaxQuantity}
		}
		l.lines[i].Quantity = combined
	} else {
		l.lines = append(l.lines, Line{Item: item.Name, Quantity: quantity})
	}
	l.touch()

	l.logger.Debug("Item added to order",
		zap.String("item", item.Name),
		zap.Int("quantity", quantity))
	return item, nil
}

// Add adds an item and returns the confirmation with the updated order breakdown
func (l *Ledger) Add(itemText string, quantity int) string {
	item, err := l.AddItem(itemText, quantity)
	if err != nil {
		return l.describeAddError(itemText, item, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, MsgItemAdded, quantity, normalize.Title(item.Name), item.Subtotal(quantity).Dollars())
	b.WriteString("### Resumen de tu pedido actual:\n")
	for _, line := range l.lines {
		subtotal, ok := l.subtotal(line)
		if !ok {
			fmt.Fprintf(&b, "- %d x %s - Subtotal: no disponible\n", line.Quantity, normalize.Title(line.Item))
			continue
		}
		fmt.Fprintf(&b, "- %d x %s - Subtotal: %s\n", line.Quantity, normalize.Title(line.Item), subtotal.Dollars())
	}
	fmt.Fprintf(&b, "\n**Total acumulado del pedido:** %s", l.Total().Dollars())
	return b.String()
}

// RemoveItem deletes the line matching itemText. Only items already in the
// order are considered, not the full catalog.
func (l *Ledger) RemoveItem(itemText string) (string, error) {
	i := l.match(itemText)
	if i < 0 {
		return "", &models.NotFoundError{Kind: "order line", Query: itemText}
	}
	name := l.lines[i].Item
	l.lines = append(l.lines[:i], l.lines[i+1:]...)
	l.touch()
	return name, nil
}

// Remove deletes an item and returns the updated total
func (l *Ledger) Remove(itemText string) string {
	name, err := l.RemoveItem(itemText)
	if err != nil {
		return fmt.Sprintf(MsgItemNotInOrder, normalize.Title(strings.TrimSpace(itemText)))
	}
	return fmt.Sprintf(MsgItemRemoved, normalize.Title(name), l.Total().Dollars())
}

// SetQuantity replaces the quantity of an item already in the order.
// A quantity of zero or less removes the item, exactly as Remove does.
func (l *Ledger) SetQuantity(itemText string, quantity int) string {
	if quantity <= 0 {
		return l.Remove(itemText)
	}
	if quantity > MaxQuantity {
		return MsgInvalidQuantity
	}

	i := l.match(itemText)
	if i < 0 {
		return fmt.Sprintf(MsgItemNotInOrder, normalize.Title(strings.TrimSpace(itemText)))
	}
	l.lines[i].Quantity = quantity
	l.touch()
	return fmt.Sprintf(MsgQuantityUpdated, normalize.Title(l.lines[i].Item), quantity, l.Total().Dollars())
}

// Total sums price times quantity over all lines. Lines whose item has no
// catalog price are skipped with a warning.
func (l *Ledger) Total() models.Cents {
	var total models.Cents
	for _, line := range l.lines {
		subtotal, ok := l.subtotal(line)
		if !ok {
			l.logger.Warn("No price found for ordered item", zap.String("item", line.Item))
			continue
		}
		total += subtotal
	}
	return total
}

// Summary renders the order with per-line subtotals and the grand total
func (l *Ledger) Summary() string {
	if len(l.lines) == 0 {
		return MsgEmptyOrder
	}

	var b strings.Builder
	b.WriteString("### Tu pedido actual:\n\n")
	for _, line := range l.lines {
		subtotal, ok := l.subtotal(line)
		if !ok {
			fmt.Fprintf(&b, "- **%d x %s** - precio no disponible\n", line.Quantity, normalize.Title(line.Item))
			continue
		}
		fmt.Fprintf(&b, "- **%d x %s** - %s\n", line.Quantity, normalize.Title(line.Item), subtotal.Dollars())
	}
	fmt.Fprintf(&b, "\n**Total:** %s", l.Total().Dollars())
	return b.String()
}

// Clear empties the ledger
func (l *Ledger) Clear() {
	l.lines = nil
	l.touch()
}

// touch drops the pending confirmation; changed contents are a different order
func (l *Ledger) touch() {
	l.pendingID = ""
	l.pendingAt = time.Time{}
}

// Cancel clears the ledger and reports whether there was anything to cancel
func (l *Ledger) Cancel() string {
	if len(l.lines) == 0 {
		return MsgNothingToCancel
	}
	l.Clear()
	return MsgOrderCancelled
}

// Lines returns a copy of the order lines in insertion order
func (l *Ledger) Lines() []Line {
	return append([]Line(nil), l.lines...)
}

// Quantity returns the ordered quantity of a canonical item
func (l *Ledger) Quantity(item string) int {
	if i := l.find(item); i >= 0 {
		return l.lines[i].Quantity
	}
	return 0
}

// Len returns the number of distinct items in the order
func (l *Ledger) Len() int {
	return len(l.lines)
}

// Priced returns the order lines with unit prices and subtotals
func (l *Ledger) Priced() []models.OrderLine {
	priced := make([]models.OrderLine, 0, len(l.lines))
	for _, line := range l.lines {
		price, _ := l.catalog.Price(line.Item)
		priced = append(priced, models.OrderLine{
			Item:      line.Item,
			Quantity:  line.Quantity,
			UnitPrice: price,
			Subtotal:  price.Times(line.Quantity),
		})
	}
	return priced
}

func (l *Ledger) subtotal(line Line) (models.Cents, bool) {
	price, ok := l.catalog.Price(line.Item)
	if !ok {
		return 0, false
	}
	return price.Times(line.Quantity), true
}

func (l *Ledger) find(name string) int {
	for i, line := range l.lines {
		if line.Item == name {
			return i
		}
	}
	return -1
}

// match finds a line by normalized, case-insensitive comparison with its key
func (l *Ledger) match(itemText string) int {
	want := l.catalog.Normalize(itemText)
	if want == "" {
		return -1
	}
	for i, line := range l.lines {
		if strings.EqualFold(line.Item, want) {
			return i
		}
	}
	return -1
}

func (l *Ledger) describeAddError(itemText string, item models.MenuItem, err error) string {
	var validation *models.ValidationError
	if errors.As(err, &validation) {
		if validation.Field == lineQuantityField {
			return fmt.Sprintf(MsgLineLimit, l.Quantity(item.Name), normalize.Title(item.Name), MaxQuantity)
		}
		return MsgInvalidQuantity
	}
	return fmt.Sprintf(MsgItemNotOnMenu, itemText)
}
