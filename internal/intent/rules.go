package intent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"maitred/internal/normalize"
	"maitred/internal/ordering"
	"maitred/internal/session"
)

// Rule names, in routing order
const (
	IntentOrder          = "order"
	IntentMenu           = "menu"
	IntentDeliveryCities = "delivery_cities"
	IntentDeliveryCheck  = "delivery_check"
	IntentPrice          = "price"
	IntentShowOrder      = "show_order"
	IntentCancelOrder    = "cancel_order"
	IntentConfirmOrder   = "confirm_order"
	IntentRemoveItem     = "remove_item"
	IntentChangeQuantity = "change_quantity"
	IntentCategory       = "category"
	IntentStartOrder     = "start_order"
	IntentFallback       = "fallback"
)

const msgPriceNotFound = "Lo siento, no encontré el precio de %s."

var (
	orderPattern  = regexp.MustCompile(`(\d+)\s+(.*?)(?:\s+(?:y|e|and)(?:\s|$)|\s*[,;.]|\s*$)`)
	cityPattern   = regexp.MustCompile(`\ben\s+([\p{L}\s]+)`)
	changePattern = regexp.MustCompile(`\bcambiar\s+(?:la\s+cantidad\s+de\s+)?(.+?)\s+a\s+(\d+)\b`)
)

var (
	articles      = map[string]bool{"el": true, "la": true, "los": true, "las": true, "un": true, "una": true, "unos": true, "unas": true}
	orderSuffixes = []string{" de mi pedido", " del pedido", " de mi orden", " de la orden"}
)

// Match holds what a rule extracted from a query
type Match struct {
	Orders   []OrderRequest
	Item     string
	City     string
	Category string
	Quantity int
}

// OrderRequest is one "<quantity> <item>" occurrence
type OrderRequest struct {
	Quantity int
	Item     string
}

// Rule is one entry of the routing table. Match inspects the lowercased
// query; Handle runs with the session lock held.
type Rule struct {
	Name      string
	NeedsMenu bool
	Match     func(query string) (Match, bool)
	Handle    func(ctx context.Context, sess *session.Session, m Match) string
}

func (r *Router) buildRules() []Rule {
	return []Rule{
		{Name: IntentOrder, NeedsMenu: true, Match: matchOrders, Handle: r.handleOrders},
		{Name: IntentMenu, NeedsMenu: true, Match: r.keyword(r.vocab.Menu), Handle: r.handleMenu},
		{Name: IntentDeliveryCities, Match: r.matchDeliveryCities, Handle: r.handleDeliveryCities},
		{Name: IntentDeliveryCheck, Match: r.matchDeliveryCheck, Handle: r.handleDeliveryCheck},
		{Name: IntentPrice, NeedsMenu: true, Match: r.matchPrice, Handle: r.handlePrice},
		{Name: IntentShowOrder, NeedsMenu: true, Match: r.keyword(r.vocab.ShowOrder), Handle: handleShowOrder},
		{Name: IntentCancelOrder, NeedsMenu: true, Match: r.keyword(r.vocab.CancelOrder), Handle: handleCancelOrder},
		{Name: IntentConfirmOrder, NeedsMenu: true, Match: r.keyword(r.vocab.ConfirmOrder), Handle: r.handleConfirmOrder},
		{Name: IntentRemoveItem, NeedsMenu: true, Match: r.matchRemove, Handle: handleRemove},
		{Name: IntentChangeQuantity, NeedsMenu: true, Match: matchChangeQuantity, Handle: handleChangeQuantity},
		{Name: IntentCategory, NeedsMenu: true, Match: r.matchCategory, Handle: r.handleCategory},
		{Name: IntentStartOrder, Match: r.keyword(r.vocab.StartOrder), Handle: handleStartOrder},
	}
}

func (r *Router) keyword(entries []string) func(string) (Match, bool) {
	return func(query string) (Match, bool) {
		return Match{}, newPhrase(query).has(entries)
	}
}

// matchOrders finds every "<integer> <item>" occurrence. Quantities too
// large to parse are kept out of range so the ledger rejects them.
func matchOrders(query string) (Match, bool) {
	var m Match
	for _, sub := range orderPattern.FindAllStringSubmatch(query, -1) {
		item := trimFragment(sub[2])
		if item == "" {
			continue
		}
		quantity, err := strconv.Atoi(sub[1])
		if err != nil {
			quantity = ordering.MaxQuantity + 1
		}
		m.Orders = append(m.Orders, OrderRequest{Quantity: quantity, Item: item})
	}
	return m, len(m.Orders) > 0
}

func (r *Router) handleOrders(_ context.Context, sess *session.Session, m Match) string {
	replies := make([]string, 0, len(m.Orders))
	for _, o := range m.Orders {
		replies = append(replies, sess.Ledger().Add(o.Item, o.Quantity))
	}
	return strings.Join(replies, "\n")
}

func (r *Router) handleMenu(context.Context, *session.Session, Match) string {
	return r.deps.Catalog.RenderMenu()
}

func (r *Router) matchDeliveryCities(query string) (Match, bool) {
	p := newPhrase(query)
	return Match{}, p.has(r.vocab.Cities) && p.has(r.vocab.Delivery)
}

func (r *Router) handleDeliveryCities(context.Context, *session.Session, Match) string {
	return r.deps.Delivery.ListCities()
}

func (r *Router) matchDeliveryCheck(query string) (Match, bool) {
	if !newPhrase(query).has(r.vocab.Delivery) {
		return Match{}, false
	}
	var m Match
	if sub := cityPattern.FindStringSubmatch(query); sub != nil {
		m.City = trimFragment(sub[1])
	}
	return m, true
}

func (r *Router) handleDeliveryCheck(_ context.Context, _ *session.Session, m Match) string {
	if m.City == "" {
		return r.deps.Delivery.ListCities()
	}
	return r.deps.Delivery.CheckCity(m.City)
}

// matchPrice requires a price word directly followed by "de <item>"
func (r *Router) matchPrice(query string) (Match, bool) {
	fields := strings.Fields(query)
	for i := range fields {
		n := entryAt(fields, i, r.vocab.Price)
		if n == 0 || i+n+1 >= len(fields) || fields[i+n] != "de" {
			continue
		}
		if item := stripArticles(fields[i+n+1:]); item != "" {
			return Match{Item: item}, true
		}
	}
	return Match{}, false
}

func (r *Router) handlePrice(_ context.Context, _ *session.Session, m Match) string {
	item, err := r.deps.Catalog.Resolve(m.Item)
	if err != nil {
		return fmt.Sprintf(msgPriceNotFound, m.Item)
	}
	return fmt.Sprintf("El precio de %s es %s", normalize.Title(item.Name), item.Price.Dollars())
}

func handleShowOrder(_ context.Context, sess *session.Session, _ Match) string {
	return sess.Ledger().Summary()
}

func handleCancelOrder(_ context.Context, sess *session.Session, _ Match) string {
	return sess.Ledger().Cancel()
}

func (r *Router) handleConfirmOrder(ctx context.Context, sess *session.Session, _ Match) string {
	return r.deps.Finalizer.Confirm(ctx, sess.ID, sess.Ledger())
}

// matchRemove takes the words after a removal verb, without a leading
// article or a trailing "del pedido"
func (r *Router) matchRemove(query string) (Match, bool) {
	fields := strings.Fields(query)
	for i := range fields {
		n := entryAt(fields, i, r.vocab.RemoveItem)
		if n == 0 {
			continue
		}
		item := stripArticles(fields[i+n:])
		for _, suffix := range orderSuffixes {
			item = strings.TrimSuffix(item, suffix)
		}
		if item != "" {
			return Match{Item: item}, true
		}
	}
	return Match{}, false
}

func handleRemove(_ context.Context, sess *session.Session, m Match) string {
	return sess.Ledger().Remove(m.Item)
}

func matchChangeQuantity(query string) (Match, bool) {
	sub := changePattern.FindStringSubmatch(query)
	if sub == nil {
		return Match{}, false
	}
	item := stripArticles(strings.Fields(sub[1]))
	quantity, err := strconv.Atoi(sub[2])
	if err != nil {
		quantity = ordering.MaxQuantity + 1
	}
	return Match{Item: item, Quantity: quantity}, item != ""
}

func handleChangeQuantity(_ context.Context, sess *session.Session, m Match) string {
	return sess.Ledger().SetQuantity(m.Item, m.Quantity)
}

func (r *Router) matchCategory(query string) (Match, bool) {
	p := newPhrase(query)
	for _, cat := range r.deps.Catalog.Categories() {
		if p.has([]string{strings.Join(words(cat), " ")}) {
			return Match{Category: cat}, true
		}
	}
	return Match{}, false
}

func (r *Router) handleCategory(_ context.Context, _ *session.Session, m Match) string {
	return r.deps.Catalog.CategoryDetails(m.Category)
}

// stripArticles joins fields into an item fragment without leading articles
func stripArticles(fields []string) string {
	for len(fields) > 1 && articles[fields[0]] {
		fields = fields[1:]
	}
	return trimFragment(strings.Join(fields, " "))
}

func handleStartOrder(context.Context, *session.Session, Match) string {
	return ordering.MsgHowToOrder
}
