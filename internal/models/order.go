package models

import (
	"time"

	"github.com/jinzhu/gorm"
)

// ConfirmedOrder is the record handed to persistence when a customer confirms an order
type ConfirmedOrder struct {
	ID          string      `json:"id"`
	SessionID   string      `json:"session_id"`
	Lines       []OrderLine `json:"lines"`
	Total       Cents       `json:"total"`
	ConfirmedAt time.Time   `json:"confirmed_at"`
}

// OrderLine is one priced line of a confirmed order
type OrderLine struct {
	Item      string `json:"item"`
	Quantity  int    `json:"quantity"`
	UnitPrice Cents  `json:"unit_price"`
	Subtotal  Cents  `json:"subtotal"`
}

// Items returns the order as a mapping of item name to quantity
func (o ConfirmedOrder) Items() map[string]int {
	items := make(map[string]int, len(o.Lines))
	for _, line := range o.Lines {
		items[line.Item] += line.Quantity
	}
	return items
}

// Order is the database row for a confirmed order
type Order struct {
	gorm.Model
	Reference   string      `gorm:"unique_index"`
	SessionID   string      `gorm:"index"`
	Items       []OrderItem `gorm:"foreignkey:OrderID"`
	TotalCents  int64
	ConfirmedAt time.Time
}

// OrderItem is the database row for one line of a confirmed order
type OrderItem struct {
	gorm.Model
	OrderID        uint
	Name           string
	Quantity       int
	UnitPriceCents int64
	SubtotalCents  int64
}

// NewOrderRecord converts a confirmed order into its database representation
func NewOrderRecord(order ConfirmedOrder) *Order {
	record := &Order{
		Reference:   order.ID,
		SessionID:   order.SessionID,
		TotalCents:  int64(order.Total),
		ConfirmedAt: order.ConfirmedAt,
		Items:       make([]OrderItem, 0, len(order.Lines)),
	}
	for _, line := range order.Lines {
		record.Items = append(record.Items, OrderItem{
			Name:           line.Item,
			Quantity:       line.Quantity,
			UnitPriceCents: int64(line.UnitPrice),
			SubtotalCents:  int64(line.Subtotal),
		})
	}
	return record
}

// ToConfirmedOrder converts a database row back into a confirmed order
func (o *Order) ToConfirmedOrder() ConfirmedOrder {
	order := ConfirmedOrder{
		ID:          o.Reference,
		SessionID:   o.SessionID,
		Total:       Cents(o.TotalCents),
		ConfirmedAt: o.ConfirmedAt,
		Lines:       make([]OrderLine, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		order.Lines = append(order.Lines, OrderLine{
			Item:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: Cents(item.UnitPriceCents),
			Subtotal:  Cents(item.SubtotalCents),
		})
	}
	return order
}
