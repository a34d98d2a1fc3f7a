package models

import (
	"fmt"
	"strings"
)

// MenuItem represents a dish on the menu
type MenuItem struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	ServingSize string `json:"serving_size"`
	Price       Cents  `json:"price"`
}

// ValidateMenuItem validates a menu item
func ValidateMenuItem(item *MenuItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("menu item name is required")
	}
	if strings.TrimSpace(item.Category) == "" {
		return fmt.Errorf("menu item %q has no category", item.Name)
	}
	if item.Price < 0 {
		return fmt.Errorf("menu item %q price must not be negative", item.Name)
	}
	return nil
}

// Subtotal returns the price of quantity units of the item
func (mi *MenuItem) Subtotal(quantity int) Cents {
	return mi.Price.Times(quantity)
}
