// Package catalog holds the restaurant's read-only reference data: the menu
// and the set of cities the restaurant delivers to.
package catalog

import (
	"sort"
	"strings"

	"maitred/internal/models"
	"maitred/internal/normalize"

	"go.uber.org/zap"
)

// Catalog is the immutable menu, indexed by normalized item name
type Catalog struct {
	items  []models.MenuItem
	index  map[string]int
	byCat  map[string][]int
	cats   []string
	lookup *normalize.Normalizer
}

// New builds a catalog from raw menu items. Names and categories are lowercased
// and trimmed; invalid items and duplicate names are skipped with a warning.
// lookup is the normalizer applied to user text before matching.
func New(items []models.MenuItem, lookup *normalize.Normalizer, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	plain := normalize.Plain()

	c := &Catalog{
		items:  make([]models.MenuItem, 0, len(items)),
		index:  make(map[string]int, len(items)),
		byCat:  make(map[string][]int),
		lookup: lookup,
	}

	for _, raw := range items {
		item := raw
		item.Name = plain.Normalize(item.Name)
		item.Category = plain.Normalize(item.Category)
		item.ServingSize = strings.TrimSpace(item.ServingSize)

		if err := models.ValidateMenuItem(&item); err != nil {
			logger.Warn("Skipping invalid menu item", zap.Error(err))
			continue
		}
		if _, dup := c.index[item.Name]; dup {
			logger.Warn("Skipping duplicate menu item", zap.String("item", item.Name))
			continue
		}

		c.index[item.Name] = len(c.items)
		if _, seen := c.byCat[item.Category]; !seen {
			c.cats = append(c.cats, item.Category)
		}
		c.byCat[item.Category] = append(c.byCat[item.Category], len(c.items))
		c.items = append(c.items, item)
	}

	sort.Strings(c.cats)
	return c
}

// Empty reports whether the catalog has no items
func (c *Catalog) Empty() bool {
	return c == nil || len(c.items) == 0
}

// Len returns the number of items
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Items returns the items in load order
func (c *Catalog) Items() []models.MenuItem {
	if c == nil {
		return nil
	}
	return append([]models.MenuItem(nil), c.items...)
}

// Lookup finds an item by its canonical name
func (c *Catalog) Lookup(name string) (models.MenuItem, bool) {
	if c == nil {
		return models.MenuItem{}, false
	}
	i, ok := c.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return models.MenuItem{}, false
	}
	return c.items[i], true
}

// Price returns the unit price of a canonical item
func (c *Catalog) Price(name string) (models.Cents, bool) {
	item, ok := c.Lookup(name)
	return item.Price, ok
}

// Categories returns the category names in alphabetical order
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.cats...)
}

// InCategory returns the items of a category in load order
func (c *Catalog) InCategory(category string) []models.MenuItem {
	if c == nil {
		return nil
	}
	idx := c.byCat[strings.ToLower(strings.TrimSpace(category))]
	items := make([]models.MenuItem, 0, len(idx))
	for _, i := range idx {
		items = append(items, c.items[i])
	}
	return items
}

// Normalize applies the catalog's lookup normalizer to user text
func (c *Catalog) Normalize(text string) string {
	if c == nil {
		return normalize.Plain().Normalize(text)
	}
	return c.lookup.Normalize(text)
}
