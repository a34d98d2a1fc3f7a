package catalog

import (
	"strings"

	"maitred/internal/models"
)

// Resolve maps user text to a catalog item. An exact match on the normalized
// text wins; otherwise the first item, in load order, whose name contains the
// normalized text is returned. The text is matched literally.
func (c *Catalog) Resolve(userText string) (models.MenuItem, error) {
	notFound := &models.NotFoundError{Kind: "item", Query: userText}

	query := c.Normalize(userText)
	if query == "" || c.Empty() {
		return models.MenuItem{}, notFound
	}

	if i, ok := c.index[query]; ok {
		return c.items[i], nil
	}

	for _, item := range c.items {
		if strings.Contains(item.Name, query) {
			return item, nil
		}
	}

	return models.MenuItem{}, notFound
}
