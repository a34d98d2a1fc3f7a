package catalog

import (
	"fmt"
	"strings"

	"maitred/internal/normalize"
)

// Messages shown for menu lookups
const (
	MsgMenuUnavailable = "Lo siento, no pude cargar el menú. Por favor, contacta al soporte técnico."
	msgMenuHeader      = "🍽️ **Nuestro Menú:**\n\n"
	msgMenuFooter      = "Para ver más detalles de una categoría específica, por favor pregúntame sobre ella."
	msgUnknownCategory = "Lo siento, no encontré información sobre la categoría '%s'."
)

// RenderMenu lists every item grouped by category, categories in alphabetical order
func (c *Catalog) RenderMenu() string {
	if c.Empty() {
		return MsgMenuUnavailable
	}

	var b strings.Builder
	b.WriteString(msgMenuHeader)
	for _, cat := range c.cats {
		fmt.Fprintf(&b, "### %s\n", normalize.Title(cat))
		for _, item := range c.InCategory(cat) {
			fmt.Fprintf(&b, "- **%s** - %s - %s\n", normalize.Title(item.Name), item.ServingSize, item.Price.Dollars())
		}
		b.WriteString("\n")
	}
	b.WriteString(msgMenuFooter)
	return b.String()
}

// CategoryDetails lists the items of one category
func (c *Catalog) CategoryDetails(category string) string {
	if c.Empty() {
		return MsgMenuUnavailable
	}

	name := strings.ToLower(strings.TrimSpace(category))
	items := c.InCategory(name)
	if len(items) == 0 {
		return fmt.Sprintf(msgUnknownCategory, name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Detalles de %s:\n\n", normalize.Title(name))
	for _, item := range items {
		fmt.Fprintf(&b, "• %s - %s - %s\n", normalize.Title(item.Name), item.ServingSize, item.Price.Dollars())
	}
	return strings.TrimRight(b.String(), "\n")
}
