package intent

import "strings"

// Vocabulary lists the trigger words and phrases of the keyword rules.
// Entries match whole words; a multi-word entry matches the words in sequence.
type Vocabulary struct {
	Menu         []string `yaml:"menu"`
	Cities       []string `yaml:"cities"`
	Delivery     []string `yaml:"delivery"`
	Price        []string `yaml:"price"`
	ShowOrder    []string `yaml:"show_order"`
	CancelOrder  []string `yaml:"cancel_order"`
	ConfirmOrder []string `yaml:"confirm_order"`
	RemoveItem   []string `yaml:"remove_item"`
	StartOrder   []string `yaml:"start_order"`
}

// DefaultVocabulary returns the Spanish trigger words
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Menu:         []string{"menu", "menú", "carta"},
		Cities:       []string{"ciudades"},
		Delivery:     []string{"entrega", "entregas", "entregan", "reparto", "repartos", "reparte", "reparten", "envío", "envíos", "envio", "envios"},
		Price:        []string{"precio", "costo"},
		ShowOrder:    []string{"mostrar pedido", "ver pedido", "mostrar mi pedido", "ver mi pedido"},
		CancelOrder:  []string{"cancelar pedido", "cancelar mi pedido"},
		ConfirmOrder: []string{"confirmar pedido", "confirmar mi pedido"},
		RemoveItem:   []string{"quitar", "quita", "eliminar", "elimina", "borrar", "borra", "sacar", "saca"},
		StartOrder:   []string{"cómo pedir", "como pedir", "hacer un pedido", "quiero pedir", "cómo ordenar", "como ordenar"},
	}
}

// WithDefaults fills empty lists from DefaultVocabulary and canonicalizes every entry
func (v Vocabulary) WithDefaults() Vocabulary {
	d := DefaultVocabulary()
	pick := func(list, fallback []string) []string {
		out := make([]string, 0, len(list))
		for _, entry := range list {
			if w := strings.Join(words(entry), " "); w != "" {
				out = append(out, w)
			}
		}
		if len(out) == 0 {
			return fallback
		}
		return out
	}
	return Vocabulary{
		Menu:         pick(v.Menu, d.Menu),
		Cities:       pick(v.Cities, d.Cities),
		Delivery:     pick(v.Delivery, d.Delivery),
		Price:        pick(v.Price, d.Price),
		ShowOrder:    pick(v.ShowOrder, d.ShowOrder),
		CancelOrder:  pick(v.CancelOrder, d.CancelOrder),
		ConfirmOrder: pick(v.ConfirmOrder, d.ConfirmOrder),
		RemoveItem:   pick(v.RemoveItem, d.RemoveItem),
		StartOrder:   pick(v.StartOrder, d.StartOrder),
	}
}
