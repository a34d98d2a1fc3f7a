// Package delivery answers whether the restaurant delivers to a city.
package delivery

import (
	"fmt"
	"strings"

	"maitred/internal/catalog"
	"maitred/internal/normalize"

	"go.uber.org/zap"
)

const (
	MsgDelivers       = "✅ Sí, realizamos entregas en %s."
	MsgDoesNotDeliver = "❌ Lo siento, actualmente no realizamos entregas en %s."
	MsgCitiesHeader   = "Realizamos entregas en las siguientes ciudades:\n\n"
	MsgCitiesError    = "Lo siento, hubo un problema al cargar las ciudades de entrega."
)

// Checker looks cities up in the delivery set
type Checker struct {
	cities *catalog.DeliveryCities
	norm   *normalize.Normalizer
	logger *zap.Logger
}

// NewChecker creates a checker over cities
func NewChecker(cities *catalog.DeliveryCities, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{cities: cities, norm: normalize.Plain(), logger: logger}
}

// Delivers reports whether raw names a delivery city
func (c *Checker) Delivers(raw string) bool {
	return c.cities.Contains(c.norm.Normalize(raw))
}

// CheckCity answers whether the restaurant delivers to raw. An empty city
// falls back to the full list.
func (c *Checker) CheckCity(raw string) string {
	city := c.norm.Normalize(raw)
	if city == "" {
		return c.ListCities()
	}
	if c.cities.Contains(city) {
		return fmt.Sprintf(MsgDelivers, normalize.Title(city))
	}
	return fmt.Sprintf(MsgDoesNotDeliver, normalize.Title(city))
}

// Cities returns the delivery cities in display form
func (c *Checker) Cities() []string {
	names := c.cities.Names()
	titled := make([]string, len(names))
	for i, name := range names {
		titled[i] = normalize.Title(name)
	}
	return titled
}

// CityCount returns the number of delivery cities
func (c *Checker) CityCount() int {
	return c.cities.Len()
}

// ListCities renders every delivery city, one per line. Invalid reference
// data yields a generic error message.
func (c *Checker) ListCities() string {
	if err := c.cities.Validate(); err != nil {
		c.logger.Error("Delivery city list contains invalid data", zap.Error(err))
		return MsgCitiesError
	}

	return MsgCitiesHeader + strings.Join(c.Cities(), "\n")
}
