package delivery

import (
	"testing"

	"maitred/internal/catalog"

	"github.com/stretchr/testify/assert"
)

func TestCheckCity(t *testing.T) {
	c := NewChecker(catalog.NewDeliveryCities([]string{"madrid", "sevilla"}), nil)

	assert.Equal(t, "✅ Sí, realizamos entregas en Madrid.", c.CheckCity("Madrid"))
	assert.Equal(t, "✅ Sí, realizamos entregas en Sevilla.", c.CheckCity("  SEVILLA "))
	assert.Equal(t, "❌ Lo siento, actualmente no realizamos entregas en Bilbao.", c.CheckCity("bilbao"))

	assert.True(t, c.Delivers("MADRID"))
	assert.False(t, c.Delivers("bilbao"))
}

func TestCheckCity_EmptyListsCities(t *testing.T) {
	c := NewChecker(catalog.NewDeliveryCities([]string{"madrid"}), nil)
	assert.Equal(t, c.ListCities(), c.CheckCity("  "))
}

func TestListCities(t *testing.T) {
	c := NewChecker(catalog.NewDeliveryCities([]string{"Madrid", "san sebastián", "Sevilla"}), nil)

	assert.Equal(t,
		"Realizamos entregas en las siguientes ciudades:\n\nMadrid\nSan Sebastián\nSevilla",
		c.ListCities())
}

func TestListCities_InvalidData(t *testing.T) {
	assert.Equal(t, MsgCitiesError, NewChecker(catalog.NewDeliveryCities(nil), nil).ListCities())
	assert.Equal(t, MsgCitiesError, NewChecker(nil, nil).ListCities())
}

func TestCities(t *testing.T) {
	c := NewChecker(catalog.NewDeliveryCities([]string{"madrid", "san sebastián"}), nil)
	assert.Equal(t, []string{"Madrid", "San Sebastián"}, c.Cities())
	assert.Equal(t, 2, c.CityCount())
	assert.Equal(t, 0, NewChecker(nil, nil).CityCount())
}
