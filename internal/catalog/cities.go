package catalog

import (
	"fmt"
	"strings"

	"maitred/internal/models"
)

// DeliveryCities is the read-only set of normalized city names the restaurant delivers to
type DeliveryCities struct {
	names []string
	set   map[string]struct{}
}

// NewDeliveryCities builds the city set. Names are lowercased and trimmed;
// blank names and duplicates are dropped.
func NewDeliveryCities(names []string) *DeliveryCities {
	d := &DeliveryCities{
		names: make([]string, 0, len(names)),
		set:   make(map[string]struct{}, len(names)),
	}
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if _, dup := d.set[name]; dup {
			continue
		}
		d.set[name] = struct{}{}
		d.names = append(d.names, name)
	}
	return d
}

// Contains reports whether a normalized city name is in the set
func (d *DeliveryCities) Contains(city string) bool {
	if d == nil {
		return false
	}
	_, ok := d.set[city]
	return ok
}

// Names returns the cities in load order
func (d *DeliveryCities) Names() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.names...)
}

// Len returns the number of cities
func (d *DeliveryCities) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Validate checks that the set is loaded and every entry is a non-empty normalized name
func (d *DeliveryCities) Validate() error {
	if d.Len() == 0 {
		return &models.DataError{Source: "delivery cities", Err: fmt.Errorf("no cities loaded")}
	}
	for i, name := range d.names {
		if name == "" || name != strings.ToLower(strings.TrimSpace(name)) {
			return &models.DataError{Source: "delivery cities", Err: fmt.Errorf("invalid entry %d: %q", i, name)}
		}
	}
	return nil
}
