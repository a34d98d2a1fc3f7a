package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"maitred/internal/models"
	"maitred/internal/normalize"

	"go.uber.org/zap"
)

// Column names of the menu and city files, matched case-insensitively
const (
	ColumnItem        = "item"
	ColumnCategory    = "category"
	ColumnServingSize = "serving size"
	ColumnPrice       = "price"
	ColumnCity        = "city"
)

// ReadMenu parses menu rows with the columns Item, Category, Serving Size and Price.
// Rows that cannot be parsed are skipped with a warning.
func ReadMenu(r io.Reader, logger *zap.Logger) ([]models.MenuItem, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rows, cols, err := readTable(r, ColumnItem, ColumnCategory, ColumnPrice)
	if err != nil {
		return nil, &models.DataError{Source: "menu", Err: err}
	}

	items := make([]models.MenuItem, 0, len(rows))
	for n, row := range rows {
		line := n + 2
		price, err := parsePrice(field(row, cols, ColumnPrice))
		if err != nil {
			logger.Warn("Skipping menu row", zap.Int("line", line), zap.Error(err))
			continue
		}
		items = append(items, models.MenuItem{
			Name:        field(row, cols, ColumnItem),
			Category:    field(row, cols, ColumnCategory),
			ServingSize: field(row, cols, ColumnServingSize),
			Price:       price,
		})
	}
	return items, nil
}

// ReadCities parses the City column of a delivery city table
func ReadCities(r io.Reader) ([]string, error) {
	rows, cols, err := readTable(r, ColumnCity)
	if err != nil {
		return nil, &models.DataError{Source: "delivery cities", Err: err}
	}
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, field(row, cols, ColumnCity))
	}
	return names, nil
}

// LoadMenuFile reads a menu CSV file from disk
func LoadMenuFile(path string, logger *zap.Logger) ([]models.MenuItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.DataError{Source: path, Err: err}
	}
	defer f.Close()
	return ReadMenu(f, logger)
}

// LoadCitiesFile reads a delivery city CSV file from disk
func LoadCitiesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.DataError{Source: path, Err: err}
	}
	defer f.Close()
	return ReadCities(f)
}

// Load builds the catalog and the delivery city set from files. Load failures
// are logged and produce empty reference data instead of an error, so the
// assistant keeps running in its "menu unavailable" state.
func Load(menuPath, citiesPath string, lookup *normalize.Normalizer, logger *zap.Logger) (*Catalog, *DeliveryCities) {
	if logger == nil {
		logger = zap.NewNop()
	}

	items, err := LoadMenuFile(menuPath, logger)
	if err != nil {
		logger.Error("Failed to load menu", zap.String("path", menuPath), zap.Error(err))
	}
	cat := New(items, lookup, logger)
	if cat.Empty() {
		logger.Error("Menu is empty; menu operations are unavailable", zap.String("path", menuPath))
	} else {
		logger.Info("Menu loaded",
			zap.Int("items", cat.Len()),
			zap.Strings("categories", cat.Categories()))
	}

	names, err := LoadCitiesFile(citiesPath)
	if err != nil {
		logger.Error("Failed to load delivery cities", zap.String("path", citiesPath), zap.Error(err))
	}
	cities := NewDeliveryCities(names)
	logger.Info("Delivery cities loaded", zap.Int("cities", cities.Len()))

	return cat, cities
}

func readTable(r io.Reader, required ...string) ([][]string, map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("missing header row")
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, cols, nil
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parsePrice(raw string) (models.Cents, error) {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	if s == "" {
		return 0, fmt.Errorf("missing price")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", raw, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative price %q", raw)
	}
	return models.CentsFromFloat(v), nil
}
