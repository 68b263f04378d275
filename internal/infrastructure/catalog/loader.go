package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/recipefootprint/backend/internal/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// DefaultFoodSubgroups are the Agribalyse subgroups searched when matching recipe ingredients.
// Prepared dishes, drinks and baby food are left out so they never shadow raw ingredients.
var DefaultFoodSubgroups = []string{
	"Special Products", "Herbs", "Miscellaneous Ingredients", "Spices", "Sels", "Condiments",
	"Fruits", "Nuts And Oilseeds", "Vegetables", "Potatoes And Other Tubers", "Legumes",
	"Cheeses", "Creams And Cream Specialties", "Milks", "Butters", "Vegetable Oils And Fats",
	"Other Fats", "Fish Oils", "Margarines", "Pasta, Rice And Cereals", "Flours And Pastry",
	"Chocolates And Chocolate Products", "Jams And Similar", "Sugars, Honeys And Similar",
	"Fish And Seafood Products", "Cooked Meats", "Raw Meats", "Raw Fish", "Deli Meats",
	"Cooked Fish", "Other Meat Products", "Meat Substitutes", "Cooked Shellfish",
	"Raw Shellfish", "Eggs", "Deli Substitutes",
}

// ErrUnsupportedFormat is returned for catalog files that are neither CSV nor XLSX
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Loader reads a reference catalog from an Agribalyse export
type Loader struct {
	foodSubgroups []string
	logger        *zap.Logger
}

// NewLoader creates a loader. foodSubgroups restricts the matchable view; empty means every product.
func NewLoader(foodSubgroups []string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		foodSubgroups: foodSubgroups,
		logger:        logger,
	}
}

// Load reads the catalog file, choosing the format from its extension
func (l *Loader) Load(path string) (*domain.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return l.LoadCSV(f)
	case ".xlsx":
		return l.LoadXLSX(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadCSV builds a catalog from comma separated rows with a header line
func (l *Loader) LoadCSV(r io.Reader) (*domain.Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read catalog csv: %w", err)
	}
	return l.build(rows)
}

// LoadXLSX builds a catalog from the first sheet of a workbook
func (l *Loader) LoadXLSX(r io.Reader) (*domain.Catalog, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open catalog workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.ErrEmptyCatalog
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return l.build(rows)
}

// build maps rows to products. Bad rows and repeated names are skipped with a warning.
func (l *Loader) build(rows [][]string) (*domain.Catalog, error) {
	if len(rows) < 2 {
		return nil, domain.ErrEmptyCatalog
	}

	columns, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rows))
	products := make([]domain.ReferenceProduct, 0, len(rows)-1)
	skipped := 0

	for i, record := range rows[1:] {
		line := i + 2
		product, err := columns.mapRow(record)
		if err != nil {
			if product.Name != "" || !isBlank(record) {
				l.logger.Warn("skipping catalog row", zap.Int("row", line), zap.Error(err))
				skipped++
			}
			continue
		}

		key := strings.ToLower(product.Name)
		if seen[key] {
			l.logger.Warn("skipping duplicate product", zap.Int("row", line), zap.String("name", product.Name))
			skipped++
			continue
		}
		seen[key] = true
		products = append(products, product)
	}

	catalog, err := domain.NewCatalog(products, columns.order, l.foodSubgroups)
	if err != nil {
		return nil, err
	}

	l.logger.Info("reference catalog loaded",
		zap.Int("products", catalog.Len()),
		zap.Int("matchable", len(catalog.MatchableNames())),
		zap.Int("skipped", skipped),
		zap.Int("indicators", len(columns.order)),
	)
	if len(catalog.MatchableNames()) == 0 {
		l.logger.Warn("no catalog products belong to the configured food subgroups",
			zap.Strings("food_subgroups", l.foodSubgroups))
	}

	return catalog, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
