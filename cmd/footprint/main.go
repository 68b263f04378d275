// Command footprint prints the environmental footprint of a recipe's ingredient block.
//
//	footprint --catalog agribalyse.csv recipe.txt
//	cat recipe.txt | footprint -c agribalyse.xlsx --indicator water_depletion_m3_per_kg
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jessevdk/go-flags"
	"github.com/olekukonko/tablewriter"
	"github.com/recipefootprint/backend/internal/domain"
	"github.com/recipefootprint/backend/internal/infrastructure/catalog"
	"github.com/recipefootprint/backend/internal/infrastructure/logging"
	"github.com/recipefootprint/backend/internal/infrastructure/units"
	"github.com/recipefootprint/backend/internal/usecase"
	"go.uber.org/zap"
)

// options holds command-line flags; the catalog and units paths also read the server's env vars
type options struct {
	Catalog   string   `short:"c" long:"catalog" env:"FOOTPRINT_CATALOG_PATH" description:"Agribalyse export (.csv or .xlsx)" required:"true"`
	Units     string   `short:"u" long:"units" env:"FOOTPRINT_UNITS_PATH" description:"YAML unit vocabulary override"`
	Subgroups []string `long:"subgroup" description:"Food subgroup searched by the matcher (repeatable, defaults to the raw-ingredient subgroups)"`
	MinScore  float64  `long:"min-score" default:"0" description:"Minimum match score (0-100), 0 disables the threshold"`
	Fuzzy     bool     `long:"fuzzy" description:"Treat tokens one edit apart as equal when matching"`
	Indicator string   `short:"i" long:"indicator" default:"climate_change_kg_co2e_per_kg" description:"Indicator shown per ingredient"`
	Verbose   bool     `short:"v" long:"verbose" description:"Log catalog loading and match decisions"`

	Args struct {
		File string `positional-arg-name:"FILE" description:"Ingredient block, one ingredient per line (stdin when omitted)"`
	} `positional-args:"yes"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
			// already printed by the parser
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "footprint: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}

	logger := zap.NewNop()
	if opts.Verbose {
		logger = logging.New("debug", "development")
	}
	defer func() { _ = logger.Sync() }()

	subgroups := opts.Subgroups
	if len(subgroups) == 0 {
		subgroups = catalog.DefaultFoodSubgroups
	}

	refCatalog, err := catalog.NewLoader(subgroups, logger).Load(opts.Catalog)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	indicator := domain.Indicator(opts.Indicator)
	if !refCatalog.HasIndicator(indicator) {
		return fmt.Errorf("%w: %q (catalog has %v)", domain.ErrUnknownIndicator, indicator, refCatalog.Indicators())
	}

	vocabulary, err := units.Load(opts.Units)
	if err != nil {
		return fmt.Errorf("loading units: %w", err)
	}

	matching := usecase.NewMatchingService(
		usecase.NewTokenSetMatcher(opts.Fuzzy, 1),
		usecase.MatchConfig{MinScore: opts.MinScore, EnableDebugLogging: opts.Verbose},
		logger,
	)
	calculator, err := usecase.NewFootprintCalculator(refCatalog, vocabulary, matching, logger)
	if err != nil {
		return err
	}

	block, err := readInput(opts.Args.File, stdin)
	if err != nil {
		return err
	}

	footprint, err := calculator.CalculateRecipe(usecase.SplitIngredientBlock(block))
	if err != nil {
		return err
	}

	render(stdout, footprint, refCatalog.Indicators(), indicator)
	return nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading ingredients: %w", err)
	}
	return string(data), nil
}

// render writes the per-ingredient table followed by the recipe totals
func render(w io.Writer, footprint *domain.RecipeFootprint, indicators []domain.Indicator, shown domain.Indicator) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Ingredient", "Product", "Score", "Kg", string(shown)})

	for _, impact := range footprint.PerIngredient {
		product := "(" + string(impact.MatchStatus) + ")"
		if impact.MatchedProduct != nil {
			product = impact.MatchedProduct.Name
		}
		table.Append([]string{
			impact.Line.RawText,
			product,
			strconv.FormatFloat(impact.MatchScore, 'f', 1, 64),
			formatAmount(impact.QuantityKg),
			formatAmount(impact.ImpactByIndicator[shown]),
		})
	}
	table.Render()

	fmt.Fprintln(w)

	totals := tablewriter.NewWriter(w)
	totals.SetHeader([]string{"Indicator", "Total"})
	for _, ind := range indicators {
		totals.Append([]string{string(ind), formatAmount(footprint.Totals[ind])})
	}
	totals.Render()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
