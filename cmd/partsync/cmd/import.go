package cmd

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/partforge/partsync/internal/inventree"
	"github.com/partforge/partsync/pkg/catalog"
	"github.com/partforge/partsync/pkg/config"
	"github.com/partforge/partsync/pkg/errors"
	"github.com/partforge/partsync/pkg/importer"
	"github.com/partforge/partsync/pkg/inventory"
	"github.com/partforge/partsync/pkg/logging"
	"github.com/partforge/partsync/pkg/prompt"
	"github.com/partforge/partsync/pkg/severity"
	"github.com/partforge/partsync/pkg/suppliers"
)

var (
	flagOnlySupplier  string
	flagFromFile      string
	flagStockLocation int
	flagStockAmount   float64
)

var importCmd = &cobra.Command{
	Use:   "import [part numbers...]",
	Short: "Search suppliers and import parts into the inventory",
	Long: `Import searches every enabled supplier for the given part numbers
and reconciles the results with the inventory: existing records are
updated in place, missing ones are created.

Each part number yields one of four outcomes: success, incomplete (some
data could not be matched), failure (no part could be established) or
error (a supplier or inventory call failed). The exit status is non-zero
when any part number ends in failure or error.`,
	Example: `  partsync import RC0402FR-07100KL
  partsync import --supplier DigiKey RC0402FR-07100KL
  partsync import --from-file bom.txt
  partsync import --stock-location 4 --stock-amount 50 RC0402FR-07100KL
  partsync import --dry-run -i RC0402FR-07100KL`,
	Args: cobra.ArbitraryArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&flagOnlySupplier, "supplier", "", "restrict the search to a single supplier")
	importCmd.Flags().StringVar(&flagFromFile, "from-file", "", "read part numbers from a file, one per line")
	importCmd.Flags().IntVar(&flagStockLocation, "stock-location", 0, "stock location ID to add stock at after import")
	importCmd.Flags().Float64Var(&flagStockAmount, "stock-amount", 0, "stock amount to add after import")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	terms, err := collectTerms(args)
	if err != nil {
		return err
	}
	if len(terms) == 0 {
		return errors.NewConfigError("import", "no part numbers given", nil)
	}

	imp, err := buildImporter(ctx, cfg)
	if err != nil {
		return err
	}

	var importOpts []importer.ImportOption
	if flagOnlySupplier != "" {
		importOpts = append(importOpts, importer.WithOnlySupplier(flagOnlySupplier))
	}
	stockLocation, stockAmount := cfg.StockLocationID, cfg.StockAmount
	if cmd.Flags().Changed("stock-location") {
		stockLocation = flagStockLocation
	}
	if cmd.Flags().Changed("stock-amount") {
		stockAmount = flagStockAmount
	}
	if stockLocation != 0 {
		importOpts = append(importOpts, importer.WithStock(stockLocation, stockAmount))
	}

	log := logging.Default()
	counts := map[severity.Level]int{}
	levels := make([]severity.Level, 0, len(terms))
	for _, term := range terms {
		level := imp.ImportPart(ctx, term, importOpts...)
		counts[level]++
		levels = append(levels, level)
	}
	worst := severity.Worst(levels...)

	log.Info().
		Int("success", counts[severity.Success]).
		Int("incomplete", counts[severity.Incomplete]).
		Int("failure", counts[severity.Failure]).
		Int("error", counts[severity.Error]).
		Msg("import finished")

	if worst >= severity.Failure {
		os.Exit(1)
	}
	return nil
}

// buildImporter wires the repository client, category configuration and
// enabled suppliers into an importer.
func buildImporter(ctx context.Context, cfg *config.Config) (*importer.Importer, error) {
	if cfg.InvenTreeURL == "" || cfg.InvenTreeToken == "" {
		return nil, errors.NewConfigError("inventree",
			"inventree.url and inventree.token are required", nil)
	}

	var client inventory.Client = inventree.New(cfg.InvenTreeURL, cfg.InvenTreeToken)
	if cfg.DryRun {
		client = inventory.DryRun(client)
	}

	cat, err := catalog.LoadFile(cfg.CategoriesFile)
	if err != nil {
		return nil, err
	}

	sups, err := suppliers.Default().Enabled(cfg.Suppliers)
	if err != nil {
		return nil, err
	}
	for _, s := range sups {
		configurable, ok := s.(suppliers.Configurable)
		if !ok {
			continue
		}
		settings := cfg.SupplierSettings[strings.ToLower(s.Name())]
		if err := configurable.Configure(settings); err != nil {
			return nil, err
		}
	}

	opts := []importer.Option{
		importer.WithMaxResults(cfg.MaxResults),
		importer.WithDatasheets(cfg.Datasheets),
		importer.WithCurrency(cfg.Currency),
	}
	if cfg.Interactive {
		opts = append(opts, importer.WithChooser(prompt.NewConsole()))
	}

	return importer.New(ctx, client, cat, sups, opts...)
}

// collectTerms merges positional part numbers with the optional input
// file, one term per line, # starting a comment.
func collectTerms(args []string) ([]string, error) {
	terms := append([]string{}, args...)
	if flagFromFile == "" {
		return terms, nil
	}

	f, err := os.Open(flagFromFile)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		terms = append(terms, line)
	}
	return terms, scanner.Err()
}
