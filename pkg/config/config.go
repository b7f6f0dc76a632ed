// Package config loads partsync configuration in order of precedence:
// command-line flags (bound by the CLI layer), environment variables,
// .env files, the YAML config file, and defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/partforge/partsync/pkg/errors"
)

// Datasheet attachment modes.
const (
	DatasheetOff    = ""
	DatasheetUpload = "upload"
	DatasheetLink   = "link"
)

// Config holds the application configuration.
type Config struct {
	// Repository connection.
	InvenTreeURL   string
	InvenTreeToken string

	// Import behavior.
	Interactive    bool
	DryRun         bool
	MaxResults     int    // cap on candidates shown per supplier
	Datasheets     string // DatasheetOff, DatasheetUpload or DatasheetLink
	Currency       string
	CategoriesFile string

	// Suppliers enabled for this run, in registry order when empty.
	Suppliers []string
	// SupplierSettings carries per-adapter options (API keys, locales).
	SupplierSettings map[string]map[string]string

	// Optional stock adjustment applied after a successful import.
	StockLocationID int
	StockAmount     float64

	// Logging.
	Verbose bool
	Quiet   bool

	// ConfigFile is the file viper actually used, for diagnostics.
	ConfigFile string
}

// Load reads configuration from all sources. An explicit configFile wins
// over the search path (working directory, then $HOME).
func Load(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix("PARTSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("max_results", 10)
	v.SetDefault("currency", "EUR")
	v.SetDefault("datasheets", DatasheetLink)
	v.SetDefault("categories_file", "categories.yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "reading "+configFile, err)
		}
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(".partsync")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		// A missing config file is fine; defaults and env apply.
		_ = v.ReadInConfig()
	}

	cfg := &Config{
		InvenTreeURL:     v.GetString("inventree.url"),
		InvenTreeToken:   v.GetString("inventree.token"),
		Interactive:      v.GetBool("interactive"),
		DryRun:           v.GetBool("dry_run"),
		MaxResults:       v.GetInt("max_results"),
		Datasheets:       v.GetString("datasheets"),
		Currency:         v.GetString("currency"),
		CategoriesFile:   v.GetString("categories_file"),
		Suppliers:        v.GetStringSlice("suppliers"),
		SupplierSettings: map[string]map[string]string{},
		StockLocationID:  v.GetInt("stock.location"),
		StockAmount:      v.GetFloat64("stock.amount"),
		Verbose:          v.GetBool("verbose"),
		Quiet:            v.GetBool("quiet"),
		ConfigFile:       v.ConfigFileUsed(),
	}

	for name, settings := range v.GetStringMap("supplier_settings") {
		entry := map[string]string{}
		if m, ok := settings.(map[string]any); ok {
			for key, value := range m {
				if s, ok := value.(string); ok {
					entry[key] = s
				}
			}
		}
		cfg.SupplierSettings[name] = entry
	}

	if cfg.CategoriesFile != "" && !filepath.IsAbs(cfg.CategoriesFile) && cfg.ConfigFile != "" {
		cfg.CategoriesFile = filepath.Join(filepath.Dir(cfg.ConfigFile), cfg.CategoriesFile)
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Datasheets {
	case DatasheetOff, DatasheetUpload, DatasheetLink:
	default:
		return errors.NewConfigError("datasheets",
			"must be one of: upload, link, or empty", nil)
	}
	if c.MaxResults < 1 {
		return errors.NewConfigError("max_results", "must be at least 1", nil)
	}
	return nil
}

// loadEnvFiles loads .env files from the working directory.
func loadEnvFiles() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}
