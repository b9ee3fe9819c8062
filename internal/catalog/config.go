package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the backend connection settings.
type Config struct {
	APIURL        string
	APIKey        string
	PriceCategory int64
	Brand         string // branding shown in the TUI title (default: "OrderGrid")
}

// LoadConfig reads `.ordergrid.env` from the usual locations and merges it
// with the process environment; real environment variables win.
func LoadConfig() (*Config, error) {
	configPaths := []string{
		".ordergrid.env",
		"../.ordergrid.env",
		filepath.Join(filepath.Dir(os.Args[0]), ".ordergrid.env"),
	}

	vars := map[string]string{}
	for _, p := range configPaths {
		if _, err := os.Stat(p); err == nil {
			fileVars, err := godotenv.Read(p)
			if err != nil {
				return nil, fmt.Errorf("cannot read config %s: %w", p, err)
			}
			vars = fileVars
			break
		}
	}

	get := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return vars[key]
	}

	config := &Config{
		APIURL: get("ORDER_API_URL"),
		APIKey: get("ORDER_API_KEY"),
		Brand:  get("ORDER_BRAND"),
	}
	if config.Brand == "" {
		config.Brand = "OrderGrid"
	}
	if raw := get("ORDER_PRICE_CATEGORY"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ORDER_PRICE_CATEGORY: %q", raw)
		}
		config.PriceCategory = id
	}

	if config.APIURL == "" {
		return nil, fmt.Errorf("missing required config: ORDER_API_URL")
	}

	return config, nil
}
