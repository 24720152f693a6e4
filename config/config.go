package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// FromEnv builds the application configuration from process environment
// variables. Missing required credentials are a startup error, never a
// runtime one.
func FromEnv() (*AppConfig, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &AppConfig{
		Shopify: ShopifyConfig{
			StoreURL:    os.Getenv("SHOPIFY_STORE_URL"),
			APIKey:      os.Getenv("SHOPIFY_API_KEY"),
			APIPassword: os.Getenv("SHOPIFY_API_PASSWORD"),
			APIVersion:  getEnv("SHOPIFY_API_VERSION", "2023-10"),
		},
		Amazon: AmazonConfig{
			ClientID:       os.Getenv("SPAPI_CLIENT_ID"),
			ClientSecret:   os.Getenv("SPAPI_CLIENT_SECRET"),
			RefreshToken:   os.Getenv("SPAPI_REFRESH_TOKEN"),
			Endpoint:       os.Getenv("SPAPI_ENDPOINT"),
			TokenURL:       getEnv("SPAPI_TOKEN_URL", "https://api.amazon.com/auth/o2/token"),
			SellerID:       os.Getenv("SPAPI_SELLER_ID"),
			MarketplaceIDs: splitEnvList("SPAPI_MARKETPLACE_IDS"),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:   getEnv("POSTGRES_NAME", "postgres"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	required := map[string]string{
		"SHOPIFY_STORE_URL":    c.Shopify.StoreURL,
		"SHOPIFY_API_KEY":      c.Shopify.APIKey,
		"SHOPIFY_API_PASSWORD": c.Shopify.APIPassword,
		"SPAPI_CLIENT_ID":      c.Amazon.ClientID,
		"SPAPI_CLIENT_SECRET":  c.Amazon.ClientSecret,
		"SPAPI_REFRESH_TOKEN":  c.Amazon.RefreshToken,
		"SPAPI_ENDPOINT":       c.Amazon.Endpoint,
	}

	var missing []string
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var list []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			list = append(list, trimmed)
		}
	}
	return list
}
