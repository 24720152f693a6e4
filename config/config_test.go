package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("SHOPIFY_STORE_URL", "demo.myshopify.com")
	t.Setenv("SHOPIFY_API_KEY", "key")
	t.Setenv("SHOPIFY_API_PASSWORD", "password")
	t.Setenv("SPAPI_CLIENT_ID", "client")
	t.Setenv("SPAPI_CLIENT_SECRET", "secret")
	t.Setenv("SPAPI_REFRESH_TOKEN", "refresh")
	t.Setenv("SPAPI_ENDPOINT", "https://sellingpartnerapi-na.amazon.com")
}

func TestFromEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SPAPI_MARKETPLACE_IDS", "ATVPDKIKX0DER, A1PA6795UKMFR9")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "demo.myshopify.com", cfg.Shopify.StoreURL)
	assert.Equal(t, "2023-10", cfg.Shopify.APIVersion)
	assert.Equal(t, "https://api.amazon.com/auth/o2/token", cfg.Amazon.TokenURL)
	assert.Equal(t, []string{"ATVPDKIKX0DER", "A1PA6795UKMFR9"}, cfg.Amazon.MarketplaceIDs)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
}

func TestFromEnv_MissingCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SHOPIFY_API_KEY", "")
	t.Setenv("SPAPI_REFRESH_TOKEN", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOPIFY_API_KEY")
	assert.Contains(t, err.Error(), "SPAPI_REFRESH_TOKEN")
}

func TestPostgresConfig_GetConnectionString(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "db",
		Port:     "5433",
		User:     "catalog",
		Password: "secret",
		DBName:   "catalog",
	}
	assert.Equal(t,
		"host=db port=5433 user=catalog password=secret dbname=catalog sslmode=disable",
		cfg.GetConnectionString())
}
