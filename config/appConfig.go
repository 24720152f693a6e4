package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type ShopifyConfig struct {
	StoreURL    string `yaml:"store_url"`
	APIKey      string `yaml:"api_key"`
	APIPassword string `yaml:"api_password"`
	APIVersion  string `yaml:"api_version"`
}

type AmazonConfig struct {
	ClientID       string   `yaml:"client_id"`
	ClientSecret   string   `yaml:"client_secret"`
	RefreshToken   string   `yaml:"refresh_token"`
	Endpoint       string   `yaml:"endpoint"`
	TokenURL       string   `yaml:"token_url"`
	SellerID       string   `yaml:"seller_id"`
	MarketplaceIDs []string `yaml:"marketplace_ids"`
}

type AppConfig struct {
	Shopify  ShopifyConfig  `yaml:"shopify"`
	Amazon   AmazonConfig   `yaml:"amazon"`
	Postgres PostgresConfig `yaml:"postgres"`
}

func LoadConfig(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := &AppConfig{}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}
