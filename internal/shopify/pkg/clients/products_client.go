package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"catalogsync_api/config"
	"catalogsync_api/internal/shopify/business/models/dto/response"
	"catalogsync_api/internal/shopify/business/services"
	"catalogsync_api/pkg/logger"
)

const requestTimeout = 20 * time.Second

// ProductsClient talks to the Shopify Admin REST API. It owns network I/O and
// pagination only; it never retries. Retry policy belongs to the caller.
type ProductsClient struct {
	baseURL string
	auth    services.AuthEngine
	log     logger.Logger
	client  *http.Client
}

func NewProductsClient(cfg config.ShopifyConfig, writer io.Writer) *ProductsClient {
	base := cfg.StoreURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &ProductsClient{
		baseURL: fmt.Sprintf("%s/admin/api/%s", base, cfg.APIVersion),
		auth:    services.NewBasicAuth(cfg.APIKey, cfg.APIPassword),
		log:     logger.NewLogger(writer, "[ShopifyClient]"),
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// ListProducts fetches one page of products. A non-empty nextCursor means more
// pages exist; an empty cursor terminates the sequence.
func (c *ProductsClient) ListProducts(ctx context.Context, pageSize int, cursor string) ([]json.RawMessage, string, error) {
	if pageSize <= 0 {
		return nil, "", fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(pageSize))
	if cursor != "" {
		params.Set("page_info", cursor)
	}

	endpoint := fmt.Sprintf("%s/products.json?%s", c.baseURL, params.Encode())
	resp, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return nil, "", err
	}

	var productsResponse response.ProductsResponse
	if err := json.NewDecoder(resp.Body).Decode(&productsResponse); err != nil {
		return nil, "", fmt.Errorf("failed to decode products response: %w", err)
	}

	nextCursor := parseNextPageInfo(resp.Header.Get("Link"))
	c.log.Log("Fetched %d products (next cursor present: %t)", len(productsResponse.Products), nextCursor != "")

	return productsResponse.Products, nextCursor, nil
}

// GetProduct fetches a single product by its Shopify id.
func (c *ProductsClient) GetProduct(ctx context.Context, productID int64) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/products/%d.json", c.baseURL, productID)
	resp, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp); err != nil {
		return nil, err
	}

	var productResponse response.ProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&productResponse); err != nil {
		return nil, fmt.Errorf("failed to decode product response: %w", err)
	}
	return productResponse.Product, nil
}

func (c *ProductsClient) doRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.auth.SetAuth(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: FetchTransport, Err: err}
	}
	return resp, nil
}

func classifyStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &FetchError{Kind: FetchAuth, StatusCode: resp.StatusCode}
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &FetchError{Kind: FetchRemote, StatusCode: resp.StatusCode, Body: string(body)}
}

// parseNextPageInfo extracts the page_info token of the rel="next" link from a
// Shopify Link header. Returns "" when there is no next page.
func parseNextPageInfo(linkHeader string) string {
	for _, part := range strings.Split(linkHeader, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end < 0 || end <= start {
			continue
		}
		parsed, err := url.Parse(part[start+1 : end])
		if err != nil {
			continue
		}
		return parsed.Query().Get("page_info")
	}
	return ""
}
