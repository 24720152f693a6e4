package services

import (
	"net/http"
)

type AuthEngine interface {
	SetAuth(request *http.Request)
}

// BasicAuth authenticates Shopify Admin REST calls with the app key/password
// pair (private app credentials).
type BasicAuth struct {
	apiKey      string
	apiPassword string
}

func (b *BasicAuth) SetAuth(request *http.Request) {
	request.SetBasicAuth(b.apiKey, b.apiPassword)
}

func NewBasicAuth(apiKey, apiPassword string) *BasicAuth {
	if apiKey == "" || apiPassword == "" {
		return nil
	}
	return &BasicAuth{apiKey: apiKey, apiPassword: apiPassword}
}
