// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

// Package shopify drives the Shopify OAuth handshake: building the
// authorization URL, validating and exchanging the callback, and
// upserting the connected store into the registry.
package shopify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopsage-dev/shopsage/internal/store"
	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

// StateCookie is the cookie carrying the OAuth state nonce between the
// begin and callback requests.
const StateCookie = "shopsage_oauth_state"

// CallbackPath is the fixed redirect path registered with Shopify.
const CallbackPath = "/api/v1/auth/shopify/callback"

var shopDomainRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*\.myshopify\.com$`)

// Config holds the Shopify app credentials and endpoints.
type Config struct {
	APIKey     string
	APISecret  string
	Scopes     string // comma-separated, e.g. "read_orders,read_products"
	APIVersion string
	AppURL     string // public base URL of this service, used for the redirect URI

	// TokenEndpoint overrides the access-token exchange URL; useful for
	// testing against a mock server. Empty means the shop's own
	// /admin/oauth/access_token endpoint.
	TokenEndpoint string
}

// Session is the result of a validated OAuth callback.
type Session struct {
	Shop        string
	AccessToken string
	Scope       string
}

// OAuth implements the three-step Shopify OAuth flow against the store
// registry. The HTTP client is injected once at wire-up.
type OAuth struct {
	cfg      Config
	client   *http.Client
	registry store.StoreRegistry
}

// New creates an OAuth connector. Returns an error when the app
// credentials are missing.
func New(cfg Config, client *http.Client, registry store.StoreRegistry) (*OAuth, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ssgerr.New(ssgerr.CodeConfigValidateInvalidValue, "shopify api_key and api_secret are required")
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OAuth{cfg: cfg, client: client, registry: registry}, nil
}

// BeginAuth builds the authorization URL for shop and returns it together
// with the state nonce the caller must set as the state cookie. Nothing
// is persisted at this step.
func (o *OAuth) BeginAuth(shop string) (authURL, state string, err error) {
	if shop == "" {
		return "", "", ssgerr.New(ssgerr.CodeOAuthShopInvalid, "Shop parameter required")
	}
	if !shopDomainRe.MatchString(shop) {
		return "", "", ssgerr.Errorf(ssgerr.CodeOAuthShopInvalid, "invalid shop domain %q", shop)
	}

	state = uuid.NewString()

	q := url.Values{}
	q.Set("client_id", o.cfg.APIKey)
	q.Set("scope", o.cfg.Scopes)
	q.Set("redirect_uri", strings.TrimRight(o.cfg.AppURL, "/")+CallbackPath)
	q.Set("state", state)

	return fmt.Sprintf("https://%s/admin/oauth/authorize?%s", shop, q.Encode()), state, nil
}

// CompleteCallback validates the OAuth callback (state nonce against the
// cookie, HMAC signature over the query) and exchanges the code for an
// access token, then upserts the store registry entry: credential, scope,
// active=true, current API version. Validation failures return an
// auth-class error; exchange transport failures a server-class error with
// internal detail logged, never surfaced.
func (o *OAuth) CompleteCallback(ctx context.Context, cookies map[string]string, query url.Values) (*store.Store, error) {
	session, err := o.validateCallback(ctx, cookies, query)
	if err != nil {
		return nil, err
	}

	apiVersion := o.cfg.APIVersion
	if apiVersion == "" {
		apiVersion = store.DefaultAPIVersion
	}

	s, err := o.registry.Upsert(ctx, &store.Store{
		ShopDomain:  session.Shop,
		AccessToken: session.AccessToken,
		Scope:       session.Scope,
		Active:      true,
		APIVersion:  apiVersion,
	})
	if err != nil {
		slog.Error("persisting oauth session failed", "shop", session.Shop, "error", err)
		return nil, ssgerr.Wrap(err, ssgerr.CodeOAuthExchangeFailure, "Authentication failed")
	}

	return s, nil
}

// Disconnect deactivates the store for shop. The credential is retained
// so the merchant can reconnect without a fresh OAuth round trip.
func (o *OAuth) Disconnect(ctx context.Context, shop string) error {
	return o.registry.SetActive(ctx, shop, false)
}

func (o *OAuth) validateCallback(ctx context.Context, cookies map[string]string, query url.Values) (*Session, error) {
	shop := query.Get("shop")
	if !shopDomainRe.MatchString(shop) {
		return nil, ssgerr.Errorf(ssgerr.CodeOAuthCallbackDenied, "Invalid OAuth request")
	}

	state := query.Get("state")
	if state == "" || cookies[StateCookie] == "" || !hmac.Equal([]byte(state), []byte(cookies[StateCookie])) {
		return nil, ssgerr.New(ssgerr.CodeOAuthCallbackDenied, "Invalid OAuth request")
	}

	if !o.validHMAC(query) {
		return nil, ssgerr.New(ssgerr.CodeOAuthCallbackDenied, "Invalid OAuth request")
	}

	code := query.Get("code")
	if code == "" {
		return nil, ssgerr.New(ssgerr.CodeOAuthCallbackDenied, "Invalid OAuth request")
	}

	return o.exchangeCode(ctx, shop, code)
}

// validHMAC verifies the hmac query parameter: a hex HMAC-SHA256 of the
// remaining query parameters sorted and joined as key=value pairs, keyed
// with the app secret.
func (o *OAuth) validHMAC(query url.Values) bool {
	provided, err := hex.DecodeString(query.Get("hmac"))
	if err != nil || len(provided) == 0 {
		return false
	}

	pairs := make([]string, 0, len(query))
	for key, values := range query {
		if key == "hmac" || key == "signature" {
			continue
		}
		for _, v := range values {
			pairs = append(pairs, key+"="+v)
		}
	}
	sort.Strings(pairs)

	mac := hmac.New(sha256.New, []byte(o.cfg.APISecret))
	mac.Write([]byte(strings.Join(pairs, "&")))

	return hmac.Equal(provided, mac.Sum(nil))
}

func (o *OAuth) exchangeCode(ctx context.Context, shop, code string) (*Session, error) {
	endpoint := o.cfg.TokenEndpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s/admin/oauth/access_token", shop)
	}

	payload, err := json.Marshal(map[string]string{
		"client_id":     o.cfg.APIKey,
		"client_secret": o.cfg.APISecret,
		"code":          code,
	})
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeOAuthExchangeFailure, "Authentication failed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(payload)))
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeOAuthExchangeFailure, "Authentication failed")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		slog.Error("shopify token exchange failed", "shop", shop, "error", err)
		return nil, ssgerr.New(ssgerr.CodeOAuthExchangeFailure, "Authentication failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		slog.Error("reading token exchange response failed", "shop", shop, "error", err)
		return nil, ssgerr.New(ssgerr.CodeOAuthExchangeFailure, "Authentication failed")
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("shopify token exchange rejected", "shop", shop, "status", resp.StatusCode)
		return nil, ssgerr.New(ssgerr.CodeOAuthCallbackDenied, "Invalid OAuth request")
	}

	var token struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		slog.Error("shopify token exchange returned malformed body", "shop", shop)
		return nil, ssgerr.New(ssgerr.CodeOAuthExchangeFailure, "Authentication failed")
	}

	return &Session{Shop: shop, AccessToken: token.AccessToken, Scope: token.Scope}, nil
}
