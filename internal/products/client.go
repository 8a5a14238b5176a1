package product

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

const (
	projection  = `{_id,name,price,imageUrl,description,discountPercentage,image{asset->{url}},tags}`
	listQuery   = `*[_type == "product"]` + projection
	detailQuery = `*[_type == "product" && _id == $id][0]` + projection

	maxErrorBody = 4096
)

// Catalog is the read-only product source.
type Catalog interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (*Product, error)
}

// Client queries the hosted content API over HTTP.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClient builds a content client. A nil httpClient uses one with cfg.Timeout.
func NewClient(cfg config.ContentConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		endpoint: cfg.Endpoint(),
		token:    strings.TrimSpace(cfg.Token),
		http:     httpClient,
	}
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// Query runs a query with named parameters and decodes its result into out.
// It reports false when the result is null.
func (c *Client) Query(ctx context.Context, query string, params map[string]any, out any) (bool, error) {
	values := url.Values{}
	values.Set("query", query)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode query parameter")
		}
		values.Set("$"+name, string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build content request")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "content api request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return false, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("content api returned %d", resp.StatusCode)).
			WithDetails(map[string]any{"status": resp.StatusCode, "body": strings.TrimSpace(string(body))})
	}

	var envelope queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode content response")
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode content result")
	}
	return true, nil
}

// List returns every product in source order.
func (c *Client) List(ctx context.Context) ([]Product, error) {
	var raw []rawProduct
	if _, err := c.Query(ctx, listQuery, nil, &raw); err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(raw))
	for _, r := range raw {
		products = append(products, r.toProduct())
	}
	return products, nil
}

// Get returns one product or a not found error.
func (c *Client) Get(ctx context.Context, id string) (*Product, error) {
	var raw rawProduct
	found, err := c.Query(ctx, detailQuery, map[string]any{"id": id}, &raw)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	p := raw.toProduct()
	return &p, nil
}
