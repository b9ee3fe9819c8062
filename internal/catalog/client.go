package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ordergrid/ordergrid/internal/order"
)

// Colors for terminal output
const (
	Red    = "\033[0;31m"
	Green  = "\033[0;32m"
	Yellow = "\033[1;33m"
	Blue   = "\033[0;34m"
	Cyan   = "\033[0;36m"
	Reset  = "\033[0m"
)

// ErrNotFound is returned when a lookup matches nothing. Callers restore
// the cell's previous value and keep focus where it was.
var ErrNotFound = errors.New("not found")

// SaveError carries a validation message from the order-save endpoint.
type SaveError struct {
	Message string
}

func (e *SaveError) Error() string { return e.Message }

// Client handles API requests against the order backend.
type Client struct {
	Config     *Config
	HTTPClient *http.Client
}

// NewClient creates a new API client.
func NewClient(config *Config) *Client {
	return &Client{
		Config: config,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Config.APIURL+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	if c.Config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.Config.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &payload) == nil && payload.Error != "" {
			return resp.StatusCode, &SaveError{Message: payload.Error}
		}
		return resp.StatusCode, fmt.Errorf("backend returned %d: %s", resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %s", respBody)
		}
	}
	return resp.StatusCode, nil
}

// SearchItem resolves a typed code or barcode to a single catalog item.
func (c *Client) SearchItem(ctx context.Context, query string, priceCategory int64) (order.Item, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("priceCategory", strconv.FormatInt(priceCategory, 10))

	var item order.Item
	if _, err := c.do(ctx, http.MethodGet, "/items/search?"+q.Encode(), nil, &item); err != nil {
		return order.Item{}, err
	}
	return item, nil
}

// ItemUnits fetches the unit/price variants of an item.
func (c *Client) ItemUnits(ctx context.Context, itemID int64) ([]order.UnitVariant, error) {
	var units []order.UnitVariant
	path := fmt.Sprintf("/items/%d/units", itemID)
	if _, err := c.do(ctx, http.MethodGet, path, nil, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// StorageLocations fetches the storage location catalog.
func (c *Client) StorageLocations(ctx context.Context) ([]order.Location, error) {
	var locations []order.Location
	if _, err := c.do(ctx, http.MethodGet, "/storage-locations", nil, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// SavedOrder is the persistence result for a saved order.
type SavedOrder struct {
	ID             int64  `json:"id"`
	DocumentNumber string `json:"documentNumber"`
}

// SaveOrder persists the order header and its resolved lines.
func (c *Client) SaveOrder(ctx context.Context, h order.Header, lines []order.Line) (SavedOrder, error) {
	body := struct {
		Header order.Header `json:"header"`
		Lines  []order.Line `json:"lines"`
	}{Header: h, Lines: lines}

	var saved SavedOrder
	if _, err := c.do(ctx, http.MethodPost, "/orders", body, &saved); err != nil {
		return SavedOrder{}, err
	}
	return saved, nil
}

// DeleteOrder removes a persisted order.
func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil, nil)
	return err
}

// GeneratedNumber is the backend's answer to a number request.
type GeneratedNumber struct {
	OrderNumber   string `json:"orderNumber"`
	AutoNumbering bool   `json:"autoNumbering"`
}

// GenerateNumber asks the backend for the next document number in a book.
func (c *Client) GenerateNumber(ctx context.Context, book string, docType order.DocumentType) (GeneratedNumber, error) {
	q := url.Values{}
	q.Set("book", book)
	q.Set("type", strconv.Itoa(int(docType)))

	var gen GeneratedNumber
	if _, err := c.do(ctx, http.MethodGet, "/orders/generate-number?"+q.Encode(), nil, &gen); err != nil {
		return GeneratedNumber{}, err
	}
	return gen, nil
}

// Ping tests the connection by hitting the lightest endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.StorageLocations(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	return nil
}

// ItemSource adapts the client to the reconciler's resolution interface,
// pinning the configured price category.
type ItemSource struct {
	c *Client
}

// Source returns the client as an order.UnitSource.
func (c *Client) Source() *ItemSource { return &ItemSource{c: c} }

func (s *ItemSource) ResolveItem(ctx context.Context, codeOrBarcode string) (order.Item, error) {
	return s.c.SearchItem(ctx, codeOrBarcode, s.c.Config.PriceCategory)
}
