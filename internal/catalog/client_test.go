package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ordergrid/ordergrid/internal/order"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&Config{APIURL: srv.URL, PriceCategory: 2})
}

func TestSearchItem(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items/search" {
			t.Errorf("path = %s, want /items/search", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "P001" {
			t.Errorf("query = %q, want P001", got)
		}
		if got := r.URL.Query().Get("priceCategory"); got != "2" {
			t.Errorf("priceCategory = %q, want 2", got)
		}
		json.NewEncoder(w).Encode(order.Item{
			ID: 1, Code: "P001", Name: "Widget", HasBatchTracking: true,
			Units: []order.UnitVariant{{UnitID: 5, UnitName: "pcs", Price: decimal.NewFromInt(10), ToBaseRatio: decimal.NewFromInt(1)}},
		})
	})

	item, err := client.SearchItem(context.Background(), "P001", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ID != 1 || item.Code != "P001" || !item.HasBatchTracking {
		t.Errorf("item = %+v", item)
	}
	if len(item.Units) != 1 || !item.Units[0].Price.Equal(decimal.NewFromInt(10)) {
		t.Errorf("units = %+v", item.Units)
	}
}

func TestSearchItemNotFound(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.SearchItem(context.Background(), "NOPE", 2)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestItemUnits(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/items/7/units" {
			t.Errorf("path = %s, want /items/7/units", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]order.UnitVariant{
			{UnitID: 1, UnitName: "pcs", Price: decimal.NewFromInt(10), ToBaseRatio: decimal.NewFromInt(1)},
			{UnitID: 2, UnitName: "box", Price: decimal.NewFromInt(95), ToBaseRatio: decimal.NewFromInt(10)},
		})
	})

	units, err := client.ItemUnits(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 2 || units[1].UnitName != "box" {
		t.Errorf("units = %+v", units)
	}
}

func TestSaveOrder(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("%s %s, want POST /orders", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("missing X-Request-ID header")
		}
		var payload struct {
			Header order.Header `json:"header"`
			Lines  []order.Line `json:"lines"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if payload.Header.DocumentNumber != "A-0001" || len(payload.Lines) != 1 {
			t.Errorf("payload = %+v", payload)
		}
		json.NewEncoder(w).Encode(SavedOrder{ID: 42, DocumentNumber: "A-0001"})
	})

	h := order.Header{DocumentNumber: "A-0001"}
	lines := []order.Line{{Serial: 1, ItemID: 1}}
	saved, err := client.SaveOrder(context.Background(), h, lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID != 42 {
		t.Errorf("saved id = %d, want 42", saved.ID)
	}
}

func TestSaveOrderValidationError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": "duplicate document number"})
	})

	_, err := client.SaveOrder(context.Background(), order.Header{}, nil)
	var saveErr *SaveError
	if !errors.As(err, &saveErr) {
		t.Fatalf("err = %v, want *SaveError", err)
	}
	if saveErr.Message != "duplicate document number" {
		t.Errorf("message = %q", saveErr.Message)
	}
}

func TestGenerateNumber(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/generate-number" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("book") != "A" || r.URL.Query().Get("type") != "1" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(GeneratedNumber{OrderNumber: "A-0007", AutoNumbering: true})
	})

	gen, err := client.GenerateNumber(context.Background(), "A", order.DocumentPurchase)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.OrderNumber != "A-0007" || !gen.AutoNumbering {
		t.Errorf("gen = %+v", gen)
	}
}

func TestDeleteOrder(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/orders/42" {
			t.Errorf("%s %s, want DELETE /orders/42", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.DeleteOrder(context.Background(), 42); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSourceResolvesWithConfiguredPriceCategory(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("priceCategory"); got != "2" {
			t.Errorf("priceCategory = %q, want 2", got)
		}
		json.NewEncoder(w).Encode(order.Item{ID: 1, Code: "P001"})
	})

	item, err := client.Source().ResolveItem(context.Background(), "P001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.ID != 1 {
		t.Errorf("item = %+v", item)
	}
}
