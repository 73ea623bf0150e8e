package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mmfactory/pizzeria-backend/api/middleware"
	cartsvc "github.com/mmfactory/pizzeria-backend/internal/cart"
	"github.com/mmfactory/pizzeria-backend/internal/menu"
	"github.com/mmfactory/pizzeria-backend/pkg/types"
)

type memoryCartStore struct {
	items map[string][]cartsvc.Item
}

func (m *memoryCartStore) Load(_ context.Context, cartID string) ([]cartsvc.Item, error) {
	return m.items[cartID], nil
}

func (m *memoryCartStore) Save(_ context.Context, cartID string, items []cartsvc.Item) error {
	m.items[cartID] = items
	return nil
}

func (m *memoryCartStore) Delete(_ context.Context, cartID string) error {
	delete(m.items, cartID)
	return nil
}

func newCartRouter(t *testing.T) (chi.Router, string) {
	t.Helper()
	svc, err := cartsvc.NewService(&memoryCartStore{items: map[string][]cartsvc.Item{}}, menu.NewService())
	if err != nil {
		t.Fatalf("new cart service: %v", err)
	}

	cartID := uuid.NewString()
	r := chi.NewRouter()
	r.Use(middleware.CartSession(time.Hour, nil))
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", CartFetch(svc, nil))
		r.Post("/items", CartAddItem(svc, nil))
		r.Delete("/items/{itemId}", CartRemoveItem(svc, nil))
		r.Patch("/items/{itemId}/quantity", CartUpdateQuantity(svc, nil))
	})
	return r, cartID
}

func cartRequest(method, target, cartID, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Cart-Id", cartID)
	return req
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartsvc.Cart {
	t.Helper()
	var envelope struct {
		Data cartsvc.Cart `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	return envelope.Data
}

func TestCartAddItemComputesTotals(t *testing.T) {
	router, cartID := newCartRouter(t)

	body := `{"menu_item_id":"pizza-1","quantity":2,"extras":[{"extra_id":"extra-mozzarella","quantity":1}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, cartRequest(http.MethodPost, "/api/v1/cart/items", cartID, body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	record := decodeCart(t, rec)
	if got := record.Total.StringFixed(2); got != "26.62" {
		t.Fatalf("total = %s, want 26.62", got)
	}
	if len(record.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(record.Items))
	}
}

func TestCartFetchEmptyCart(t *testing.T) {
	router, cartID := newCartRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, cartRequest(http.MethodGet, "/api/v1/cart", cartID, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	record := decodeCart(t, rec)
	if len(record.Items) != 0 || !record.Total.IsZero() {
		t.Fatalf("expected empty cart, got %+v", record)
	}
}

func TestCartAddItemRejectsUnknownMenuItem(t *testing.T) {
	router, cartID := newCartRouter(t)

	body := `{"menu_item_id":"pizza-999","quantity":1}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, cartRequest(http.MethodPost, "/api/v1/cart/items", cartID, body))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestCartAddItemRejectsMalformedBody(t *testing.T) {
	router, cartID := newCartRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, cartRequest(http.MethodPost, "/api/v1/cart/items", cartID, `{"menu_item_id":`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("unexpected code %q", envelope.Error.Code)
	}
}

func TestCartQuantityZeroRemovesLine(t *testing.T) {
	router, cartID := newCartRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, cartRequest(http.MethodPost, "/api/v1/cart/items", cartID, `{"menu_item_id":"pizza-1","quantity":1}`))
	record := decodeCart(t, rec)
	lineID := record.Items[0].ID

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, cartRequest(http.MethodPatch, "/api/v1/cart/items/"+lineID+"/quantity", cartID, `{"quantity":0}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	record = decodeCart(t, rec)
	if len(record.Items) != 0 {
		t.Fatalf("expected line removed, got %d lines", len(record.Items))
	}
}

func TestCartRemoveAbsentLineIsNoOp(t *testing.T) {
	router, cartID := newCartRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, cartRequest(http.MethodDelete, "/api/v1/cart/items/"+uuid.NewString(), cartID, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for absent line, got %d", rec.Code)
	}
}
