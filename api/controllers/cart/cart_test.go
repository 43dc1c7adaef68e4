package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	cartstore "github.com/bloomthreads/cartstate/internal/cart"
	"github.com/bloomthreads/cartstate/internal/products"
	"github.com/bloomthreads/cartstate/pkg/types"
)

type stubStore struct {
	snapshot cartstore.Snapshot
	total    decimal.Decimal

	addProduct  *products.Product
	addSize     *string
	addColor    *string
	removedKey  string
	setKey      string
	setQuantity int
	variantKey  string
	newSize     *string
	newColor    *string
	cleared     bool

	err error
}

func (s *stubStore) Add(_ context.Context, p products.Product, size, color *string) error {
	s.addProduct = &p
	s.addSize = size
	s.addColor = color
	return s.err
}

func (s *stubStore) Remove(_ context.Context, key string) error {
	s.removedKey = key
	return s.err
}

func (s *stubStore) SetQuantity(_ context.Context, key string, quantity int) error {
	s.setKey = key
	s.setQuantity = quantity
	return s.err
}

func (s *stubStore) ChangeVariant(_ context.Context, key string, newSize, newColor *string) error {
	s.variantKey = key
	s.newSize = newSize
	s.newColor = newColor
	return s.err
}

func (s *stubStore) Clear(_ context.Context) error {
	s.cleared = true
	return s.err
}

func (s *stubStore) Snapshot() cartstore.Snapshot { return s.snapshot }
func (s *stubStore) Total() decimal.Decimal       { return s.total }
func (s *stubStore) ItemCount() int {
	n := 0
	for _, it := range s.snapshot {
		n += it.Quantity
	}
	return n
}
func (s *stubStore) UniqueProductCount() int { return len(s.snapshot) }

func strptr(s string) *string { return &s }

func newTestRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Get("/cart", Fetch(svc, nil))
	r.Post("/cart/items", Add(svc, nil))
	r.Delete("/cart/items/{identityKey}", Remove(svc, nil))
	r.Put("/cart/items/{identityKey}/quantity", SetQuantity(svc, nil))
	r.Put("/cart/items/{identityKey}/variant", ChangeVariant(svc, nil))
	r.Delete("/cart", Clear(svc, nil))
	return r
}

func decodeCartView(t *testing.T, w *httptest.ResponseRecorder) CartView {
	t.Helper()
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	raw, err := json.Marshal(envelope.Data)
	if err != nil {
		t.Fatalf("failed to re-marshal data: %v", err)
	}
	var view CartView
	if err := json.Unmarshal(raw, &view); err != nil {
		t.Fatalf("failed to decode cart view: %v", err)
	}
	return view
}

func TestFetchReturnsViewWithAggregates(t *testing.T) {
	price := decimal.NewFromInt(100)
	svc := &stubStore{
		snapshot: cartstore.Snapshot{{
			IdentityKey:  "5|M|__unset__",
			Product:      products.Product{ID: 5, Title: "Linen Shirt", Price: price, DiscountPercentage: decimal.NewFromInt(10)},
			Quantity:     2,
			SelectedSize: strptr("M"),
		}},
		total: decimal.NewFromInt(180),
	}

	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 but got %d", w.Code)
	}
	view := decodeCartView(t, w)
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 item but got %d", len(view.Items))
	}
	if !view.Total.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("unexpected total %s", view.Total)
	}
	if view.ItemCount != 2 || view.UniqueProductCount != 1 {
		t.Fatalf("unexpected aggregates: count=%d unique=%d", view.ItemCount, view.UniqueProductCount)
	}
	// line total is quantity times the discounted unit price
	if !view.Items[0].LineTotal.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("unexpected line total %s", view.Items[0].LineTotal)
	}
}

func TestAddDecodesAndForwardsVariant(t *testing.T) {
	svc := &stubStore{}
	body := `{"product":{"id":5,"title":"Linen Shirt","price":"100","discount_percentage":10},"selectedSize":"M"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(body))
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 but got %d: %s", w.Code, w.Body.String())
	}
	if svc.addProduct == nil || svc.addProduct.ID != 5 {
		t.Fatalf("store did not receive the product: %+v", svc.addProduct)
	}
	if svc.addSize == nil || *svc.addSize != "M" {
		t.Fatalf("expected size M, got %v", svc.addSize)
	}
	if svc.addColor != nil {
		t.Fatalf("expected absent color, got %v", *svc.addColor)
	}
}

func TestAddRejectsInvalidProduct(t *testing.T) {
	svc := &stubStore{}
	body := `{"product":{"id":0,"price":"100"}}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(body))
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 but got %d", w.Code)
	}
	if svc.addProduct != nil {
		t.Fatalf("invalid payload must not reach the store")
	}
}

func TestAddRejectsUnknownFields(t *testing.T) {
	svc := &stubStore{}
	body := `{"product":{"id":5,"price":"100"},"color":"red"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(body))
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 but got %d", w.Code)
	}
}

func TestRemoveUnescapesIdentityKey(t *testing.T) {
	svc := &stubStore{}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/cart/items/5%7CM%7C__unset__", nil)
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 but got %d", w.Code)
	}
	if svc.removedKey != "5|M|__unset__" {
		t.Fatalf("unexpected key %q", svc.removedKey)
	}
}

func TestSetQuantityForwardsZero(t *testing.T) {
	svc := &stubStore{}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/cart/items/5%7CM%7C__unset__/quantity", bytes.NewBufferString(`{"quantity":0}`))
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 but got %d", w.Code)
	}
	if svc.setKey != "5|M|__unset__" || svc.setQuantity != 0 {
		t.Fatalf("unexpected call: key=%q quantity=%d", svc.setKey, svc.setQuantity)
	}
}

func TestChangeVariantForwardsNewIdentity(t *testing.T) {
	svc := &stubStore{}
	body := `{"newSize":"L","newColor":"navy"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/cart/items/5%7CM%7C__unset__/variant", bytes.NewBufferString(body))
	newTestRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 but got %d", w.Code)
	}
	if svc.variantKey != "5|M|__unset__" {
		t.Fatalf("unexpected key %q", svc.variantKey)
	}
	if svc.newSize == nil || *svc.newSize != "L" || svc.newColor == nil || *svc.newColor != "navy" {
		t.Fatalf("unexpected variant: size=%v color=%v", svc.newSize, svc.newColor)
	}
}

func TestClearMapsStoreErrors(t *testing.T) {
	svc := &stubStore{err: errors.New("slot write failed")}

	w := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/cart", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 but got %d", w.Code)
	}
	if !svc.cleared {
		t.Fatalf("expected Clear to be invoked")
	}
}
