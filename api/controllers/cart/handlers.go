package cart

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bloomthreads/cartstate/api/responses"
	"github.com/bloomthreads/cartstate/api/validators"
	cartstore "github.com/bloomthreads/cartstate/internal/cart"
	"github.com/bloomthreads/cartstate/internal/products"
	pkgerrors "github.com/bloomthreads/cartstate/pkg/errors"
	"github.com/bloomthreads/cartstate/pkg/logger"
)

// Service is the slice of the cart store the HTTP surface depends on.
// *cartstore.Store satisfies it.
type Service interface {
	Add(ctx context.Context, p products.Product, size, color *string) error
	Remove(ctx context.Context, key string) error
	SetQuantity(ctx context.Context, key string, quantity int) error
	ChangeVariant(ctx context.Context, key string, newSize, newColor *string) error
	Clear(ctx context.Context) error
	Snapshot() cartstore.Snapshot
	Total() decimal.Decimal
	ItemCount() int
	UniqueProductCount() int
}

// identityKeyParam extracts the line identity from the URL. Keys embed a
// separator that clients percent-encode, so unescape before use.
func identityKeyParam(r *http.Request) string {
	raw := chi.URLParam(r, "identityKey")
	if key, err := url.PathUnescape(raw); err == nil {
		return key
	}
	return raw
}

func Fetch(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "cart store unavailable"))
			return
		}
		responses.WriteSuccess(w, newCartView(svc))
	}
}

func Add(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "cart store unavailable"))
			return
		}

		var payload AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := products.Normalize(&payload.Product); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Add(r.Context(), payload.Product, payload.SelectedSize, payload.SelectedColor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartView(svc))
	}
}

func Remove(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "cart store unavailable"))
			return
		}

		if err := svc.Remove(r.Context(), identityKeyParam(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(svc))
	}
}

func SetQuantity(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "cart store unavailable"))
			return
		}

		var payload SetQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetQuantity(r.Context(), identityKeyParam(r), payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(svc))
	}
}

func ChangeVariant(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "cart store unavailable"))
			return
		}

		var payload ChangeVariantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ChangeVariant(r.Context(), identityKeyParam(r), payload.NewSize, payload.NewColor); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(svc))
	}
}

func Clear(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "cart store unavailable"))
			return
		}

		if err := svc.Clear(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(svc))
	}
}
