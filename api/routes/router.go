package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bloomthreads/cartstate/api/controllers"
	cartcontrollers "github.com/bloomthreads/cartstate/api/controllers/cart"
	"github.com/bloomthreads/cartstate/api/middleware"
	"github.com/bloomthreads/cartstate/pkg/config"
	"github.com/bloomthreads/cartstate/pkg/db"
	"github.com/bloomthreads/cartstate/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	backend db.Pinger,
	cartService cartcontrollers.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, backend))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", cartcontrollers.Fetch(cartService, logg))
		r.Delete("/", cartcontrollers.Clear(cartService, logg))
		r.Route("/items", func(r chi.Router) {
			r.Post("/", cartcontrollers.Add(cartService, logg))
			r.Route("/{identityKey}", func(r chi.Router) {
				r.Delete("/", cartcontrollers.Remove(cartService, logg))
				r.Put("/quantity", cartcontrollers.SetQuantity(cartService, logg))
				r.Put("/variant", cartcontrollers.ChangeVariant(cartService, logg))
			})
		})
	})

	return r
}
