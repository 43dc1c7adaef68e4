package controllers

import (
	"net/http"

	"github.com/bloomthreads/cartstate/api/responses"
	"github.com/bloomthreads/cartstate/pkg/config"
	"github.com/bloomthreads/cartstate/pkg/db"
	pkgerrors "github.com/bloomthreads/cartstate/pkg/errors"
	"github.com/bloomthreads/cartstate/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cartstate-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the durable slot backend when one is configured; the
// memory backend passes a nil pinger.
func HealthReady(cfg *config.Config, logg *logger.Logger, backend db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cartstate-Env", cfg.App.Env)

		if backend != nil {
			if err := backend.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cart slot backend unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
