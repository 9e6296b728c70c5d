package controllers

import (
	"net/http"

	"github.com/irmandades/ghala-backend/api/responses"
	"github.com/irmandades/ghala-backend/pkg/config"
	"github.com/irmandades/ghala-backend/pkg/db"
	pkgerrors "github.com/irmandades/ghala-backend/pkg/errors"
	"github.com/irmandades/ghala-backend/pkg/logger"
)

const envHeader = "X-Ghala-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the backing services. A nil pinger is treated as not
// configured and skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers map[string]db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		checks := map[string]string{}
		for name, pinger := range pingers {
			if pinger == nil {
				checks[name] = "skipped"
				continue
			}
			if err := pinger.Ping(r.Context()); err != nil {
				checks[name] = "down"
				err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").WithDetails(checks)
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			checks[name] = "up"
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
