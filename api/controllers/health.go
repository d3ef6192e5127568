package controllers

import (
	"context"
	"net/http"

	"github.com/sduquej/mercadito-backend/api/responses"
	"github.com/sduquej/mercadito-backend/pkg/config"
	pkgerrors "github.com/sduquej/mercadito-backend/pkg/errors"
	"github.com/sduquej/mercadito-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Mercadito-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every backing dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP pinger) http.HandlerFunc {
	deps := []struct {
		name string
		dep  pinger
	}{
		{"database", dbP},
		{"redis", redisP},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		w.Header().Set("X-Mercadito-Env", cfg.App.Env)

		status := map[string]string{}
		for _, entry := range deps {
			if entry.dep == nil {
				continue
			}
			if err := entry.dep.Ping(ctx); err != nil {
				status[entry.name] = "down"
				responses.WriteError(ctx, logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, entry.name+" unavailable").WithDetails(status))
				return
			}
			status[entry.name] = "up"
		}
		status["status"] = "ready"
		responses.WriteSuccess(w, status)
	}
}
