package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/libreria-austral/storefront-gateway/api/responses"
	"github.com/libreria-austral/storefront-gateway/pkg/config"
	pkgerrors "github.com/libreria-austral/storefront-gateway/pkg/errors"
	"github.com/libreria-austral/storefront-gateway/pkg/logger"
)

const readinessTimeout = 3 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency and reports the first failures
// together so one probe run surfaces all of them.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisP, upstreamP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var errs error
		if redisP == nil {
			errs = multierr.Append(errs, fmt.Errorf("redis: not configured"))
		} else if err := redisP.Ping(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("redis: %w", err))
		}
		if upstreamP == nil {
			errs = multierr.Append(errs, fmt.Errorf("upstream: not configured"))
		} else if err := upstreamP.Ping(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("upstream: %w", err))
		}

		if errs != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependencies not ready"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
