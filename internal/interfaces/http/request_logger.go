package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Movimientos-api/pkg/logger"
)

// RequestLogger registra cada petición con método, ruta, estado, latencia y comercio.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		evt := log.Info()
		if status >= fiber.StatusInternalServerError {
			evt = log.Error().Err(err)
		}
		evt.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int64("tenant_id", GetTenantID(c)).
			Msg("http request")
		return err
	}
}
