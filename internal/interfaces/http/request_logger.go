package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/billar-api/pkg/logger"
)

// requestID valor puesto por el middleware requestid de fiber.
func requestID(c *fiber.Ctx) string {
	s, _ := c.Locals("requestid").(string)
	return s
}

// RequestLogger registra cada petición con método, ruta, estado, latencia, tenant y request id.
func RequestLogger(log *logger.Logger) fiber.Handler {
	log = log.Component("http.access")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			// el ErrorHandler escribe la respuesta para conocer el estado final
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		tl := log.Tenant(GetTenant(c))
		ev := tl.Info()
		if status >= fiber.StatusInternalServerError {
			ev = tl.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = tl.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("request_id", requestID(c)).
			Msg("request")
		return nil
	}
}
