package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"easyshifthq-backend/internal/application/health"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const errorLogSize = 50

// HealthMarker records request stats in Redis (skip /, /health*, /metrics,
// favicon) and keeps the last server errors for the dashboard.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || strings.HasPrefix(path, "/health") || path == "/metrics" || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		b, _ := json.Marshal(map[string]interface{}{
			"time":   start,
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		ctx := context.Background()
		rdb.Set(ctx, health.KeyLastReq, b, 0)
		rdb.Incr(ctx, health.KeyReqTotal)

		err := c.Next()
		if err != nil {
			// let the error handler write the status before we read it
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				return herr
			}
			err = nil
		}

		rdb.Incr(ctx, health.KeyResCount)
		rdb.IncrByFloat(ctx, health.KeyResTime, float64(time.Since(start).Milliseconds()))
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			rdb.Incr(ctx, health.KeyReqErrors)
			entry, _ := json.Marshal(map[string]interface{}{
				"time":    time.Now(),
				"method":  c.Method(),
				"path":    c.OriginalURL(),
				"status":  c.Response().StatusCode(),
				"message": responseMessage(c.Response().Body()),
			})
			rdb.LPush(ctx, health.KeyErrorLog, entry)
			rdb.LTrim(ctx, health.KeyErrorLog, 0, errorLogSize-1)
		}
		return err
	}
}

func responseMessage(body []byte) string {
	var out struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &out) == nil {
		return out.Error.Message
	}
	return ""
}
