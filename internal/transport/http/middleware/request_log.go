package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"studyplanner/internal/logger"
)

// RequestLogger writes one line per request. Successful health checks are
// logged at debug so they do not drown the access log.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		reqLog := log.With("request_id", c.GetString(ContextRequestIDKey))
		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"uri", c.Request.URL.RequestURI(),
			"status", status,
			"latency", time.Since(begin).String(),
			"client_ip", c.ClientIP(),
			"bytes", c.Writer.Size(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			kv = append(kv, "error", errs.Last().Error())
		}

		write := reqLog.Info
		switch {
		case status >= http.StatusInternalServerError:
			write = reqLog.Error
		case status >= http.StatusBadRequest:
			write = reqLog.Warn
		case route == "/healthz":
			write = reqLog.Debug
		}
		write("request completed", kv...)
	}
}
