package middleware

import (
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/kdt5-3rd/kdt5-3rd-back/internal/constants"
	apierrors "github.com/kdt5-3rd/kdt5-3rd-back/internal/errors"
	"github.com/sirupsen/logrus"
)

// Recovery converts panics into the generic 500 envelope and reports them to
// Sentry. Without sentry.Init the capture is a no-op.
func Recovery(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			hub := sentry.CurrentHub().Clone()
			hub.Scope().SetRequest(c.Request)
			hub.Scope().SetTag("request_id", c.GetString(constants.ContextKeyRequestID))
			hub.Recover(recovered)

			log.WithFields(logrus.Fields{
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(constants.ContextKeyRequestID),
			}).Errorf("panic recovered: %v", recovered)

			apierrors.InternalError(c, "")
		}()
		c.Next()
	}
}

// ReportServerErrors forwards errors attached to 5xx responses to Sentry.
func ReportServerErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < 500 {
			return
		}
		for _, err := range c.Errors {
			sentry.CaptureException(err.Err)
		}
	}
}
