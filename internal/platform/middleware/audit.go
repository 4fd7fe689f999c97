package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AccessEntry records one request that touched a subject's clinical data.
type AccessEntry struct {
	SubjectID  string
	Action     string // list, create, export, outline
	Route      string
	Method     string
	IPAddress  string
	UserAgent  string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// AccessRecorder persists access entries beyond the log stream.
type AccessRecorder interface {
	RecordAccess(entry AccessEntry) error
}

// AccessRecorderFunc is a function adapter for AccessRecorder.
type AccessRecorderFunc func(entry AccessEntry) error

func (f AccessRecorderFunc) RecordAccess(entry AccessEntry) error {
	return f(entry)
}

// Audit logs every request routed under /subjects/:id after the handler
// returns, so the entry carries the final status. Requests on other routes
// pass through untouched.
func Audit(logger zerolog.Logger, recorders ...AccessRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			route := c.Path()
			if !strings.Contains(route, "/subjects/:id") {
				return err
			}

			req := c.Request()
			entry := AccessEntry{
				SubjectID:  c.Param("id"),
				Action:     accessAction(req.Method, route),
				Route:      route,
				Method:     req.Method,
				IPAddress:  c.RealIP(),
				UserAgent:  req.UserAgent(),
				Timestamp:  time.Now().UTC(),
				StatusCode: c.Response().Status,
			}
			if he, ok := err.(*echo.HTTPError); ok {
				entry.StatusCode = he.Code
			}
			if rid, ok := c.Get("request_id").(string); ok {
				entry.RequestID = rid
			}

			for _, r := range recorders {
				if r == nil {
					continue
				}
				if recErr := r.RecordAccess(entry); recErr != nil {
					logger.Error().Err(recErr).
						Str("request_id", entry.RequestID).
						Msg("failed to record access entry")
				}
			}

			logger.Info().
				Str("type", "subject_access").
				Str("request_id", entry.RequestID).
				Str("subject_id", entry.SubjectID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("route", entry.Route).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("subject_access")

			return err
		}
	}
}

func accessAction(method, route string) string {
	switch {
	case strings.HasSuffix(route, "/report/outline"):
		return "outline"
	case strings.HasSuffix(route, "/report"):
		return "export"
	case method == http.MethodPost:
		return "create"
	default:
		return "list"
	}
}
