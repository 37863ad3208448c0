package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/service"
	"github.com/Skotchmaster/shop_backend/internal/transport"
)

// HTTPErrorHandler renders every error as {"detail": ...}. Field validation
// errors keep their field map.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		he = echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}

	var body any
	switch m := he.Message.(type) {
	case string:
		body = transport.DetailResponse{Detail: m}
	case map[string]any:
		body = m
	case error:
		body = transport.DetailResponse{Detail: m.Error()}
	default:
		body = transport.DetailResponse{Detail: http.StatusText(he.Code)}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(he.Code)
		return
	}
	_ = c.JSON(he.Code, body)
}

// reason drops the sentinel prefix added by fmt.Errorf("%w: ...").
func reason(err error, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == sentinel.Error() {
		return ""
	}
	return msg
}

// serviceError logs the failure under event and maps it to an HTTP error.
func serviceError(l *slog.Logger, event string, err error) error {
	var fe *service.FieldError
	switch {
	case errors.As(err, &fe):
		l.Warn(event, "status", http.StatusBadRequest, "reason", fe.Message, "field", fe.Field)
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"detail": fe.Message,
			fe.Field: []string{fe.Message},
		})
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", http.StatusBadRequest, "reason", reason(err, service.ErrValidation))
		return echo.NewHTTPError(http.StatusBadRequest, orDefault(reason(err, service.ErrValidation), "Invalid input."))
	case errors.Is(err, service.ErrUnauthorized):
		l.Warn(event, "status", http.StatusUnauthorized, "reason", reason(err, service.ErrUnauthorized))
		return echo.NewHTTPError(http.StatusUnauthorized, orDefault(reason(err, service.ErrUnauthorized), "Invalid credentials"))
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", http.StatusForbidden, "reason", reason(err, service.ErrForbidden))
		return echo.NewHTTPError(http.StatusForbidden, orDefault(reason(err, service.ErrForbidden), "You do not have permission to perform this action."))
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		l.Warn(event, "status", http.StatusNotFound, "reason", reason(err, service.ErrNotFound))
		return echo.NewHTTPError(http.StatusNotFound, "Not found.")
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", http.StatusConflict, "reason", reason(err, service.ErrConflict))
		return echo.NewHTTPError(http.StatusConflict, orDefault(reason(err, service.ErrConflict), "Conflict."))
	default:
		l.Error(event, "status", http.StatusInternalServerError, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func invalidBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}

func invalidID(l *slog.Logger, event, raw string) error {
	l.Warn(event, "status", http.StatusNotFound, "reason", "id is not a positive integer", "id", raw)
	return echo.NewHTTPError(http.StatusNotFound, "Not found.")
}
