package errcodes

import (
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
)

type payloadError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type payload struct {
	Error payloadError `json:"error"`
}

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Handle is an Echo error handler. Echo errors and *Error values keep their
// status, and anything else is a 500.
func (h *Handler) Handle(err error, c echo.Context) {
	log := logger.FromEchoContext(c)

	if errutils.IsIgnorableErr(err) {
		log.Err(err).Warn("broken pipe")
		return
	}

	p := newPayload(err)

	switch p.Error.StatusCode {
	case http.StatusInternalServerError:
		log.Err(err).Error("server error")
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		// The catalog being down or unconfigured isn't our bug, but it should
		// still show up.
		log.Err(err).Warn("catalog unavailable")
	}

	if err := c.JSON(p.Error.StatusCode, p); err != nil {
		log.Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func newPayload(err error) payload {
	pe := payloadError{StatusCode: http.StatusInternalServerError}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		pe.StatusCode = he.Code
		if msg, ok := he.Message.(string); ok {
			pe.Message = msg
			pe.Code = strcase.ToSnake(msg)
		}
	}

	var e *Error
	if errors.As(err, &e) {
		pe.StatusCode = e.HTTPCode
		pe.Code = e.Code
		pe.Message = e.Message
	}

	if pe.StatusCode == http.StatusInternalServerError && pe.Message == "" {
		pe.Code = "internal_server_error"
		pe.Message = "Internal Server Error"
	}

	return payload{pe}
}
