package errcodes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iancoleman/strcase"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	echologger "github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/errutils"
	"github.com/robinjoseph08/golib/logger"
)

// statusClientClosedRequest is what the response would carry if the client
// were still there to read it.
const statusClientClosedRequest = 499

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

type payload struct {
	Error body `json:"error"`
}

type body struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// Handle is an Echo error handler. Errors from this package and from Echo keep
// their status; anything else is rendered as a 500 and logged.
func (h *Handler) Handle(err error, c echo.Context) {
	log := echologger.FromEchoContext(c)

	// Deadlines satisfy net.Error with Timeout() set, so they have to be
	// rendered before the ignorable check swallows them.
	timedOut := errors.Is(err, context.DeadlineExceeded)
	if !timedOut && errutils.IsIgnorableErr(err) {
		log.Err(err).Warn("broken pipe")
		return
	}
	if errors.Is(err, context.Canceled) && c.Request().Context().Err() != nil {
		log.Info("client went away", logger.Data{"status_code": statusClientClosedRequest})
		return
	}

	p := render(err)
	if p.Error.StatusCode == http.StatusInternalServerError {
		log.Err(err).Error("server error")
	}

	if c.Response().Committed {
		return
	}
	if err := c.JSON(p.Error.StatusCode, p); err != nil {
		log.Err(errors.WithStack(err)).Error("error handler json error")
	}
}

func render(err error) *payload {
	b := body{StatusCode: http.StatusInternalServerError}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		b.StatusCode = he.Code
		b.Message = fmt.Sprint(he.Message)
		b.Code = strcase.ToSnake(b.Message)
	}

	var e *Error
	if errors.As(err, &e) {
		b.StatusCode = e.HTTPCode
		b.Code = e.Code
		b.Message = e.Message
	}

	if errors.Is(err, context.DeadlineExceeded) && b.Message == "" {
		b.StatusCode = http.StatusServiceUnavailable
		b.Code = "timeout"
		b.Message = "The request timed out."
	}

	if b.StatusCode == http.StatusInternalServerError && b.Message == "" {
		b.Code = "internal_server_error"
		b.Message = "Internal Server Error"
	}

	return &payload{Error: b}
}
