package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/deppfellow/sovyx-backend/internal/middleware"
	"github.com/deppfellow/sovyx-backend/internal/server"
	"github.com/deppfellow/sovyx-backend/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// request is satisfied by *Req when Req is a request model. Handlers take the
// pointer so a fresh value is bound for every call.
type request[Req any] interface {
	*Req
	validation.Validatable
}

// Accepted makes a JSON handler answer 202 with Body instead of its route status.
type Accepted struct {
	Body any
}

// FileResult is the payload of a file handler.
type FileResult struct {
	Filename    string
	ContentType string
	Data        []byte
	// Inline serves the bytes for display instead of as a download.
	Inline bool
}

type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	if accepted, ok := result.(Accepted); ok {
		return c.JSON(http.StatusAccepted, accepted.Body)
	}
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if _, ok := result.(Accepted); ok {
		txn.AddAttribute("handler.accepted", true)
	}
}

type NoContentResponseHandler struct {
	status int
}

func (h NoContentResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.NoContent(h.status)
}

func (h NoContentResponseHandler) GetOperation() string {
	return "handler_no_content"
}

func (h NoContentResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {}

// filenameReplacer keeps a filename from breaking out of its quoted header value.
var filenameReplacer = strings.NewReplacer(`"`, "", `\`, "", "\r", "", "\n", "")

type FileResponseHandler struct {
	status int
}

func (h FileResponseHandler) Handle(c echo.Context, result interface{}) error {
	file := result.(*FileResult)

	disposition := "attachment"
	if file.Inline {
		disposition = "inline"
	}
	if file.Filename != "" {
		disposition += "; filename=\"" + filenameReplacer.Replace(file.Filename) + "\""
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)

	return c.Blob(h.status, file.ContentType, file.Data)
}

func (h FileResponseHandler) GetOperation() string {
	return "handler_file"
}

func (h FileResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if file, ok := result.(*FileResult); ok {
		txn.AddAttribute("file.content_type", file.ContentType)
		txn.AddAttribute("file.size_bytes", len(file.Data))
	}
}

// handleRequest binds and validates the request, runs the handler, and writes
// the result through responseHandler, logging and tracing each phase.
func handleRequest[Req any, PReq request[Req]](
	c echo.Context,
	handler func(c echo.Context, req PReq) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	method := c.Request().Method
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("method", method).
		Str("route", route).
		Logger()

	logger.Info().Msg("handling request")

	req := PReq(new(Req))

	validationStart := time.Now()
	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}
		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(start)).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	totalDuration := time.Since(start)
	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle adapts a typed JSON handler into an echo.HandlerFunc.
//
//	router.POST("/api/campaign", handler.Handle(h.Segmentation.CreateCampaign, http.StatusOK))
func Handle[Req any, PReq request[Req], Res any](
	handler func(c echo.Context, req PReq) (Res, error),
	status int,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest[Req](c, func(c echo.Context, req PReq) (interface{}, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status})
	}
}

// HandleFile adapts a handler that returns raw bytes.
func HandleFile[Req any, PReq request[Req]](
	handler func(c echo.Context, req PReq) (*FileResult, error),
	status int,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest[Req](c, func(c echo.Context, req PReq) (interface{}, error) {
			return handler(c, req)
		}, FileResponseHandler{status: status})
	}
}

// HandleNoContent adapts a handler that writes no body.
func HandleNoContent[Req any, PReq request[Req]](
	handler func(c echo.Context, req PReq) error,
	status int,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest[Req](c, func(c echo.Context, req PReq) (interface{}, error) {
			return nil, handler(c, req)
		}, NoContentResponseHandler{status: status})
	}
}
