package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gemwalletcom/swapper/internal/swapper"
)

const kindBadRequest = "bad_request"

type errorBody struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	MinAmount string `json:"min_amount,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func statusForKind(kind swapper.Kind) int {
	switch {
	case kind.IsValidation(), kind == swapper.KindInputAmountTooSmall:
		return http.StatusBadRequest
	case kind == swapper.KindNoQuoteAvailable, kind == swapper.KindNoAvailableProvider:
		return http.StatusNotFound
	case kind == swapper.KindTimeout:
		return http.StatusGatewayTimeout
	case kind == swapper.KindNetworkError:
		return http.StatusBadGateway
	case kind == swapper.KindNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		status int
		body   errorBody
	)
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		body = errorBody{Kind: kindBadRequest, Message: http.StatusText(status)}
		if msg, ok := httpErr.Message.(string); ok {
			body.Message = msg
		}
	} else {
		swapErr := swapper.AsError(err, swapper.KindUnknown)
		status = statusForKind(swapErr.Kind)
		body = errorBody{
			Kind:      swapErr.Kind.String(),
			Message:   swapErr.Error(),
			MinAmount: swapErr.MinAmount,
		}
	}

	if err := c.JSON(status, errorResponse{Error: body}); err != nil {
		s.logger.WithError(err).Error("failed to write error response")
	}
}
