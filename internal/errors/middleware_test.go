package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(method string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/test", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestMiddlewareWithStructuredError(t *testing.T) {
	c, rec := newContext(http.MethodGet)
	HTTPErrorsTotal.Reset()

	handler := Middleware()(func(c echo.Context) error {
		return ValidationError("Invalid UUID format")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid UUID format", resp.Detail)
	assert.Equal(t, TypeValidation, resp.Type)

	assert.Equal(t, 1.0, testutil.ToFloat64(HTTPErrorsTotal.WithLabelValues("validation")))
}

func TestMiddlewareWithStandardError(t *testing.T) {
	c, rec := newContext(http.MethodGet)
	HTTPErrorsTotal.Reset()

	handler := Middleware()(func(c echo.Context) error {
		return fmt.Errorf("standard error")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Detail)
	assert.Equal(t, 1.0, testutil.ToFloat64(HTTPErrorsTotal.WithLabelValues("internal")))
}

func TestMiddlewareWithNoError(t *testing.T) {
	c, rec := newContext(http.MethodGet)
	HTTPErrorsTotal.Reset()

	handler := Middleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", rec.Body.String())
	assert.Equal(t, 0, testutil.CollectAndCount(HTTPErrorsTotal))
}

func TestMiddlewarePassesEchoHTTPErrorThrough(t *testing.T) {
	c, _ := newContext(http.MethodGet)
	HTTPErrorsTotal.Reset()

	httpErr := echo.NewHTTPError(http.StatusUnauthorized, "Could not validate credentials")
	handler := Middleware()(func(c echo.Context) error { return httpErr })

	err := handler(c)
	assert.Same(t, httpErr, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(HTTPErrorsTotal.WithLabelValues("auth")))
}

func TestMiddlewareAllErrorTypes(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantStatus int
	}{
		{"validation", ValidationError("invalid"), http.StatusBadRequest},
		{"not_found", NotFoundError("missing"), http.StatusNotFound},
		{"conflict", ConflictError("duplicate"), http.StatusConflict},
		{"auth", AuthError("bad token", nil), http.StatusUnauthorized},
		{"internal", InternalError("failed", fmt.Errorf("cause")), http.StatusInternalServerError},
		{"external", ExternalError("api failed", fmt.Errorf("timeout")), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet)
			HTTPErrorsTotal.Reset()

			handler := Middleware()(func(c echo.Context) error { return tt.err })

			require.NoError(t, handler(c))
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.err.Type, resp.Type)
			assert.Equal(t, 1.0, testutil.ToFloat64(HTTPErrorsTotal.WithLabelValues(string(tt.err.Type))))
		})
	}
}

func TestHTTPErrorHandler(t *testing.T) {
	t.Run("echo error keeps its code", func(t *testing.T) {
		c, rec := newContext(http.MethodGet)

		HTTPErrorHandler(echo.ErrNotFound, c)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Not Found", resp.Detail)
	})

	t.Run("structured error", func(t *testing.T) {
		c, rec := newContext(http.MethodGet)

		HTTPErrorHandler(NotFoundError("Submission not found"), c)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"detail":"Submission not found","type":"not_found"}`, rec.Body.String())
	})

	t.Run("head request has no body", func(t *testing.T) {
		c, rec := newContext(http.MethodHead)

		HTTPErrorHandler(echo.ErrUnauthorized, c)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestHandleErrorWithNil(t *testing.T) {
	c, _ := newContext(http.MethodGet)
	assert.NoError(t, HandleError(c, nil))
}

func TestWrapHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		httpErr    *echo.HTTPError
		wantType   ErrorType
		wantStatus int
	}{
		{"bad_request", echo.NewHTTPError(http.StatusBadRequest, "bad request"), TypeValidation, http.StatusBadRequest},
		{"unauthorized", echo.NewHTTPError(http.StatusUnauthorized, "no token"), TypeAuth, http.StatusUnauthorized},
		{"not_found", echo.NewHTTPError(http.StatusNotFound, "not found"), TypeNotFound, http.StatusNotFound},
		{"bad_gateway", echo.NewHTTPError(http.StatusBadGateway, "bad gateway"), TypeExternal, http.StatusBadGateway},
		{"service_unavailable", echo.NewHTTPError(http.StatusServiceUnavailable, "unavailable"), TypeExternal, http.StatusBadGateway},
		{"internal_server_error", echo.NewHTTPError(http.StatusInternalServerError, "boom"), TypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapHTTPError(tt.httpErr)

			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.wantStatus, err.HTTPStatus())
		})
	}
}

func TestWrapHTTPErrorWithInternalCause(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	httpErr := echo.NewHTTPError(http.StatusInternalServerError, "wrapped")
	httpErr.Internal = cause

	err := WrapHTTPError(httpErr)

	assert.Equal(t, TypeInternal, err.Type)
	assert.Equal(t, cause, err.Cause)
}

func TestWrapHTTPErrorWithNonStringMessage(t *testing.T) {
	err := WrapHTTPError(echo.NewHTTPError(http.StatusBadRequest, 12345))

	assert.Equal(t, "Bad Request", err.Message)
	assert.Equal(t, TypeValidation, err.Type)
}
