package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func invokeUUIDPath(t *testing.T, id string) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	return UUIDPath("id")(next)(c)
}

func TestUUIDPath_ValidUUID(t *testing.T) {
	if err := invokeUUIDPath(t, uuid.NewString()); err != nil {
		t.Fatalf("expected request to pass, got %v", err)
	}
}

func TestUUIDPath_NonUUID(t *testing.T) {
	err := invokeUUIDPath(t, "123456")
	assertHTTPError(t, err, http.StatusBadRequest)
}

func TestUUIDPath_Empty(t *testing.T) {
	err := invokeUUIDPath(t, "")
	assertHTTPError(t, err, http.StatusBadRequest)
}
