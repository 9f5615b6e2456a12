package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/microblog/user-api/internal/api"
	"github.com/microblog/user-api/internal/api/handler"
	"github.com/microblog/user-api/internal/api/middleware"
	"github.com/microblog/user-api/internal/core/domain"
	"github.com/microblog/user-api/internal/core/ports"
)

const testAccessSecret = "test-access-secret"

// stubUserService returns canned results so the HTTP layer can be exercised
// in isolation.
type stubUserService struct {
	signUpErr error
	loginErr  error
	detailErr error
	user      *domain.User
	lastInput ports.SignUpInput
}

func (s *stubUserService) SignUp(_ context.Context, in ports.SignUpInput) (*ports.EnqueuedUser, error) {
	s.lastInput = in
	if s.signUpErr != nil {
		return nil, s.signUpErr
	}
	return &ports.EnqueuedUser{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}, nil
}

func (s *stubUserService) Login(_ context.Context, email, password string) (*ports.TokenPair, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &ports.TokenPair{
		AccessToken:      "access-token",
		RefreshToken:     "refresh-token",
		AccessExpiresIn:  1800,
		RefreshExpiresIn: 604800,
	}, nil
}

func (s *stubUserService) Detail(_ context.Context, id string) (*domain.User, error) {
	if s.detailErr != nil {
		return nil, s.detailErr
	}
	return s.user, nil
}

// newTestServer wires the handler into an echo instance with the same
// validator, error handler, and route middleware as the production router.
func newTestServer(svc ports.UserService) *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(zerolog.Nop())

	h := handler.NewUserHandler(svc)
	v1 := e.Group("/v1")
	v1.POST("/users", h.Create)
	v1.POST("/users/login", h.Login)
	v1.GET("/users/:id", h.Detail, middleware.Auth(testAccessSecret), middleware.UUIDPath("id"))
	return e
}

func doJSON(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func validSignupBody() string {
	return `{"name":"Alice Smith","email":"alice@example.com","password":"s3cret!pass"}`
}

func TestCreateUser_Accepted(t *testing.T) {
	svc := &stubUserService{}
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodPost, "/v1/users", validSignupBody(), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, err := uuid.Parse(resp.ID); err != nil {
		t.Fatalf("id is not a UUID: %q", resp.ID)
	}
	if resp.CreatedAt.IsZero() {
		t.Fatal("created_at missing from response")
	}
	if svc.lastInput.Email != "alice@example.com" {
		t.Fatalf("service received wrong input: %+v", svc.lastInput)
	}
}

func TestCreateUser_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "name too short",
			body: `{"name":"Al","email":"alice@example.com","password":"s3cret!pass"}`,
			want: "name must be at least 3 characters",
		},
		{
			name: "name with digits",
			body: `{"name":"Alice 2","email":"alice@example.com","password":"s3cret!pass"}`,
			want: "name must contain only letters and spaces",
		},
		{
			name: "email malformed",
			body: `{"name":"Alice Smith","email":"not-an-email-addr","password":"s3cret!pass"}`,
			want: "email must be a valid email address",
		},
		{
			name: "email too short",
			body: `{"name":"Alice Smith","email":"a@b.co","password":"s3cret!pass"}`,
			want: "email must be at least 10 characters",
		},
		{
			name: "password too short",
			body: `{"name":"Alice Smith","email":"alice@example.com","password":"s!x"}`,
			want: "password must be at least 8 characters",
		},
		{
			name: "password without special char",
			body: `{"name":"Alice Smith","email":"alice@example.com","password":"plainpassword"}`,
			want: "password must contain at least one special character",
		},
		{
			name: "missing fields",
			body: `{}`,
			want: "name is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestServer(&stubUserService{})
			rec := doJSON(e, http.MethodPost, "/v1/users", tc.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("expected message containing %q, got %s", tc.want, rec.Body.String())
			}
		})
	}
}

func TestCreateUser_MalformedJSON(t *testing.T) {
	e := newTestServer(&stubUserService{})
	rec := doJSON(e, http.MethodPost, "/v1/users", `{"name":`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateUser_EmailConflict(t *testing.T) {
	svc := &stubUserService{signUpErr: domain.ErrEmailTaken}
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodPost, "/v1/users", validSignupBody(), nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "email already in use") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCreateUser_StoreUnavailable(t *testing.T) {
	svc := &stubUserService{signUpErr: fmt.Errorf("check email: %w", domain.ErrStoreUnavailable)}
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodPost, "/v1/users", validSignupBody(), nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLogin_Success(t *testing.T) {
	e := newTestServer(&stubUserService{})

	rec := doJSON(e, http.MethodPost, "/v1/users/login",
		`{"email":"alice@example.com","password":"s3cret!pass"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken      string `json:"access_token"`
		RefreshToken     string `json:"refresh_token"`
		AccessExpiresIn  int64  `json:"access_expires_in"`
		RefreshExpiresIn int64  `json:"refresh_expires_in"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("missing tokens: %+v", resp)
	}
	if resp.AccessExpiresIn != 1800 || resp.RefreshExpiresIn != 604800 {
		t.Fatalf("unexpected expiries: %+v", resp)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	e := newTestServer(&stubUserService{loginErr: domain.ErrUserNotFound})

	rec := doJSON(e, http.MethodPost, "/v1/users/login",
		`{"email":"ghost@example.com","password":"s3cret!pass"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newTestServer(&stubUserService{loginErr: domain.ErrInvalidCredentials})

	rec := doJSON(e, http.MethodPost, "/v1/users/login",
		`{"email":"alice@example.com","password":"wr0ng!pass"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func bearerHeader(t *testing.T) map[string]string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123",
		"typ": "access",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte(testAccessSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + signed}
}

func TestUserDetail_Success(t *testing.T) {
	id := uuid.NewString()
	svc := &stubUserService{user: &domain.User{
		ID:        id,
		Name:      "Alice Smith",
		Email:     "alice@example.com",
		CreatedAt: time.Now().UTC(),
	}}
	e := newTestServer(svc)

	rec := doJSON(e, http.MethodGet, "/v1/users/"+id, "", bearerHeader(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != id || resp.Name != "Alice Smith" || resp.Email != "alice@example.com" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUserDetail_MissingAuthHeader(t *testing.T) {
	e := newTestServer(&stubUserService{})

	rec := doJSON(e, http.MethodGet, "/v1/users/"+uuid.NewString(), "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "missing authorization header") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUserDetail_InvalidToken(t *testing.T) {
	e := newTestServer(&stubUserService{})

	rec := doJSON(e, http.MethodGet, "/v1/users/"+uuid.NewString(), "",
		map[string]string{"Authorization": "Bearer not.a.jwt"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUserDetail_NonUUIDPath(t *testing.T) {
	e := newTestServer(&stubUserService{})

	rec := doJSON(e, http.MethodGet, "/v1/users/123456", "", bearerHeader(t))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "must be a valid UUID") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestUserDetail_NotFound(t *testing.T) {
	e := newTestServer(&stubUserService{detailErr: domain.ErrUserNotFound})

	rec := doJSON(e, http.MethodGet, "/v1/users/"+uuid.NewString(), "", bearerHeader(t))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}
