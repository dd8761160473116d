package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signControl(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runControl(t *testing.T, secret string, req *http.Request) (bool, echo.Context, error) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(req, httptest.NewRecorder())
	called := false
	err := ControlAuth(secret)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return called, c, err
}

func TestControlAuth_Disabled(t *testing.T) {
	called, _, err := runControl(t, "", httptest.NewRequest(http.MethodPost, "/v1/session/logout", nil))
	if err != nil || !called {
		t.Fatalf("guard should be a no-op without a secret, err=%v called=%v", err, called)
	}
}

func TestControlAuth_ValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/session/logout", nil)
	req.Header.Set("Authorization", "Bearer "+signControl(t, "secret", jwt.RegisteredClaims{Subject: "front-desk"}))

	called, c, err := runControl(t, "secret", req)
	if err != nil || !called {
		t.Fatalf("valid token rejected: %v", err)
	}
	if c.Get("control_subject") != "front-desk" {
		t.Fatalf("subject not set: %v", c.Get("control_subject"))
	}
}

func TestControlAuth_QueryToken(t *testing.T) {
	tok := signControl(t, "secret", jwt.RegisteredClaims{})
	req := httptest.NewRequest(http.MethodGet, "/v1/events?access_token="+tok, nil)
	if called, _, err := runControl(t, "secret", req); err != nil || !called {
		t.Fatalf("query token rejected: %v", err)
	}
}

func TestControlAuth_Rejections(t *testing.T) {
	expired := signControl(t, "secret", jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))})
	cases := map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"wrong secret": "Bearer " + signControl(t, "other", jwt.RegisteredClaims{}),
		"expired":      "Bearer " + expired,
		"garbage":      "Bearer not-a-jwt",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/session/logout", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			called, _, err := runControl(t, "secret", req)
			if called {
				t.Fatalf("next must not be called")
			}
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %v", err)
			}
		})
	}
}
