package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newRoleContext(roles []string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if roles != nil {
		req = req.WithContext(WithUser(req.Context(), "user-1", roles))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireRole_Allowed(t *testing.T) {
	c, rec := newRoleContext([]string{"physician"})

	err := RequireRole("admin", "physician")(okHandler)(c)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_Denied(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
	}{
		{"other role", []string{"billing"}},
		{"no roles", []string{}},
		{"anonymous", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newRoleContext(tt.roles)
			err := RequireRole("physician")(okHandler)(c)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok {
				t.Fatalf("expected echo.HTTPError, got %T", err)
			}
			if httpErr.Code != http.StatusForbidden {
				t.Errorf("expected 403, got %d", httpErr.Code)
			}
		})
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	c, _ := newRoleContext([]string{"admin"})
	if err := RequireRole("data-manager")(okHandler)(c); err != nil {
		t.Error("admin should bypass role checks")
	}
}

func TestUserIDFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), UserIDKey, "user-123")
	if uid := UserIDFromContext(ctx); uid != "user-123" {
		t.Errorf("expected user-123, got %s", uid)
	}
	if empty := UserIDFromContext(context.Background()); empty != "" {
		t.Errorf("expected empty string, got %s", empty)
	}
}

func TestWithUser(t *testing.T) {
	ctx := WithUser(context.Background(), "u", []string{"physician"})
	if UserIDFromContext(ctx) != "u" {
		t.Error("user id not stored")
	}
	if roles := RolesFromContext(ctx); len(roles) != 1 || roles[0] != "physician" {
		t.Errorf("unexpected roles %v", roles)
	}
}
