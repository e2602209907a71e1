package integration

import (
	"net/http"
	"testing"
)

func TestAuth_RegisterAndLogin(t *testing.T) {
	app := setupApp(t)

	token, userID := app.registerUser(t, "alice@test.com", "password123")
	if token == "" {
		t.Fatal("expected a token from register")
	}
	if userID == "" {
		t.Fatal("expected a user ID from register")
	}

	loginToken := app.loginUser(t, "alice@test.com", "password123")
	if loginToken == "" {
		t.Fatal("expected a token from login")
	}

	rec := app.request("GET", "/api/v1/profile", "", loginToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["email"].(string) != "alice@test.com" {
		t.Errorf("expected email alice@test.com, got %v", user["email"])
	}
}

func TestAuth_DuplicateEmailRejected(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "dupe@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/register",
		`{"email":"DUPE@test.com","password":"password123","display_name":"Second"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuth_WrongPasswordRejected(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "bob@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/login",
		`{"email":"bob@test.com","password":"wrongpassword"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuth_ShortPasswordRejected(t *testing.T) {
	app := setupApp(t)

	rec := app.request("POST", "/api/v1/auth/register",
		`{"email":"short@test.com","password":"short","display_name":"Short"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuth_ProtectedRoutesRequireToken(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/v1/groups", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/groups", "", "not-a-valid-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", rec.Code)
	}
}
