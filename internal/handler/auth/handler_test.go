package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/promptly-app/promptly/backend/internal/service/account"
	"github.com/promptly-app/promptly/backend/internal/store"
	"github.com/promptly-app/promptly/backend/internal/token"
)

func setupRouter(t *testing.T) (*chi.Mux, *token.Manager) {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open err: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(db) })

	tokens := token.NewManager("test-secret", time.Hour)
	handler := New(account.NewService(db), tokens)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, tokens
}

func postJSON(t *testing.T, r http.Handler, path string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSignupReturnsDecodableToken(t *testing.T) {
	r, tokens := setupRouter(t)

	resp := postJSON(t, r, "/signup", map[string]string{
		"email":     "x@y.com",
		"password":  "abcdef",
		"firstName": "Ada",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Token string `json:"token"`
		User  struct {
			UID   string `json:"uid"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response err: %v", err)
	}

	ownerID, err := tokens.Verify(body.Token)
	if err != nil {
		t.Fatalf("token not verifiable: %v", err)
	}
	if ownerID != body.User.UID {
		t.Fatalf("token encodes %s, user is %s", ownerID, body.User.UID)
	}
	if body.User.Email != "x@y.com" {
		t.Fatalf("unexpected email: %s", body.User.Email)
	}
}

func TestSignupMissingFields(t *testing.T) {
	r, _ := setupRouter(t)

	resp := postJSON(t, r, "/signup", map[string]string{"email": "x@y.com"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	r, _ := setupRouter(t)

	if resp := postJSON(t, r, "/signup", map[string]string{"email": "a@b.com", "password": "secret"}); resp.Code != http.StatusOK {
		t.Fatalf("first signup failed: %d", resp.Code)
	}
	if resp := postJSON(t, r, "/signup", map[string]string{"email": "a@b.com", "password": "other"}); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", resp.Code)
	}
}

func TestLoginRightAndWrongPassword(t *testing.T) {
	r, tokens := setupRouter(t)

	signupResp := postJSON(t, r, "/signup", map[string]string{"email": "a@b.com", "password": "secret"})
	if signupResp.Code != http.StatusOK {
		t.Fatalf("signup failed: %d", signupResp.Code)
	}
	var created struct {
		User struct {
			UID string `json:"uid"`
		} `json:"user"`
	}
	if err := json.Unmarshal(signupResp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode signup response err: %v", err)
	}

	ok := postJSON(t, r, "/login", map[string]string{"email": "a@b.com", "password": "secret"})
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ok.Code, ok.Body.String())
	}
	var logged struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(ok.Body.Bytes(), &logged); err != nil {
		t.Fatalf("decode login response err: %v", err)
	}
	ownerID, err := tokens.Verify(logged.Token)
	if err != nil {
		t.Fatalf("token not verifiable: %v", err)
	}
	if ownerID != created.User.UID {
		t.Fatalf("token encodes %s, expected %s", ownerID, created.User.UID)
	}

	bad := postJSON(t, r, "/login", map[string]string{"email": "a@b.com", "password": "wrong"})
	if bad.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", bad.Code)
	}
	if bytes.Contains(bad.Body.Bytes(), []byte(`"token"`)) {
		t.Fatal("failed login leaked a token")
	}
}

func TestLoginMissingFields(t *testing.T) {
	r, _ := setupRouter(t)

	resp := postJSON(t, r, "/login", map[string]string{"email": "a@b.com"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
