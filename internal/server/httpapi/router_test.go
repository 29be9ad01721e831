package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophmail/internal/common"
	"github.com/dmitrijs2005/gophmail/internal/logging"
	"github.com/dmitrijs2005/gophmail/internal/server/credentials"
	"github.com/dmitrijs2005/gophmail/internal/server/models"
	"github.com/dmitrijs2005/gophmail/internal/server/passwords"
	"github.com/dmitrijs2005/gophmail/internal/server/repositories/messages"
	"github.com/dmitrijs2005/gophmail/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophmail/internal/server/services"
	"github.com/dmitrijs2005/gophmail/internal/server/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	creds := credentials.NewStore(users.NewInMemoryRepository(), passwords.PlainHasher{})
	svc := services.NewMailService(creds, messages.NewInMemoryRepository(), sessions.NewTable(), logging.Nop())
	srv := httptest.NewServer(NewRouter(svc, logging.Nop(), opts))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, token string, body any) (int, map[string]any) {
	t.Helper()

	var rdr io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(http.MethodPost, srv.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func signupAndLogin(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()
	status, _ := post(t, srv, "/api/createusr", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, status)
	status, body := post(t, srv, "/api/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, status)
	return body["token"].(string)
}

func TestAPI_EndToEnd(t *testing.T) {
	srv := newTestServer(t, Options{})

	status, body := post(t, srv, "/api/createusr", "", map[string]string{"username": "fish", "password": "123"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user created.", body["status"])

	status, body = post(t, srv, "/api/login", "", map[string]string{"username": "fish", "password": "123"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "fish", body["username"])
	fishToken := body["token"].(string)
	assert.Len(t, fishToken, 64)

	jeefToken := signupAndLogin(t, srv, "jeef", "456")

	status, body = post(t, srv, "/api/createmsg", jeefToken, map[string]string{"to": "fish", "subject": "hi", "body": "yo"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "message sent.", body["status"])
	id := body["id"].(string)

	status, body = post(t, srv, "/api/getmsgs", fishToken, nil)
	require.Equal(t, http.StatusOK, status)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	m := msgs[0].(map[string]any)
	assert.Equal(t, id, m["id"])
	assert.Equal(t, "jeef", m["from"])
	assert.Equal(t, "fish", m["to"])
	assert.Equal(t, "hi", m["subject"])
	assert.Equal(t, "yo", m["body"])
	assert.NotEmpty(t, m["created_at"])

	status, body = post(t, srv, "/api/delmsg", fishToken, map[string]string{"id": id})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Success", body["status"])

	status, body = post(t, srv, "/api/getmsgs", fishToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["messages"])
	assert.NotNil(t, body["messages"], "empty inbox renders as []")

	status, body = post(t, srv, "/api/logout", fishToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "logged out.", body["status"])

	status, body = post(t, srv, "/api/getmsgs", fishToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "session expired", body["error"])
}

func TestAPI_SignupErrors(t *testing.T) {
	srv := newTestServer(t, Options{})
	signupAndLogin(t, srv, "fish", "abcd")

	tests := []struct {
		name   string
		body   any
		status int
		errMsg string
	}{
		{"duplicate", map[string]string{"username": "fish", "password": "x"}, http.StatusConflict, "user exists."},
		{"bad json", `{"username":`, http.StatusBadRequest, "could not parse JSON"},
		{"missing password", map[string]string{"username": "jeef"}, http.StatusBadRequest, "username and password are required"},
		{"empty username", map[string]string{"username": "", "password": "x"}, http.StatusBadRequest, ""},
		{"whitespace username", map[string]string{"username": "a b", "password": "x"}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := post(t, srv, "/api/createusr", "", tt.body)
			assert.Equal(t, tt.status, status)
			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, body["error"])
			} else {
				assert.Contains(t, body["error"], "malformed input")
			}
		})
	}
}

func TestAPI_SignupBcryptOverlongPassword(t *testing.T) {
	hasher, err := passwords.New(passwords.SchemeBcrypt)
	require.NoError(t, err)
	creds := credentials.NewStore(users.NewInMemoryRepository(), hasher)
	svc := services.NewMailService(creds, messages.NewInMemoryRepository(), sessions.NewTable(), logging.Nop())
	srv := httptest.NewServer(NewRouter(svc, logging.Nop(), Options{}))
	t.Cleanup(srv.Close)

	status, body := post(t, srv, "/api/createusr", "", map[string]string{"username": "fish", "password": strings.Repeat("p", 100)})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "at most 72 bytes")
}

func TestAPI_LoginErrors(t *testing.T) {
	srv := newTestServer(t, Options{})
	signupAndLogin(t, srv, "fish", "abcd")

	status, body := post(t, srv, "/api/login", "", map[string]string{"username": "ghost", "password": "abcd"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "user not found", body["error"])

	status, body = post(t, srv, "/api/login", "", map[string]string{"username": "fish", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "incorrect password", body["error"])

	status, _ = post(t, srv, "/api/login", "", "not json")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(t, srv, "/api/login", "", map[string]string{"password": "abcd"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_AuthorizationHeader(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := signupAndLogin(t, srv, "fish", "abcd")

	for _, path := range []string{"/api/logout", "/api/getmsgs", "/api/createmsg", "/api/delmsg"} {
		t.Run(path, func(t *testing.T) {
			status, body := post(t, srv, path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "missing or malformed authorization header", body["error"])

			status, body = post(t, srv, path, "not-a-token", nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "missing or malformed authorization header", body["error"])

			status, body = post(t, srv, path, strings.Repeat("0", 64), nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "session expired", body["error"])
		})
	}

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/getmsgs", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Basic "+token)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_SendMessageErrors(t *testing.T) {
	srv := newTestServer(t, Options{})
	token := signupAndLogin(t, srv, "fish", "abcd")

	status, body := post(t, srv, "/api/createmsg", token, map[string]string{"to": "ghost", "subject": "s", "body": "b"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "recipient does not exist", body["error"])

	status, body = post(t, srv, "/api/createmsg", token, map[string]string{"subject": "s"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "recipient is required", body["error"])

	status, _ = post(t, srv, "/api/createmsg", token, map[string]string{"to": ""})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = post(t, srv, "/api/createmsg", token, "{")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = post(t, srv, "/api/createmsg", token, map[string]string{"to": "fish"})
	assert.Equal(t, http.StatusOK, status, "subject and body are optional")
	assert.NotEmpty(t, body["id"])
}

func TestAPI_DeleteForeignMessage(t *testing.T) {
	srv := newTestServer(t, Options{})
	fish := signupAndLogin(t, srv, "fish", "abcd")
	jeef := signupAndLogin(t, srv, "jeef", "abcd")

	_, body := post(t, srv, "/api/createmsg", jeef, map[string]string{"to": "fish", "subject": "s", "body": "b"})
	id := body["id"].(string)

	status, body := post(t, srv, "/api/delmsg", jeef, map[string]string{"id": id})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "message not found", body["error"])

	status, _ = post(t, srv, "/api/delmsg", fish, map[string]string{"id": "unknown"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = post(t, srv, "/api/delmsg", fish, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)

	_, body = post(t, srv, "/api/getmsgs", fish, nil)
	assert.Len(t, body["messages"], 1)
}

func TestAPI_BodyTooLarge(t *testing.T) {
	srv := newTestServer(t, Options{MaxBodyBytes: 64})
	status, body := post(t, srv, "/api/createusr", "", map[string]string{"username": "fish", "password": strings.Repeat("p", 200)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	assert.Equal(t, "request body too large", body["error"])
}

func TestAPI_HealthMetricsStatic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>mail</h1>"), 0o600))
	srv := newTestServer(t, Options{StaticDir: dir})

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	signupAndLogin(t, srv, "fish", "abcd")

	resp, err = srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "gophmail_http_requests_total")
	assert.Contains(t, string(raw), "gophmail_logins_total")

	resp, err = srv.Client().Get(srv.URL + "/")
	require.NoError(t, err)
	raw, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "<h1>mail</h1>")
}

func TestAPI_ServesBundledFrontEnd(t *testing.T) {
	srv := newTestServer(t, Options{StaticDir: filepath.Join("..", "..", "..", "public")})

	for path, want := range map[string]string{
		"/":            "GophMail",
		"/login.html":  "login-button",
		"/create.html": "create-button",
		"/app.js":      "/api/getmsgs",
	} {
		resp, err := srv.Client().Get(srv.URL + path)
		require.NoError(t, err, path)
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, string(raw), want, path)
	}
}

type brokenService struct{ MailService }

func (brokenService) Authenticate(context.Context, string) (string, error) { return "fish", nil }
func (brokenService) ListInbox(context.Context, string) ([]models.Message, error) {
	return nil, common.ErrorInternal
}
func (brokenService) Login(context.Context, string, string) (*services.Session, error) {
	return nil, errors.New("unexpected")
}

func TestAPI_InternalErrors(t *testing.T) {
	srv := httptest.NewServer(NewRouter(brokenService{}, logging.Nop(), Options{}))
	defer srv.Close()

	status, body := post(t, srv, "/api/getmsgs", strings.Repeat("a", 64), nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", body["error"])

	status, _ = post(t, srv, "/api/login", "", map[string]string{"username": "fish", "password": "x"})
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestAPI_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, Options{AllowedOrigins: []string{"https://mail.example"}})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/login", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://mail.example")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://mail.example", resp.Header.Get("Access-Control-Allow-Origin"))
}
