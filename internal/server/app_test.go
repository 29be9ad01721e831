package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophmail/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	gs "github.com/dmitrijs2005/gophmail/internal/server/grpc"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StorageBackend = "memory"
	c.PasswordScheme = "plain"
	c.StaticDir = ""
	c.ShutdownTimeout = 2 * time.Second
	return c
}

func listen(t *testing.T) net.Listener {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return lis
}

func postJSON(t *testing.T, url, token string, body any) (int, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestApp_ServeHTTPAndGRPCShareSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var logs bytes.Buffer
	app, err := NewApp(ctx, testConfig(), &logs)
	require.NoError(t, err)

	httpLis, grpcLis := listen(t), listen(t)
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, httpLis, grpcLis) }()

	base := "http://" + httpLis.Addr().String()
	creds := map[string]string{"username": "fish", "password": "pw"}

	code, _ := postJSON(t, base+"/api/createusr", "", creds)
	require.Equal(t, http.StatusOK, code)
	code, out := postJSON(t, base+"/api/login", "", creds)
	require.Equal(t, http.StatusOK, code)
	token, _ := out["token"].(string)
	require.Len(t, token, 64)

	code, out = postJSON(t, base+"/api/createmsg", token, map[string]string{
		"to": "fish", "subject": "note", "body": "to self",
	})
	require.Equal(t, http.StatusOK, code)
	id, _ := out["id"].(string)

	conn, err := grpc.NewClient(grpcLis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	empty, err := structpb.NewStruct(nil)
	require.NoError(t, err)
	rctx := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	inbox, err := gs.NewMailboxClient(conn).Call(rctx, gs.MethodListInbox, empty)
	require.NoError(t, err)

	msgs := inbox.GetFields()["messages"].GetListValue().GetValues()
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].GetStructValue().GetFields()["id"].GetStringValue())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.True(t, strings.Contains(logs.String(), "App stopped"))
}

func TestApp_ServeWithoutGRPC(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	app, err := NewApp(ctx, testConfig(), io.Discard)
	require.NoError(t, err)

	httpLis := listen(t)
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, httpLis, nil) }()

	resp, err := http.Get("http://" + httpLis.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	assert.NoError(t, <-done)
}

func TestApp_RunFailsOnBusyAddress(t *testing.T) {
	busy := listen(t)
	defer busy.Close()

	c := testConfig()
	c.EndpointAddrHTTP = busy.Addr().String()

	app, err := NewApp(context.Background(), c, io.Discard)
	require.NoError(t, err)
	assert.Error(t, app.Run(context.Background()))
}

func TestNewApp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"bad log level", func(c *config.Config) { c.LogLevel = "loud" }},
		{"bad log format", func(c *config.Config) { c.LogFormat = "xml" }},
		{"bad password scheme", func(c *config.Config) { c.PasswordScheme = "md5" }},
		{"bad backend", func(c *config.Config) { c.StorageBackend = "redis" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig()
			tt.mutate(c)
			_, err := NewApp(context.Background(), c, io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestNewApp_PlainSchemeWarns(t *testing.T) {
	var logs bytes.Buffer
	_, err := NewApp(context.Background(), testConfig(), &logs)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "plaintext")
}
