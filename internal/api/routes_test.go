package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier/console-backend/internal/chatstate"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(sessionKey, content string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sessionKey+"|"+content)
	return nil
}

func newTestApp(t *testing.T) (*fiber.App, *chatstate.Store, *fakeSender) {
	t.Helper()
	app := fiber.New()
	store := chatstate.NewStore("main")
	sender := &fakeSender{}
	SetupRoutes(app, store, sender)
	return app, store, sender
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]json.RawMessage) {
	t.Helper()
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]json.RawMessage{}
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
	}
	return resp.StatusCode, out
}

func TestRoutes_Health(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, body := doJSON(t, app, "GET", "/api/v1/health", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `"healthy"`, string(body["status"]))
}

func TestRoutes_StateSnapshot(t *testing.T) {
	app, store, _ := newTestApp(t)
	store.SetSessions([]chatstate.Session{{Key: "main", Label: "Assistant"}})
	store.Append(chatstate.Message{ID: "m1", Role: chatstate.RoleUser, Content: "hi"})

	req := httptest.NewRequest("GET", "/api/v1/state", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var snap chatstate.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, "main", snap.ActiveKey)
	assert.Equal(t, []string{"main"}, snap.OpenTabs)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "hi", snap.Messages[0].Content)
}

func TestRoutes_TabLifecycle(t *testing.T) {
	app, store, _ := newTestApp(t)

	code, body := doJSON(t, app, "POST", "/api/v1/tabs", `{"key":"s1"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `["main","s1"]`, string(body["openTabs"]))
	assert.JSONEq(t, `"s1"`, string(body["activeKey"]))

	// Closing the main tab is refused.
	code, body = doJSON(t, app, "DELETE", "/api/v1/tabs/main", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `["main","s1"]`, string(body["openTabs"]))

	code, body = doJSON(t, app, "DELETE", "/api/v1/tabs/s1", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `["main"]`, string(body["openTabs"]))
	assert.JSONEq(t, `"main"`, string(body["activeKey"]))

	assert.Equal(t, "main", store.ActiveKey())
}

func TestRoutes_TabReorderRepairs(t *testing.T) {
	app, _, _ := newTestApp(t)
	doJSON(t, app, "POST", "/api/v1/tabs", `{"key":"s1"}`)
	doJSON(t, app, "POST", "/api/v1/tabs", `{"key":"s2"}`)

	code, body := doJSON(t, app, "PUT", "/api/v1/tabs", `{"order":["s2","bogus","main"]}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `["s2","main","s1"]`, string(body["openTabs"]))
}

func TestRoutes_OpenTabWithoutKeyCreatesSession(t *testing.T) {
	app, store, _ := newTestApp(t)

	code, body := doJSON(t, app, "POST", "/api/v1/tabs", `{}`)
	assert.Equal(t, fiber.StatusOK, code)

	var tabs []string
	require.NoError(t, json.Unmarshal(body["openTabs"], &tabs))
	require.Len(t, tabs, 2)
	assert.Equal(t, tabs[1], store.ActiveKey())
	assert.NotEmpty(t, store.ActiveKey())
}

func TestRoutes_Drafts(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, body := doJSON(t, app, "PUT", "/api/v1/sessions/s1/draft", `{"text":"dear client ..."}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `"dear client ..."`, string(body["draft"]))

	code, body = doJSON(t, app, "GET", "/api/v1/sessions/s1/draft", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `"dear client ..."`, string(body["draft"]))

	// Unknown session reads back as the empty draft.
	code, body = doJSON(t, app, "GET", "/api/v1/sessions/nope/draft", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `""`, string(body["draft"]))
}

func TestRoutes_PostMessage(t *testing.T) {
	app, store, sender := newTestApp(t)

	code, body := doJSON(t, app, "POST", "/api/v1/messages", `{"content":"schedule the trunk show"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `"user"`, string(body["role"]))

	msgs := store.Messages("main")
	require.Len(t, msgs, 1)
	assert.Equal(t, "schedule the trunk show", msgs[0].Content)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "main|schedule the trunk show", sender.sent[0])
}

func TestRoutes_PostMessageGatewayDown(t *testing.T) {
	app, store, sender := newTestApp(t)
	sender.err = fmt.Errorf("gateway: not connected")

	code, _ := doJSON(t, app, "POST", "/api/v1/messages", `{"content":"hello"}`)
	assert.Equal(t, fiber.StatusBadGateway, code)

	// The turn still landed locally; the reply will come after reconnect.
	require.Len(t, store.Messages("main"), 1)
}

func TestRoutes_PostMessageEmptyContent(t *testing.T) {
	app, _, _ := newTestApp(t)

	code, _ := doJSON(t, app, "POST", "/api/v1/messages", `{"content":""}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestRoutes_SetActiveSession(t *testing.T) {
	app, store, _ := newTestApp(t)

	code, body := doJSON(t, app, "POST", "/api/v1/sessions/active", `{"key":"cron-digest"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `"cron-digest"`, string(body["activeKey"]))
	assert.Equal(t, "cron-digest", store.ActiveKey())

	code, _ = doJSON(t, app, "POST", "/api/v1/sessions/active", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestRoutes_SetSessions(t *testing.T) {
	app, store, _ := newTestApp(t)

	code, _ := doJSON(t, app, "PUT", "/api/v1/sessions",
		`{"sessions":[{"key":"main","label":"Assistant"},{"key":"cron-digest","label":"Daily digest","kind":"cron"}]}`)
	assert.Equal(t, fiber.StatusOK, code)

	sessions := store.Sessions()
	require.Len(t, sessions, 2)
	assert.Equal(t, "cron", sessions[1].Kind)
	// Catalog refresh never moves the active session.
	assert.Equal(t, "main", store.ActiveKey())
}

func TestRoutes_SessionMessages(t *testing.T) {
	app, store, _ := newTestApp(t)
	store.Apply(chatstate.HistoryReplaced{SessionKey: "s1", Messages: []chatstate.Message{
		{ID: "h1", Role: chatstate.RoleAssistant, Content: "archived reply"},
	}})

	code, body := doJSON(t, app, "GET", "/api/v1/sessions/s1/messages", "")
	assert.Equal(t, fiber.StatusOK, code)

	var msgs []chatstate.Message
	require.NoError(t, json.Unmarshal(body["messages"], &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "archived reply", msgs[0].Content)

	code, _ = doJSON(t, app, "DELETE", "/api/v1/sessions/s1/messages", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, store.Messages("s1"))
}
