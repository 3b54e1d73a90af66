package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records calls and serves canned per-method results.
type fakeAPI struct {
	srv     *httptest.Server
	calls   []string
	bodies  []map[string]interface{}
	results map[string]interface{}
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{results: make(map[string]interface{})}
	api.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Path shape: /bot<token>/<method>
		method := r.URL.Path[len("/bottoken/"):]
		api.calls = append(api.calls, method)

		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		api.bodies = append(api.bodies, body)

		result, ok := api.results[method]
		if !ok {
			result = true
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": result})
	}))
	t.Cleanup(api.srv.Close)

	prev := apiBase
	apiBase = api.srv.URL + "/bot"
	t.Cleanup(func() { apiBase = prev })

	return api
}

func TestSendMessageReturnsMessageID(t *testing.T) {
	api := newFakeAPI(t)
	api.results["sendMessage"] = map[string]interface{}{"message_id": 42}

	client := New("token", "@channel")
	id, err := client.SendMessage(context.Background(), "<b>hello</b>")

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	require.Len(t, api.bodies, 1)
	assert.Equal(t, "@channel", api.bodies[0]["chat_id"])
	assert.Equal(t, "HTML", api.bodies[0]["parse_mode"])
	assert.Equal(t, true, api.bodies[0]["disable_web_page_preview"])
}

func TestEditAndDeleteTargetTheMessage(t *testing.T) {
	api := newFakeAPI(t)
	client := New("token", "@channel")

	require.NoError(t, client.EditMessage(context.Background(), 42, "updated"))
	require.NoError(t, client.DeleteMessage(context.Background(), 42))

	require.Equal(t, []string{"editMessageText", "deleteMessage"}, api.calls)
	assert.Equal(t, float64(42), api.bodies[0]["message_id"])
	assert.Equal(t, "updated", api.bodies[0]["text"])
}

func TestVerifyChannelAccess(t *testing.T) {
	api := newFakeAPI(t)
	client := New("token", "@channel")

	api.results["getChatMember"] = map[string]interface{}{"status": "administrator"}
	assert.NoError(t, client.VerifyChannelAccess(context.Background(), 7))

	api.results["getChatMember"] = map[string]interface{}{"status": "left"}
	err := client.VerifyChannelAccess(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no posting access")
}
