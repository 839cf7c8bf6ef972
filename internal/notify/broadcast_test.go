package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarket/link-server/internal/domain"
)

type recorder struct {
	mu       sync.Mutex
	paths    []string
	auth     []string
	messages []map[string]any
	failFor  string
}

func (r *recorder) handler(w http.ResponseWriter, req *http.Request) {
	var msg map[string]any
	_ = json.NewDecoder(req.Body).Decode(&msg)

	r.mu.Lock()
	r.paths = append(r.paths, req.URL.Path)
	r.auth = append(r.auth, req.Header.Get("Authorization"))
	r.messages = append(r.messages, msg)
	r.mu.Unlock()

	if msg["to"] == r.failFor {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"recipient not allowed"}}`)
		return
	}
	_, _ = io.WriteString(w, `{"messages":[{"id":"wamid.1"}]}`)
}

var post = PostCreated{
	AuthorName: "Awa Mbarga",
	Kind:       domain.KindNeed,
	Title:      "Cherche plombier",
	ShareURL:   "https://link.example/share/listings/lst-1",
}

func newTestBroadcaster(t *testing.T, rec *recorder, template string) *Broadcaster {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	t.Cleanup(srv.Close)
	return NewBroadcaster(Config{
		AccessToken:       "token",
		PhoneNumberID:     "12345",
		TemplateName:      template,
		GraphBaseURL:      srv.URL,
		MessagesPerSecond: 1000,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPostCreated_MissingConfig(t *testing.T) {
	b := NewBroadcaster(Config{AccessToken: "token"}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	res := b.PostCreated(context.Background(), post, []string{"237600000001", "237600000002"})

	assert.False(t, b.Enabled())
	assert.Equal(t, Result{Skipped: 2, Reason: ReasonMissingConfig}, res)
}

func TestPostCreated_TextPayload(t *testing.T) {
	rec := &recorder{}
	b := newTestBroadcaster(t, rec, "")

	res := b.PostCreated(context.Background(), post, []string{"00237 600 000 001"})

	assert.Equal(t, Result{Sent: 1}, res)
	require.Len(t, rec.messages, 1)
	assert.Equal(t, "/v21.0/12345/messages", rec.paths[0])
	assert.Equal(t, "Bearer token", rec.auth[0])

	msg := rec.messages[0]
	assert.Equal(t, "whatsapp", msg["messaging_product"])
	assert.Equal(t, "237600000001", msg["to"])
	assert.Equal(t, "text", msg["type"])
	text := msg["text"].(map[string]any)
	assert.Equal(t, true, text["preview_url"])
	assert.Equal(t,
		"Awa Mbarga a poste un besoin sur Link.\nCherche plombier\nhttps://link.example/share/listings/lst-1",
		text["body"])
}

func TestPostCreated_TemplatePayload(t *testing.T) {
	rec := &recorder{}
	b := newTestBroadcaster(t, rec, "new_post")

	res := b.PostCreated(context.Background(), post, []string{"237600000001"})
	require.Equal(t, 1, res.Sent)

	msg := rec.messages[0]
	assert.Equal(t, "template", msg["type"])
	tpl := msg["template"].(map[string]any)
	assert.Equal(t, "new_post", tpl["name"])
	assert.Equal(t, "fr", tpl["language"].(map[string]any)["code"])

	params := tpl["components"].([]any)[0].(map[string]any)["parameters"].([]any)
	require.Len(t, params, 4)
	assert.Equal(t, "un besoin", params[1].(map[string]any)["text"])
}

func TestPostCreated_CountsFailures(t *testing.T) {
	rec := &recorder{failFor: "237600000002"}
	b := newTestBroadcaster(t, rec, "")

	res := b.PostCreated(context.Background(), post, []string{"237600000001", "237600000002", "n/a"})

	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 2, res.Failed)
	assert.Len(t, rec.messages, 2)
}
