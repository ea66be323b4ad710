package wablast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"golang-wa-dispatch/internal/domain"
	"golang-wa-dispatch/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		name   string
		httpOK bool
		body   string
		want   bool
	}{
		{"ok plain body", true, `sent`, true},
		{"ok empty body", true, ``, true},
		{"ok status true", true, `{"status":true,"msg":"Message sent successfully!"}`, true},
		{"ok status false", true, `{"status":false,"msg":"Number not registered"}`, false},
		{"ok success false", true, `{"success":false}`, false},
		{"ok unrecognized status", true, `{"status":"pending"}`, false},
		{"ok unrelated fields", true, `{"id":"abc"}`, true},
		{"http failure", false, `{"status":true}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSuccess(tt.httpOK, tt.body))
		})
	}
}

func TestMediaEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		group    string
		kind     ports.MediaKind
		override string
		seed     string
		want     string
	}{
		{"file by substitution", "https://wa.example.com/send-message", ports.MediaFile, "", "", "https://wa.example.com/send-media"},
		{"image by substitution", "https://wa.example.com/send-message", ports.MediaImage, "", "", "https://wa.example.com/send-image"},
		{"file override", "https://wa.example.com/send-message", ports.MediaFile, "https://files.example.com/upload", "", "https://files.example.com/upload"},
		{"override ignored for images", "https://wa.example.com/send-message", ports.MediaImage, "https://files.example.com/upload", "", "https://wa.example.com/send-image"},
		{"seed when no substitution", "https://wa.example.com/api/group", ports.MediaFile, "", "https://media.example.com/v2/", "https://media.example.com/v2/send-media"},
		{"origin when no seed", "https://wa.example.com/api/group", ports.MediaImage, "", "", "https://wa.example.com/send-image"},
		{"unresolvable", "", ports.MediaFile, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MediaEndpoint(tt.group, tt.kind, tt.override, tt.seed))
		})
	}
}

type recorder struct {
	mu    sync.Mutex
	paths []string
	forms []url.Values
}

func (rec *recorder) handler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		rec.mu.Lock()
		rec.paths = append(rec.paths, r.URL.Path)
		rec.forms = append(rec.forms, r.PostForm)
		rec.mu.Unlock()
		_, _ = w.Write([]byte(body))
	}
}

func gateway(baseURL string) domain.GatewayConfig {
	return domain.GatewayConfig{
		ID:           2,
		ProviderCode: domain.ProviderBroadcast,
		BaseURL:      baseURL + "/send-message",
		Token:        "key",
		SenderNumber: "62811999",
		TimeoutSec:   5,
	}
}

func TestSendOnce_PersonalNumberShapes(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(`{"status":true}`))
	defer srv.Close()

	client := New(srv.Client())
	gw := gateway(srv.URL)

	require.True(t, client.SendOnce(context.Background(), gw, domain.ChannelPersonal, "0812-3456", "hi").OK)
	require.True(t, client.SendOnce(context.Background(), gw, domain.ChannelPersonal, "62812@s.whatsapp.net", "hi").OK)

	require.Len(t, rec.forms, 2)
	assert.Equal(t, "628123456", rec.forms[0].Get("number"))
	assert.Equal(t, "62812@s.whatsapp.net", rec.forms[1].Get("number"))
	assert.Equal(t, "key", rec.forms[0].Get("api_key"))
	assert.Equal(t, "62811999", rec.forms[0].Get("sender"))
}

func TestSendOnce_GroupFallsBackToBaseEndpoint(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(`{"status":true}`))
	defer srv.Close()

	gw := gateway(srv.URL)
	gw.Extra = map[string]any{"footer": "NOC"}
	res := New(srv.Client()).SendOnce(context.Background(), gw, domain.ChannelGroup, "1203@g.us", "link down")
	require.True(t, res.OK, res.Error)
	assert.Equal(t, []string{"/send-message"}, rec.paths)
	assert.Equal(t, "1203@g.us", rec.forms[0].Get("number"))
	assert.Equal(t, "NOC", rec.forms[0].Get("footer"))
}

func TestSendMediaOnce_CaptionAndFollowUp(t *testing.T) {
	rec := &recorder{}
	srv := httptest.NewServer(rec.handler(`{"status":true}`))
	defer srv.Close()

	client := New(srv.Client())
	gw := gateway(srv.URL)

	res := client.SendMediaOnce(context.Background(), gw, domain.ChannelGroup, "1203@g.us", "Nightly report",
		"https://cdn.example.com/r.pdf", ports.MediaOptions{SendAsCaption: true})
	require.True(t, res.OK, res.Error)
	assert.Equal(t, []string{"/send-media"}, rec.paths)
	assert.Equal(t, "document", rec.forms[0].Get("media_type"))
	assert.Equal(t, "r.pdf", rec.forms[0].Get("filename"))
	assert.Equal(t, "Nightly report", rec.forms[0].Get("caption"))

	res = client.SendMediaOnce(context.Background(), gw, domain.ChannelGroup, "1203@g.us", "Nightly report",
		"https://cdn.example.com/chart.png", ports.MediaOptions{})
	require.True(t, res.OK, res.Error)
	assert.Equal(t, []string{"/send-media", "/send-image", "/send-message"}, rec.paths)
	assert.Equal(t, "", rec.forms[1].Get("caption"))
	assert.Equal(t, "Nightly report", rec.forms[2].Get("message"))
}

func TestSendMediaOnce_RejectsPersonal(t *testing.T) {
	res := New(nil).SendMediaOnce(context.Background(), gateway("http://127.0.0.1:1"), domain.ChannelPersonal, "0812", "x",
		"https://cdn.example.com/a.png", ports.MediaOptions{})
	assert.False(t, res.OK)
	assert.True(t, res.Precondition)
}
