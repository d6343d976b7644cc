package webd

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

func TestWebDaemon_socketReplaysUpdates(t *testing.T) {
	d, router := newTestWebDaemon(t)
	importTestPost(t, router)

	server := httptest.NewServer(router)
	defer server.Close()

	// The feed hands updates over before the ring records them.
	deadline := time.Now().Add(2 * time.Second)
	for d.recent.Len() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/socket", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	var parts []string
	for i := 0; i < 2; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		if got := gjson.GetBytes(msg, "action").String(); got != "updated" {
			t.Errorf("unexpected action %q", got)
		}
		if got := gjson.GetBytes(msg, "post.slug").String(); got != "kaniksu-loop" {
			t.Errorf("unexpected slug %q", got)
		}
		parts = append(parts, gjson.GetBytes(msg, "post.part").String())
	}
	if parts[0] != "track" || parts[1] != "photos" {
		t.Errorf("want track then photos, got %v", parts)
	}
}
