package webd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/trailimage/trailmap/api"
	"github.com/trailimage/trailmap/params"
	"github.com/trailimage/trailmap/testing/testdata"
)

const testToken = "test-token"

// newTestWebDaemon serves a fresh site rooted in a temp dir.
// Both are closed when the test ends.
func newTestWebDaemon(t *testing.T) (*WebDaemon, *mux.Router) {
	t.Helper()
	site, err := api.NewSite(params.DefaultTestConfig(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { site.Close() })
	d, err := NewWebDaemon(params.DefaultTestWebDaemonConfig(), site)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(d.Close)
	return d, d.NewRouter()
}

func serve(router http.Handler, req *http.Request) *http.Response {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Result()
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// importTestPost posts the fixture track and photos as kaniksu-loop.
func importTestPost(t *testing.T, router http.Handler) {
	t.Helper()
	req := httptest.NewRequest("POST", "http://trailimage.com/posts/kaniksu-loop/track",
		bytes.NewReader(testdata.MustRead(testdata.Source_KaniksuLoop)))
	req.Header.Set("Authorization", "Bearer "+testToken)
	if resp := serve(router, req); resp.StatusCode != http.StatusOK {
		t.Fatalf("import track: status %d: %s", resp.StatusCode, readBody(t, resp))
	}

	req = httptest.NewRequest("POST", "http://trailimage.com/posts/kaniksu-loop/photos",
		bytes.NewReader(testdata.MustRead(testdata.Source_FlickrPhotoset)))
	req.Header.Set("Authorization", testToken)
	if resp := serve(router, req); resp.StatusCode != http.StatusOK {
		t.Fatalf("import photos: status %d: %s", resp.StatusCode, readBody(t, resp))
	}
}
