package mirror

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const fixturePage = `<!DOCTYPE html>
<html>
<head>
<link rel="stylesheet" href="/css/site.css">
<style>body { margin: 0; }</style>
</head>
<body>
<p>hello</p>
<script src="/js/app.js"></script>
<script src="/js/missing.js"></script>
<script>console.log("hi");</script>
</body>
</html>`

const fixtureCSS = `@font-face { src: url("/fonts/site.woff"); }
.bg { background: url(data:image/png;base64,AAAA); }`

func fixtureServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(fixturePage))
	})
	mux.HandleFunc("/css/site.css", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte(fixtureCSS))
	})
	mux.HandleFunc("/js/app.js", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		_, _ = w.Write([]byte(`var x = 1;`))
	})
	mux.HandleFunc("/fonts/site.woff", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "font/woff")
		_, _ = w.Write([]byte{0x77, 0x4f, 0x46, 0x46})
	})
	return httptest.NewServer(mux)
}

func TestClone_MirrorsPageAndAssets(t *testing.T) {
	srv := fixtureServer()
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "site")
	m := New(zap.NewNop(), out)

	var failedAssets []string
	m.OnAsset = func(assetURL, localPath string, err error) {
		if err != nil {
			failedAssets = append(failedAssets, assetURL)
		}
	}

	rep, err := m.Clone(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("clone: %v", err)
	}

	for _, rel := range []string{
		"index.html",
		filepath.Join("css", "site.css"),
		filepath.Join("js", "app.js"),
		filepath.Join("fonts", "site.woff"),
		"inline_styles_0.css",
		"inline_script_0.js",
	} {
		if _, err := os.Stat(filepath.Join(out, rel)); err != nil {
			t.Fatalf("expected file %s: %v", rel, err)
		}
	}

	if rep.Assets != 3 {
		t.Fatalf("want 3 assets, got %+v", rep)
	}
	if rep.InlineStyles != 1 || rep.InlineScripts != 1 {
		t.Fatalf("inline counts wrong: %+v", rep)
	}
	if rep.Failed != 1 {
		t.Fatalf("want 1 failed asset, got %+v", rep)
	}
	if rep.Files != 6 {
		t.Fatalf("want 6 files written, got %+v", rep)
	}
	if len(failedAssets) != 1 || !strings.Contains(failedAssets[0], "/js/missing.js") {
		t.Fatalf("missing.js should be reported failed: %v", failedAssets)
	}
}

func TestClone_RewritesReferences(t *testing.T) {
	srv := fixtureServer()
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "site")
	m := New(zap.NewNop(), out)
	if _, err := m.Clone(context.Background(), srv.URL); err != nil {
		t.Fatalf("clone: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(out, "index.html"))
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	html := string(b)
	if !strings.Contains(html, `href="css/site.css"`) {
		t.Fatalf("stylesheet href not rewritten:\n%s", html)
	}
	if !strings.Contains(html, `src="js/app.js"`) {
		t.Fatalf("script src not rewritten:\n%s", html)
	}
	if !strings.Contains(html, `src="/js/missing.js"`) {
		t.Fatalf("failed asset must keep its original reference:\n%s", html)
	}
}

func TestClone_SavedInlineContent(t *testing.T) {
	srv := fixtureServer()
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "site")
	m := New(zap.NewNop(), out)
	if _, err := m.Clone(context.Background(), srv.URL); err != nil {
		t.Fatalf("clone: %v", err)
	}

	style, err := os.ReadFile(filepath.Join(out, "inline_styles_0.css"))
	if err != nil {
		t.Fatalf("read inline style: %v", err)
	}
	if !strings.Contains(string(style), "body { margin: 0; }") {
		t.Fatalf("inline style content wrong: %q", style)
	}

	script, err := os.ReadFile(filepath.Join(out, "inline_script_0.js"))
	if err != nil {
		t.Fatalf("read inline script: %v", err)
	}
	if !strings.Contains(string(script), `console.log("hi");`) {
		t.Fatalf("inline script content wrong: %q", script)
	}
}

func TestClone_InvalidTarget(t *testing.T) {
	m := New(zap.NewNop(), t.TempDir())
	if _, err := m.Clone(context.Background(), "ftp://example.com"); err == nil {
		t.Fatalf("want error for non-http target")
	}
}

func TestClone_CancelledContext(t *testing.T) {
	srv := fixtureServer()
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := filepath.Join(t.TempDir(), "site")
	m := New(zap.NewNop(), out)
	if _, err := m.Clone(ctx, srv.URL); err == nil {
		t.Fatalf("want error for cancelled context")
	}
	if _, err := os.Stat(filepath.Join(out, "index.html")); err == nil {
		t.Fatalf("no page should be written after cancellation")
	}
}

func TestLocalPathFor(t *testing.T) {
	cases := []struct {
		name string
		url  string
		hint string
		want string
	}{
		{"plain path", "https://example.com/css/site.css", "css", "css/site.css"},
		{"root becomes index", "https://example.com/", "", "index.html"},
		{"empty path becomes index", "https://example.com", "", "index.html"},
		{"dir becomes index", "https://example.com/static/", "", "static/index.html"},
		{"hint appended", "https://example.com/api/style", "css", "api/style.css"},
		{"hint not doubled", "https://example.com/style.css", "css", "style.css"},
		{"dotdot cleaned", "https://example.com/a/../../../etc/passwd", "", "etc/passwd"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := localPathFor(tc.url, tc.hint)
			if !ok {
				t.Fatalf("localPathFor(%q) not ok", tc.url)
			}
			if got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}
