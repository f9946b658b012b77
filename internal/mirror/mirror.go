// Package mirror downloads a page together with its stylesheets,
// scripts and the resources those stylesheets reference, and rewrites
// the saved page to load everything from the local copy.
package mirror

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly"
	"go.uber.org/zap"

	"github.com/alexcolls/penweb/internal/domain"
)

// cssURLPattern finds url(...) references inside downloaded stylesheets.
var cssURLPattern = regexp.MustCompile(`url\(["']?([^"')]+)["']?\)`)

// Report sums up one mirror run.
type Report struct {
	Target        string
	OutputDir     string
	Assets        int // stylesheets, scripts and css resources saved
	InlineStyles  int
	InlineScripts int
	Failed        int
	Files         int // everything written, index.html included
}

// Mirror clones one page at a time. OnAsset, when set, is called for
// every asset attempt with the local path on success or the error on
// failure.
type Mirror struct {
	log       *zap.Logger
	OutputDir string
	Timeout   time.Duration
	UserAgent string
	OnAsset   func(assetURL, localPath string, err error)
}

func New(log *zap.Logger, outputDir string) *Mirror {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mirror{
		log:       log,
		OutputDir: outputDir,
		Timeout:   30 * time.Second,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	}
}

type rewrite struct {
	orig  string
	local string
}

// Clone fetches the target page, saves its assets under OutputDir and
// writes the page itself as index.html with asset references pointing
// at the local files. Sub-resource failures are counted, not fatal;
// only a page that cannot be fetched at all fails the run.
func (m *Mirror) Clone(ctx context.Context, target string) (Report, error) {
	normalized, err := domain.ParseTarget(target)
	if err != nil {
		return Report{}, err
	}
	rep := Report{Target: normalized, OutputDir: m.OutputDir}
	if err := os.MkdirAll(m.OutputDir, 0o755); err != nil {
		return rep, fmt.Errorf("create output dir: %w", err)
	}

	var (
		pageBody []byte
		// ext hint per scheduled asset URL; "" for css url() resources
		hints    = map[string]string{}
		pending  = map[string]rewrite{}
		rewrites []rewrite
	)

	c := colly.NewCollector(
		colly.UserAgent(m.UserAgent),
		colly.MaxDepth(3),
	)
	c.SetRequestTimeout(m.Timeout)

	c.OnRequest(func(r *colly.Request) {
		select {
		case <-ctx.Done():
			r.Abort()
		default:
		}
	})

	c.OnHTML(`link[rel="stylesheet"]`, func(e *colly.HTMLElement) {
		if e.Request.Depth != 1 {
			return
		}
		href := e.Attr("href")
		abs := e.Request.AbsoluteURL(href)
		if href == "" || abs == "" {
			return
		}
		if rel, ok := localPathFor(abs, "css"); ok {
			hints[abs] = "css"
			pending[abs] = rewrite{orig: href, local: rel}
			_ = e.Request.Visit(abs)
		}
	})

	c.OnHTML(`script[src]`, func(e *colly.HTMLElement) {
		if e.Request.Depth != 1 {
			return
		}
		src := e.Attr("src")
		abs := e.Request.AbsoluteURL(src)
		if src == "" || abs == "" {
			return
		}
		if rel, ok := localPathFor(abs, "js"); ok {
			hints[abs] = "js"
			pending[abs] = rewrite{orig: src, local: rel}
			_ = e.Request.Visit(abs)
		}
	})

	styleIdx := 0
	c.OnHTML("style", func(e *colly.HTMLElement) {
		if e.Request.Depth != 1 {
			return
		}
		idx := styleIdx
		styleIdx++
		if e.Text == "" {
			return
		}
		name := fmt.Sprintf("inline_styles_%d.css", idx)
		if err := m.writeFile(name, []byte(e.Text)); err == nil {
			rep.InlineStyles++
			rep.Files++
		}
	})

	scriptIdx := 0
	c.OnHTML("script:not([src])", func(e *colly.HTMLElement) {
		if e.Request.Depth != 1 {
			return
		}
		idx := scriptIdx
		scriptIdx++
		if e.Text == "" {
			return
		}
		name := fmt.Sprintf("inline_script_%d.js", idx)
		if err := m.writeFile(name, []byte(e.Text)); err == nil {
			rep.InlineScripts++
			rep.Files++
		}
	})

	c.OnResponse(func(r *colly.Response) {
		u := r.Request.URL.String()
		if r.Request.Depth == 1 {
			pageBody = r.Body
			return
		}

		rel, ok := localPathFor(u, hints[u])
		if !ok {
			return
		}
		if err := m.writeFile(rel, r.Body); err != nil {
			rep.Failed++
			m.report(u, "", err)
			return
		}
		rep.Assets++
		rep.Files++
		if pr, found := pending[u]; found {
			rewrites = append(rewrites, rewrite{orig: pr.orig, local: pr.local})
		}
		m.log.Info("mirror_asset_saved", zap.String("url", u), zap.String("path", rel))
		m.report(u, rel, nil)

		// fonts and images referenced by the stylesheet
		if hints[u] == "css" {
			for _, match := range cssURLPattern.FindAllStringSubmatch(string(r.Body), -1) {
				ref := strings.TrimSpace(match[1])
				if ref == "" || strings.HasPrefix(ref, "data:") {
					continue
				}
				abs := r.Request.AbsoluteURL(ref)
				if abs == "" {
					continue
				}
				_ = r.Request.Visit(abs)
			}
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		u := ""
		if r != nil && r.Request != nil {
			u = r.Request.URL.String()
		}
		if r != nil && r.Request != nil && r.Request.Depth == 1 {
			// page failure is reported through Visit's return
			return
		}
		rep.Failed++
		m.log.Warn("mirror_asset_failed", zap.String("url", u), zap.Error(err))
		m.report(u, "", err)
	})

	if err := c.Visit(normalized); err != nil {
		return rep, fmt.Errorf("fetch page: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return rep, err
	}
	if len(pageBody) == 0 {
		return rep, fmt.Errorf("fetch page: empty response from %s", normalized)
	}

	html := string(pageBody)
	for _, rw := range rewrites {
		local := filepath.ToSlash(rw.local)
		html = strings.ReplaceAll(html, `"`+rw.orig+`"`, `"`+local+`"`)
		html = strings.ReplaceAll(html, `'`+rw.orig+`'`, `'`+local+`'`)
	}
	if err := m.writeFile("index.html", []byte(html)); err != nil {
		return rep, fmt.Errorf("save page: %w", err)
	}
	rep.Files++

	m.log.Info("mirror_done",
		zap.String("target", normalized),
		zap.String("output_dir", m.OutputDir),
		zap.Int("assets", rep.Assets),
		zap.Int("inline_styles", rep.InlineStyles),
		zap.Int("inline_scripts", rep.InlineScripts),
		zap.Int("failed", rep.Failed),
		zap.Int("files", rep.Files),
	)
	return rep, nil
}

func (m *Mirror) report(assetURL, localPath string, err error) {
	if m.OnAsset != nil {
		m.OnAsset(assetURL, localPath, err)
	}
}

func (m *Mirror) writeFile(rel string, body []byte) error {
	full := filepath.Join(m.OutputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, body, 0o644)
}

// localPathFor maps an asset URL to a file path relative to the output
// dir: the URL path with the leading slash stripped, index.html for
// directory paths, and the hinted extension appended when the name has
// none. The path is cleaned so assets can never land outside the
// output dir.
func localPathFor(raw, extHint string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	p := u.Path
	if p == "" || strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if extHint != "" && !strings.Contains(path.Base(p), ".") {
		p += "." + extHint
	}
	return p, true
}
