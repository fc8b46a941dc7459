package linkpreview

import (
	"Agora/internal/api/config"
	"bytes"
	"context"
	"io"
	log "log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/go-resty/resty/v2"
)

// Preview 从目标页面抓到的 OG 元数据
type Preview struct {
	Title       string
	Description string
	Image       string
	URL         string
}

// Fetcher 抓取外链预览，失败返回 nil 而不是错误
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) *Preview
}

type fetcherImpl struct {
	client       *resty.Client
	maxBodyBytes int64
}

func NewFetcher() Fetcher {
	timeout := 5 * time.Second
	maxBody := int64(1 << 20)
	if config.Cfg != nil {
		if config.Cfg.LinkPreview.TimeoutSeconds > 0 {
			timeout = time.Duration(config.Cfg.LinkPreview.TimeoutSeconds) * time.Second
		}
		if config.Cfg.LinkPreview.MaxBodyBytes > 0 {
			maxBody = int64(config.Cfg.LinkPreview.MaxBodyBytes)
		}
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetHeader("User-Agent", "Mozilla/5.0 (compatible; AgoraBot/1.0)")
	return &fetcherImpl{client: client, maxBodyBytes: maxBody}
}

func (f *fetcherImpl) Fetch(ctx context.Context, rawURL string) *Preview {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil
	}

	// 流式读取并封顶，不把整页下载进内存
	resp, err := f.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(rawURL)
	if err != nil {
		log.WarnContext(ctx, "link preview request failed", "url", rawURL, "err", err)
		return nil
	}
	rawBody := resp.RawBody()
	if rawBody == nil {
		return nil
	}
	defer rawBody.Close()

	if resp.StatusCode() >= 400 {
		return nil
	}
	contentType := resp.Header().Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "text/html") {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(rawBody, f.maxBodyBytes))
	if err != nil {
		log.WarnContext(ctx, "link preview read failed", "url", rawURL, "err", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	preview := &Preview{URL: rawURL}
	preview.Title = metaContent(doc, "og:title")
	preview.Description = metaContent(doc, "og:description")
	preview.Image = metaContent(doc, "og:image")

	if preview.Title == "" {
		preview.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if preview.Description == "" {
		if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
			preview.Description = strings.TrimSpace(desc)
		}
	}

	// OG 标签都缺失时退回正文抽取
	if preview.Title == "" && preview.Description == "" {
		if article, aerr := readability.FromReader(bytes.NewReader(body), parsed); aerr == nil {
			preview.Title = article.Title
			preview.Description = truncate(article.Excerpt, 300)
			if preview.Image == "" {
				preview.Image = article.Image
			}
		}
	}

	if preview.Title == "" && preview.Description == "" {
		return nil
	}
	if preview.Image != "" {
		if img, ierr := url.Parse(preview.Image); ierr == nil && !img.IsAbs() {
			preview.Image = parsed.ResolveReference(img).String()
		}
	}
	return preview
}

func metaContent(doc *goquery.Document, property string) string {
	if content, ok := doc.Find(`meta[property="` + property + `"]`).Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
