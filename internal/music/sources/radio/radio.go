// Package radio accepts direct internet radio and media stream urls. A url is
// accepted when the server answers with an audio/video content type or when
// the path looks like a stream playlist.
package radio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/keshon/jukebox/internal/music/sources"
)

var validContentTypes = []string{
	"audio/",
	"video/",
	"application/vnd.apple.mpegurl",
	"application/x-mpegurl",
	"application/ogg",
	"application/x-scpls",
	"application/xspf+xml",
	"application/octet-stream",
}

type Source struct {
	client *http.Client
}

// New returns a radio Source. A nil client gets a short-timeout default.
func New(client *http.Client) *Source {
	if client == nil {
		client = &http.Client{
			Timeout: 5 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}
	return &Source{client: client}
}

func (s *Source) Name() string { return sources.SourceRadio }

// Match only checks the url shape; the network probe happens in Resolve.
func (s *Source) Match(raw string) bool {
	return sources.IsURL(raw)
}

// Resolve probes raw and returns a live track streaming from it.
func (s *Source) Resolve(ctx context.Context, raw string) (*sources.TrackInfo, error) {
	probe, err := s.probe(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("radio probe: %w", err)
	}
	if !allowedType(probe.contentType) && !likelyPlaylist(probe.finalURL) {
		return nil, fmt.Errorf("%w: content-type %q, url %s", sources.ErrUnsupported, probe.contentType, probe.finalURL)
	}

	title := probe.name
	if title == "" {
		title = hostOf(probe.finalURL)
	}
	return &sources.TrackInfo{
		URL:        raw,
		StreamURL:  probe.finalURL,
		Title:      title,
		Uploader:   probe.genre,
		IsLive:     true,
		SourceName: sources.SourceRadio,
	}, nil
}

type probeResult struct {
	contentType string
	finalURL    string
	name        string
	genre       string
}

func (s *Source) probe(ctx context.Context, raw string) (*probeResult, error) {
	resp, err := s.do(ctx, http.MethodHead, raw)
	if err != nil || resp.StatusCode >= 400 {
		if resp != nil {
			resp.Body.Close()
		}
		// Icecast servers often reject HEAD.
		resp, err = s.do(ctx, http.MethodGet, raw)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
	}
	defer resp.Body.Close()

	return &probeResult{
		contentType: resp.Header.Get("Content-Type"),
		finalURL:    resp.Request.URL.String(),
		name:        strings.TrimSpace(resp.Header.Get("icy-name")),
		genre:       strings.TrimSpace(resp.Header.Get("icy-genre")),
	}, nil
}

func (s *Source) do(ctx context.Context, method, raw string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Icy-MetaData", "1")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if method == http.MethodGet {
		// Endless streams: read a little so the connection is valid, then stop.
		_, _ = io.CopyN(io.Discard, resp.Body, 512)
	}
	return resp, nil
}

func allowedType(contentType string) bool {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	for _, allowed := range validContentTypes {
		if strings.HasPrefix(contentType, allowed) {
			return true
		}
	}
	return false
}

func likelyPlaylist(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".m3u", ".m3u8", ".pls", ".xspf", ".asx":
		return true
	}
	return false
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
