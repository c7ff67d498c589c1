package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/hlsx/internal/models"
	"github.com/desertthunder/hlsx/internal/shared"
	"github.com/grafov/m3u8"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "hlsx/0.1.0"
	maxPlaylistBytes = 8 << 20
)

// PlaylistOpts configures a [PlaylistService].
type PlaylistOpts struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	Headers    *shared.RequestHeaders
}

// PlaylistService fetches and decodes HLS playlists.
type PlaylistService struct {
	httpClient *http.Client
	userAgent  string
	headers    *shared.RequestHeaders
}

// NewPlaylistService creates a PlaylistService. A nil HTTPClient gets a new client with opts.Timeout.
func NewPlaylistService(opts PlaylistOpts) *PlaylistService {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &PlaylistService{
		httpClient: client,
		userAgent:  opts.UserAgent,
		headers:    opts.Headers,
	}
}

// Load fetches rawURL and decodes it as a master playlist.
//
// A media playlist is not an error: it yields a playlist without variants.
func (s *PlaylistService) Load(ctx context.Context, rawURL string) (*models.MasterPlaylist, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	body, err := s.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	playlist, err := Decode(body)
	if err != nil {
		return nil, err
	}
	playlist.URL = rawURL
	playlist.BaseURI = BaseURI(rawURL)
	return playlist, nil
}

// Probe fetches rawURL and checks that it decodes as a playlist.
func (s *PlaylistService) Probe(ctx context.Context, rawURL string) error {
	body, err := s.fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	_, err = Decode(body)
	return err
}

func (s *PlaylistService) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/vnd.apple.mpegurl, application/x-mpegurl, */*")
	s.headers.Apply(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrTimeout, rawURL)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d for %s", shared.ErrAPIRequest, resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaylistBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// Decode parses an M3U8 document.
func Decode(body []byte) (*models.MasterPlaylist, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))), []byte("#EXTM3U")) {
		return nil, fmt.Errorf("%w: missing #EXTM3U header", shared.ErrDecodePlaylist)
	}

	p, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDecodePlaylist, err)
	}

	switch listType {
	case m3u8.MASTER:
		master, ok := p.(*m3u8.MasterPlaylist)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected master playlist type %T", shared.ErrDecodePlaylist, p)
		}
		return fromMaster(master), nil
	case m3u8.MEDIA:
		return &models.MasterPlaylist{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown playlist type", shared.ErrDecodePlaylist)
	}
}

func fromMaster(master *m3u8.MasterPlaylist) *models.MasterPlaylist {
	out := &models.MasterPlaylist{Variants: make([]models.Variant, 0, len(master.Variants))}
	for _, v := range master.Variants {
		if v == nil || v.Iframe {
			continue
		}
		out.Variants = append(out.Variants, models.Variant{
			URI:              v.URI,
			Bandwidth:        int64(v.Bandwidth),
			AverageBandwidth: int64(v.AverageBandwidth),
			Resolution:       v.Resolution,
			Codecs:           v.Codecs,
			FrameRate:        v.FrameRate,
		})
	}
	return out
}

// ValidateURL requires a scheme, a host and a path.
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" || u.Path == "" {
		return fmt.Errorf("%w: %s", shared.ErrInvalidURL, raw)
	}
	return nil
}

// BaseURI returns the directory of rawURL with a trailing slash, dropping any query.
func BaseURI(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	if i := strings.LastIndex(u.Path, "/"); i >= 0 {
		u.Path = u.Path[:i+1]
	} else {
		u.Path = "/"
	}
	return u.String()
}

// ResolveURI resolves a variant reference against the playlist it came from.
func ResolveURI(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidURL, err)
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidURL, err)
	}
	return b.ResolveReference(r).String(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
