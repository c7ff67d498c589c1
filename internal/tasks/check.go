package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/hlsx/internal/ladder"
	"github.com/desertthunder/hlsx/internal/models"
	"github.com/desertthunder/hlsx/internal/services"
	"github.com/desertthunder/hlsx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	msgInvalidURL = "Not a valid URL"
	msgNotVariant = "Does not contain any variant playlists"
	msgNoStreams  = "Does not contain any streams"
)

// checker performs the per URL work shared by every worker.
type checker struct {
	loader   PlaylistLoader
	limiter  *rate.Limiter
	now      func() time.Time
	expected ladder.Ladder
	options  ladder.Options
}

// load validates rawURL and fetches it as a master playlist, filling in res on failure.
//
// notVariant is the message used when the playlist lists no variants.
func (c *checker) load(ctx context.Context, res *URLResult, notVariant string) (*models.MasterPlaylist, bool) {
	if err := services.ValidateURL(res.URL); err != nil {
		res.Severity = ladder.Critical
		res.Message = msgInvalidURL
		return nil, false
	}

	if err := c.limiter.Wait(ctx); err != nil {
		res.Severity = ladder.Unknown
		res.Message = fmt.Sprintf("Check cancelled: %v", err)
		return nil, false
	}

	playlist, err := c.loader.Load(ctx, res.URL)
	if err != nil {
		res.Severity = ladder.Critical
		res.Message = loadMessage(err)
		return nil, false
	}

	res.BaseURI = playlist.BaseURI
	if !playlist.IsVariant() {
		res.Severity = ladder.Critical
		res.Message = notVariant
		return playlist, false
	}
	return playlist, true
}

// bandwidths reconciles the observed ladder with the expected one.
func (c *checker) bandwidths(ctx context.Context, rawURL string) (res URLResult) {
	res = URLResult{URL: rawURL, Kind: models.KindBandwidths}
	defer func() { res.CheckedAt = c.now() }()

	playlist, ok := c.load(ctx, &res, msgNotVariant)
	if !ok {
		return res
	}

	res.Bandwidths = playlist.Bandwidths()
	res.Resolutions = playlist.Resolutions()

	match := ladder.Match(c.expected, res.Bandwidths, c.options)
	res.Match = &match
	res.Severity = match.Severity
	res.Message = match.Message()
	return res
}

// availability probes every variant playlist listed by the master playlist.
func (c *checker) availability(ctx context.Context, rawURL string) (res URLResult) {
	res = URLResult{URL: rawURL, Kind: models.KindAvailability}
	defer func() { res.CheckedAt = c.now() }()

	playlist, ok := c.load(ctx, &res, msgNoStreams)
	if !ok {
		return res
	}

	parts := make([]string, 0, len(playlist.Variants))
	for _, v := range playlist.Variants {
		status := VariantStatus{URI: v.URI}

		resolved, err := services.ResolveURI(rawURL, v.URI)
		if err == nil {
			status.URL = resolved
			if err = c.limiter.Wait(ctx); err == nil {
				err = c.loader.Probe(ctx, resolved)
			}
		}
		status.Err = err

		if err != nil {
			res.Severity = ladder.Merge(res.Severity, ladder.Critical)
			parts = append(parts, fmt.Sprintf("%s:%v", v.URI, err))
		} else {
			parts = append(parts, v.URI+":OK")
		}
		res.Variants = append(res.Variants, status)
	}

	res.Message = fmt.Sprintf("BaseURI=%s >> %s", playlist.BaseURI, strings.Join(parts, ", "))
	return res
}

// profiles captures the bandwidth and resolution listing without judging it.
func (c *checker) profiles(ctx context.Context, rawURL string) (res URLResult) {
	res = URLResult{URL: rawURL, Kind: models.KindProfiles}
	defer func() { res.CheckedAt = c.now() }()

	playlist, ok := c.load(ctx, &res, msgNotVariant)
	if !ok {
		return res
	}

	res.Bandwidths = playlist.Bandwidths()
	res.Resolutions = playlist.Resolutions()
	return res
}

func loadMessage(err error) string {
	switch {
	case errors.Is(err, shared.ErrInvalidURL):
		return msgInvalidURL
	case errors.Is(err, shared.ErrTimeout):
		return fmt.Sprintf("Timed out loading playlist: %v", err)
	default:
		return fmt.Sprintf("Failed to load playlist: %v", err)
	}
}
