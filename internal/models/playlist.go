package models

import (
	"strings"

	"github.com/desertthunder/hlsx/internal/ladder"
)

// Variant represents a single variant stream in a master playlist.
type Variant struct {
	URI              string  // Media playlist reference as written in the master playlist
	Bandwidth        int64   // Peak bitrate in bits per second
	AverageBandwidth int64   // Average bitrate, 0 if not advertised
	Resolution       string  // e.g. "1280x720", empty if not advertised
	Codecs           string  // e.g. "avc1.4d401f,mp4a.40.2"
	FrameRate        float64 // 0 if not advertised
}

// MasterPlaylist is a fetched master playlist with its variants in document order.
type MasterPlaylist struct {
	URL      string
	BaseURI  string // Directory of URL, used to resolve relative variant references
	Variants []Variant
}

// IsVariant reports whether the playlist lists at least one variant stream.
func (p *MasterPlaylist) IsVariant() bool {
	return p != nil && len(p.Variants) > 0
}

// Bandwidths returns the observed bandwidth ladder in document order.
func (p *MasterPlaylist) Bandwidths() ladder.Ladder {
	out := make(ladder.Ladder, len(p.Variants))
	for i, v := range p.Variants {
		out[i] = v.Bandwidth
	}
	return out
}

// Resolutions returns each variant's resolution normalized to WxH, in document order.
func (p *MasterPlaylist) Resolutions() []string {
	out := make([]string, len(p.Variants))
	for i, v := range p.Variants {
		out[i] = NormalizeResolution(v.Resolution)
	}
	return out
}

// NormalizeResolution strips whitespace and separators so "1280, 720" and "1280X720" both become "1280x720".
func NormalizeResolution(r string) string {
	r = strings.NewReplacer(" ", "", "(", "", ")", "", ",", "x", "X", "x").Replace(r)
	return r
}
