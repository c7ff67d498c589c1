// Package services retrieves HLS playlists over HTTP.
//
// [PlaylistService] fetches a playlist with the configured timeout, user agent and request headers
// and decodes it with [m3u8.DecodeFrom]. Master playlists become a [models.MasterPlaylist] with
// one [models.Variant] per EXT-X-STREAM-INF entry in document order. I-frame only streams are skipped.
// A media playlist decodes to a MasterPlaylist with no variants, so callers can tell the two apart
// with [models.MasterPlaylist.IsVariant].
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrInvalidURL] : the URL lacks a scheme, host or path
//   - [shared.ErrAPIRequest] : transport failure or non-2xx response
//   - [shared.ErrTimeout] : the request exceeded its deadline
//   - [shared.ErrDecodePlaylist] : the body is not an M3U8 playlist
package services
