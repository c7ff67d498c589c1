// Package models defines domain entities and persistence interfaces for hlsx.
//
// The package contains two categories of types:
//
// 1. Playlist data: lightweight structs describing what a live master playlist advertises
//   - [MasterPlaylist] : A fetched master playlist and its variant streams
//   - [Variant] : One rendition (bandwidth, resolution, codecs) of the stream
//   - [Profile] : A named expected bandwidth ladder with its matching options
//
// 2. Persistent entities: database-backed records with lifecycle management
//   - [CheckRun] : The outcome of checking one URL, kept for history
//
// Persistent entities implement the [Model] interface providing ID generation, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
