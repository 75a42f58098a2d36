// Package models defines the domain entities and persistence interfaces for the shelf.
//
// The package contains two categories of types:
//
// 1. The collection entity
//   - [Item] : an album, artist or mix on the shelf, with cover, listened state and manual order
//   - [Kind] : the fixed item kind
//   - [OrderUpdate] : one (id, manual order) pair written by a reorder commit
//
// 2. Data Transfer Objects (DTOs) returned by catalog collaborators
//   - [AlbumResult], [ArtistResult] : catalog search hits used to create items
//   - [MixResult] : a mix resolved from a URL or found by search
//   - [SearchResults] : albums first, then artists
//
// The [ItemRepository] interface describes the row store backing the in-memory collection.
package models
