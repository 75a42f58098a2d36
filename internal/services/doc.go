// Package services implements the HTTP collaborators the shelf talks to: catalog search, artwork providers and
// mix lookup.
//
// # Catalog
//
// [MusicBrainz] answers catalog searches, release group lookups, artist identifier searches and url relations. All
// of its requests share one [rate.Limiter] (1 req/s) and identifier lookups can be cached through [Lookups].
//
// # Artwork providers
//
//   - [CoverArtArchive] : front cover URL for a release group id
//   - [Spotify] : album search with the client-credentials flow, best match by name similarity
//   - [Discogs] : scrape of the public search page
//   - [AudioDB] : artist press photos
//   - [Wikidata] and [Commons] : the artist image file named by claim P18 and its thumbnail URL
//   - [Reachability] : HEAD check every candidate URL passes before it is accepted
//
// # Mixes
//
// [Mixcloud] resolves a mix page URL through oEmbed and searches cloudcasts.
//
// # Error Handling
//
// Non-2xx responses wrap [shared.ErrAPIRequest] (or [shared.ErrServiceUnavailable] for 429/503). Empty results
// wrap [shared.ErrNoMatch].
package services
