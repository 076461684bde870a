// Package models defines domain entities and persistence interfaces for the marquee movie catalog client.
//
// The package contains three categories of types:
//
// 1. Domain values: what the controller and UI work with
//   - [Movie] : Normalized catalog entry (title, year, overview, genres)
//   - [Genre] : Filter option with a movie count; a nil *Genre means "no filter"
//   - [Page] : One loaded slice of the remote collection
//
// 2. Raw records: wire shapes of the catalog API
//   - [MovieRecord] : Movie payload as returned by /movies and read from seed files
//   - [GenreRecord] : `[name, count]` tuple returned by /genres
//
// 3. Persistent entities: rows owned by the local fixture backend
//   - [PersistedMovie] : Seeded movie with ID, sequence and timestamps
//
// Persistent entities implement [Persisted] and are stored by the repositories package.
package models
