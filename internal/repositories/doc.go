// Package repositories implements SQLite persistence for the fixture backend.
//
// [MovieRepository] stores movies and their genres and answers the two queries the catalog API needs:
// an offset/limit page of movies (optionally restricted to one genre) and per-genre counts.
// Movies are ordered by a sequence number assigned on insert, so paging is stable across requests.
// [NextSequence] atomically increments the per-table counter kept in a dedicated sequence table.
//
// [LoadSeedFile] reads movie records from JSON or YAML for [MovieRepository.Seed].
package repositories
