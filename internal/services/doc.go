// Package services implements the HTTP transport of the movie catalog.
//
// # Catalog API
//
// [CatalogService] implements [CatalogFetcher] over two endpoints resolved against a base URL:
//
//	GET {base}movies?from=&limit=&genre=  -> [{id, genres, release_date, title, tagline, overview, url}, ...]
//	GET {base}genres                      -> [[name, count], ...]
//
// The base URL always gains a trailing slash so relative endpoints resolve beneath it.
//
// # Authentication and Limits
//
// A configured token is sent as a bearer token through [oauth2.StaticTokenSource]. Requests wait on a
// [rate.Limiter] when requests_per_second is positive.
//
// # Error Handling
//
// Transport errors and body read errors are returned unchanged so the caller classifies them as network
// failures. A non-2xx status, an empty body or an undecodable body is returned as [*StatusError], which
// classifies as a server failure.
//
// # Logging
//
// Every request is logged at debug level with its status and duration. With log_bodies set, response
// bodies are logged too.
package services
