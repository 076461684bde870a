// Package server provides the fixture catalog backend: HTTP routing, middleware and the catalog handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers so the first one added runs outermost, following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Catalog Endpoints
//
// [CatalogHandler] serves the two endpoints the catalog client consumes:
//
//	GET /api/movies?from=0&limit=10&genre=Drama
//	GET /api/genres
//
// Movies are returned as a JSON array of records ordered by catalog sequence.
// Genres are returned as `[name, count]` tuples.
//
// # Middleware
//
// [Logging], [Recover], [BearerAuth] and [Latency] are composed by [NewCatalogRouter].
// Latency lets the client's loading states be observed against a local backend.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
