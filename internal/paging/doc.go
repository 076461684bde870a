// Package paging implements offset-keyed, lazily loaded page streams over the movie catalog.
//
// # Cursors
//
// A cursor is the offset of a page's first item. Page 0 starts at cursor 0. For a page loaded at cursor c:
//   - next is c + pageSize when the page came back full, otherwise there is none
//   - prev is max(c - pageSize, 0) when c != 0, otherwise there is none
//
// # Streams
//
// A [Stream] is bound to one filter for its whole life. Changing the filter means asking the [Factory] for a
// new stream; the old one is simply abandoned. Each cursor has at most one load in flight
// (golang.org/x/sync/singleflight) and loaded pages are never evicted.
//
// [MovieLoader] is the production [Loader], reading windows from [catalog.Repository].
package paging
