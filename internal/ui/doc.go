// Package ui implements the movie browser as a terminal interface using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [ListView] : the current stream's movies, loaded a page at a time as the cursor nears the end
//  2. [GenreView] : the genre picker, "All (N)" first, then each genre with its count
//  3. [DetailView] : one movie, opened through the controller's navigation effect
//
// The [Model] owns no catalog state. It renders whatever [controller.State] the controller publishes and
// turns key presses into intents. Page loads past the first go straight to the visible [paging.Stream].
//
// A page that fails to load shows a footer with a retry binding while the loaded pages stay visible.
// A failed catalog or filter reload replaces the list with an error view.
package ui
