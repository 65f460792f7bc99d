// Package view provides presentation roots an Actor can be mounted on.
//
// Recorder keeps every drawn node in memory. TemplRoot renders templ components to a
// writer. SSERoot patches templ components into a browser over a datastar SSE stream.
// Fanout mirrors one actor to many roots, e.g. one per connected browser tab.
package view
