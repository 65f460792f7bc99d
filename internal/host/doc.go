// Package host serves one mounted Actor over HTTP.
//
// The actor is mounted on a view.Fanout. GET / renders the current view inside a page
// that opens GET /stream, a datastar SSE stream receiving every later draw as an
// element patch. POST /events/{name} sends the named event with the decoded JSON body
// as data.
package host
