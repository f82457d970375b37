// Package remote is an HTTP client for the showreel control API.
//
// A player started with api_bind (or -api) serves the routes in package api.
// This package drives them from another process: `showreel -remote ADDR
// <command>` uses it, and it is small enough to embed in scripts.
//
//	c, err := remote.NewClient("127.0.0.1:7480")
//	status, err := c.TogglePlay(ctx)
//	fmt.Println(status.Label(), status.Elapsed, "/", status.Total)
//
// Responses with an error status come back as *APIError carrying the
// server's message. Track indexes are zero-based, as on the wire.
package remote
