// Package stream serves a running simulation to external renderers over a
// websocket.
//
// Every tick the server broadcasts one msgpack-encoded [Frame] as a binary
// message. Clients steer the world by sending [Input] messages, either as
// msgpack (binary) or JSON (text). Inputs are queued and applied by the
// simulation goroutine before the next step, so the particle buffer is never
// touched concurrently.
package stream
