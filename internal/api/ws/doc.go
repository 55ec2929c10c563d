// Package ws provides WebSocket streaming for the live editor.
//
// A docs page opens one connection per editor and multiplexes its
// demo sessions over it: open, update, run, close. Replies carry the
// same session snapshots the REST surface serves, so a client can mix
// both transports freely.
package ws
