// Package server implements the websocket transport and session layer for the
// relay.
//
// It upgrades HTTP connections, assigns each one an opaque connection
// identifier, and runs a read/write pump pair per connection that feeds the
// chat core. The core itself lives in internal/chat and never touches a
// websocket directly.
package server
