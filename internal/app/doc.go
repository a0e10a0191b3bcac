// Package app wires relaygrid together and owns its lifecycle: the logger,
// the descriptor store, the catalog and its host mirror, the HTTP server and
// the optional store watcher and event broadcaster. It is decoupled from
// any specific entrypoint like a CLI.
package app
