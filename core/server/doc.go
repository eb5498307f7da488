// Package server holds the HTTP server configuration.
//
// The main application entry point handles the server startup; this package only
// defines the settings: listen port, API key, how many bootstrap runs may execute at
// once and where run reports are stored.
package server
