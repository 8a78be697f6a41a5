// Package logging provides a zerolog-backed core.Logger.
//
// Console output uses zerolog's ConsoleWriter with a short timestamp. An
// optional file sink receives the same events as JSON lines.
package logging
