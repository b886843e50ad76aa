// Package artifact resolves, checks and downloads model files under a single
// local storage root. Downloads stream into a temporary file in the same
// directory and are renamed into place only after the transfer completes, so
// a partial file is never visible under its final name.
package artifact
