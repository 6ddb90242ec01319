// Package files provides path resolution against the application
// directories and the atomic write-then-replace primitive used by the
// exporters.
package files
