// Package version holds the build version, set via -ldflags.
package version

// Version is overridden at build time with
// -ldflags "-X github.com/liberioai/dossier/internal/version.Version=v1.2.3".
var Version = "dev"
