// Package slotview holds module-wide metadata.
package slotview

// Version is the release version, overridden at build time with
// -ldflags "-X github.com/mesh-intelligence/slotview/pkg/slotview.Version=...".
var Version = "0.1.0-dev"
