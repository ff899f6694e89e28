// Package version records the build version of the beacon service.
package version

// Version is the semantic version of this build. Overridden at link time
// via -ldflags "-X github.com/vireolabs/beacon/version.Version=...".
var Version = "0.1.0-dev"
