// Package version reports build information for binaries embedding seqkit.
//
// Version and Commit are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/seqkit/version.Version=1.0.0"
//
// Anything left unset is filled from the module build info.
package version
