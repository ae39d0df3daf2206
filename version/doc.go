// Package version reports what build of the client is running. It feeds the
// default User-Agent and the probe's --version output.
//
// Values are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/apiclient/version.Version=1.2.0" ./cmd/apiprobe
package version
