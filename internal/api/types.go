package api

import "github.com/stacklok/entries-server/pkg/versions"

const serviceName = "entries-server"

// ProbeResponse is the body of the health and readiness probes
type ProbeResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// VersionResponse reports the build of the running server
type VersionResponse struct {
	Service string `json:"service"`
	versions.VersionInfo
}
