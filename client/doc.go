// Package client is a Go client for the stash HTTP API.
//
// The client speaks the stateless session protocol: it sends whatever
// bearer token it currently holds (possibly none) and captures the
// re-signed token from every response, so a fresh client earns a
// session on its very first call. Profiles persist the endpoint and
// the last captured token in ~/.stash/config.yaml.
package client
