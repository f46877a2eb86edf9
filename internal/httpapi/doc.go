// Package httpapi implements the HTTP front controller described in
// spec.md §4.C/§6: a single POST endpoint that decodes a Call, validates
// it, and dispatches into the provider.Manager actor — opening a chunked
// RecordIO response for SUBSCRIBE, or returning 202/4xx/5xx for everything
// else. It also mounts the liveness/readiness/metrics endpoints described
// in SPEC_FULL.md §4.
package httpapi
