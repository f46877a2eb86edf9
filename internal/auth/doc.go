// Package auth authenticates the caller principal on the HTTP front
// controller: a bearer JWT's "sub" claim becomes the opaque principal id
// threaded through request context via WithAuth/FromContext.
//
// This package deliberately stops short of authorization. The wire
// protocol the resource-provider manager terminates has no notion of
// roles or permissions (spec.md §1 places authentication of the caller
// principal out of scope for the manager itself); this package exists only
// so the surrounding HTTP server has something to hand the manager.
package auth
