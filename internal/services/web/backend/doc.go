// Package backend is the REST client for the product backend. It covers the
// account endpoints the web process needs and nothing else: sign-in, sign-up,
// verification, password recovery and profile settings.
//
// Failures come back as typed errors from the web platform errors package,
// so callers branch on Kind rather than on status codes.
package backend
