// Package web serves the browser-facing pages of ledgerdesk.
//
// Every page request passes through the session gate: the stored bearer
// token selects a cached session, the gate decides whether the page renders,
// redirects or shows the loading placeholder, and the handler applies that
// single effect. Form posts call the product backend and seed or update the
// session with what it returns.
package web
