// Package gate decides, for each page request, whether the visitor may see
// the page, must be redirected, or should get the loading placeholder while
// their profile is fetched.
//
// The decision itself is the pure function Decide. Gate.Evaluate feeds it a
// snapshot of the browser's Session and starts the single guarded profile
// fetch when the decision asks for one. Applying a decision (writing the
// redirect, clearing the token cookie, rendering) is left to the HTTP layer.
package gate
