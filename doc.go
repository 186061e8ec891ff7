// Package smooch authenticates application users against the Smooch REST API
// and forwards appUser property updates.
//
// Binding:
//   - A Binder holds the key id, secret and optional user id key. Configure
//     applies partial updates, fields left nil keep their previous value.
//   - Bind resolves the effective user id (a keyed lookup when UserIDKey is
//     set, the record's ID otherwise), signs an HS256 token with the claims
//     {scope: "appUser", userId: <id>} and the configured kid, and returns a
//     Handle. Missing key material fails at Bind time.
//
// Updating:
//   - Handle.Update calls a Transform with the bound identity. The Transform
//     returns a Payload: Properties and AppUser settle immediately, Deferred
//     settles later. Either way the handle waits for it and sends a single
//     PUT {endpoint}/v1/appusers/{userId} with the bearer token.
//   - Nothing is retried. Transform and transport errors are returned as is,
//     non-2xx replies are reported as *TransportError.
//
// The store, command and relay pieces wire a Bun backed user directory and a
// Fiber HTTP service on top of the same Binder.
package smooch
