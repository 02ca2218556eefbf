// Package oauth implements the gateway's OAuth 2.1 authorization server:
// the authorization, callback, token, revocation and discovery endpoints,
// and the flow state machine behind them.
//
// The gateway never proves identity itself. The authorization endpoint
// parks the client's request as a pending session and redirects the user
// agent to the identity provider; the callback endpoint claims that
// session (at most once), delegates proof to the identity verifier, and
// only then mints an internal authorization code. The token endpoint
// redeems codes and refresh tokens for internal bearer tokens, enforcing
// PKCE whenever a challenge was bound to the code.
//
// Flow state machine, one traversal per arrow per flow instance:
//
//	Start -> PendingSession -> IdentityRedirect -> CallbackReceived
//	      -> (Verified | Denied) -> CodeIssued -> TokenIssued
//
// Denied and every expiry are terminal; a new flow restarts from Start.
package oauth
