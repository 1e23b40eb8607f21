// Package spotify wraps the Spotify Web API behind a Manager plus the set of
// playlist tools the agent exposes to the oracle. Authentication uses the
// OAuth2 authorization-code flow with PKCE: a local TLS callback server
// captures the authorization code and the resulting token is cached on disk
// so subsequent runs skip the browser round trip.
package spotify
