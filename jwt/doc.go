// Package jwt is the session token codec: it encodes claims (subject, issued-at,
// expiry, token type) into HS256-signed compact tokens and decodes them back,
// enforcing signature, structure, issuer and expiry on every decode.
//
// The codec is stateless. Refresh-token revocation lives in the session store,
// not here.
package jwt
