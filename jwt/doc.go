// Package jwt reads the expiry of bearer tokens handed out by the court
// backend and mints compatible HS256 tokens for local fakes.
//
// Expiry decoding never verifies signatures: the client holds no key and only
// needs to know when the server will start rejecting the token.
package jwt
