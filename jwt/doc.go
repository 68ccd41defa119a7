// Package jwt issues and verifies access tokens whose jti is the handle used
// for revocation. Ed25519 and HS256 are supported; Ed25519 is preferred.
package jwt
