// Package auth issues the bearer tokens handed to Mini-App clients.
//
// # Overview
//
// Tokens are HS256 JWTs signed with the data store's shared secret. The data
// store verifies them itself and evaluates the sub claim in its row-level
// access policies, so the claim set is fixed:
//
//	{"sub":"<user id>","role":"authenticated","aud":"authenticated","exp":<now+2592000>}
//
// Header, claims and signature are base64url encoded without padding.
//
// # Issuing
//
//	issuer := auth.NewTokenIssuer(jwtSecret)
//	issued, err := issuer.Issue(ctx, user.ID.String())
//	if err != nil {
//		return err
//	}
//	// issued.Token: eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiI0MiIs...
//
// The subject must come from a verified launch payload (see pkg/initdata).
//
// # Token Lifetime
//
// Every token is valid for exactly 30 days. There is no refresh or revocation:
// rotating the signing secret is the only way to invalidate issued tokens.
//
// # Verifying
//
// ParseToken mirrors the data store's checks and is used to prove the
// contract in tests and tooling:
//
//	claims, err := auth.ParseToken(issued.Token, jwtSecret)
//
// # Related Packages
//
//   - pkg/initdata: Produces the verified subject
//   - pkg/api: Calls Issue once verification and extraction succeed
package auth
