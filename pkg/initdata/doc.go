// Package initdata verifies Mini-App launch payloads and extracts the user they assert.
//
// # Overview
//
// A chat-host platform hands every Mini-App an URL-encoded launch string
// ("initData"). One field, hash, is the platform's HMAC over all other fields.
// This package rebuilds the canonical data-check string, recomputes the HMAC
// with a key derived from the bot token and compares the two in constant time.
//
// # Signature Scheme
//
//	secretKey = HMAC-SHA256(key = "WebAppData", message = botToken)
//	hash      = hex(HMAC-SHA256(key = secretKey, message = dataCheckString))
//
// The data-check string is every field except hash, percent-decoded, sorted
// by key and rendered as key=value lines joined by "\n":
//
//	auth_date=1700000000
//	user={"id":42}
//
// # Usage
//
//	verifier := initdata.NewVerifier(botToken)
//	data, err := verifier.Verify(ctx, rawInitData)
//	if err != nil {
//		return err // errors.Is(err, initdata.ErrInvalidSignature)
//	}
//	user, err := initdata.ExtractUser(data)
//	if err != nil {
//		return err // errors.Is(err, initdata.ErrMissingUser)
//	}
//	subject := user.ID.String()
//
// ExtractUser refuses LaunchData that did not come out of a successful Verify,
// so an identity can never be read from an unauthenticated payload.
//
// # Related Packages
//
//   - pkg/auth: Issues the bearer token for the extracted subject
//   - pkg/api: HTTP orchestration of verify, extract and issue
package initdata
