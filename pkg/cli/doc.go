// Package cli provides the launchgate command-line tool for working with
// Mini App launch data and tokens outside a browser.
//
// # Commands
//
// sign: Build a signed initData string, as the platform would hand it to a Mini App
//
//	launchgate sign \
//		-bot-token "$TG_BOT_TOKEN" \
//		-user-id 42 \
//		-username ada \
//		-field query_id=AAHdF6IQ
//
// verify: Check a signature and print the embedded user
//
//	launchgate verify -max-age 24h "query_id=...&user=...&auth_date=...&hash=..."
//
// token: Issue a token for a subject, or verify and decode an existing one
//
//	launchgate token -subject 42
//	launchgate token -decode eyJhbGciOiJIUzI1NiIs...
//
// exchange: POST initData to a running server and print the token
//
//	launchgate exchange -url http://localhost:8080/telegram-auth "$(launchgate sign -user-id 42)"
//
// Secrets default to TG_BOT_TOKEN and SUPABASE_JWT_SECRET when the flags are omitted.
package cli
