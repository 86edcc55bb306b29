package api

import (
	"encoding/json"
	"fmt"
)

// Response bodies of the token endpoint. Clients match on these strings.
const (
	BodyOK              = "ok"
	BodyMissingInput    = "Missing initData or secrets"
	BodyInvalidInitData = "Invalid initData"
	BodyNoUserInfo      = "No user info"
)

// Secrets is the pair of shared secrets a token exchange needs. It is read
// once at startup and never mutated.
type Secrets struct {
	// BotToken derives the key launch payloads are signed with
	BotToken string
	// JWTSecret signs the issued bearer tokens
	JWTSecret string
}

// Configured reports whether both secrets are present
func (s Secrets) Configured() bool {
	return s.BotToken != "" && s.JWTSecret != ""
}

// TokenRequest is the body of POST /telegram-auth
type TokenRequest struct {
	// InitData is the raw launch string exactly as the client received it
	InitData string `json:"initData"`
}

// UnmarshalJSON reads initData by its exact key. encoding/json would also
// accept "InitData" or "INITDATA".
func (t *TokenRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	raw, ok := fields["initData"]
	if !ok {
		t.InitData = ""
		return nil
	}
	var initData *string
	if err := json.Unmarshal(raw, &initData); err != nil {
		return fmt.Errorf("initData: %w", err)
	}
	t.InitData = ""
	if initData != nil {
		t.InitData = *initData
	}
	return nil
}

// TokenResponse is returned when a token is issued
type TokenResponse struct {
	Token string `json:"token"`
}
