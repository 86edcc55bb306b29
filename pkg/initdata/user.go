package initdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// UserID is the platform identity of a user. The platform sends it as a JSON
// number; strings are accepted as well.
type UserID string

// String returns the id in the form used as a token subject
func (id UserID) String() string {
	return string(id)
}

// UnmarshalJSON accepts a JSON number or string
func (id *UserID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("user id must be a number or string: %w", err)
	}
	*id = UserID(formatNumber(n))
	return nil
}

// formatNumber renders integral numbers without fraction or exponent
func formatNumber(n json.Number) string {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return n.String()
}

// User is the identity object embedded in the user field. Only ID is
// required; unknown fields are ignored.
type User struct {
	ID           UserID `json:"id"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
}

// ExtractUser reads the user object out of verified launch data
func ExtractUser(data *LaunchData) (*User, error) {
	if data == nil || !data.verified {
		return nil, ErrUnverified
	}

	raw := data.Get(UserField)
	if raw == "" {
		return nil, ErrMissingUser
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		// profile fields are optional, retry with the id alone
		var idOnly struct {
			ID UserID `json:"id"`
		}
		if err := json.Unmarshal([]byte(raw), &idOnly); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingUser, err)
		}
		user = User{ID: idOnly.ID}
	}

	if user.ID == "" {
		return nil, fmt.Errorf("%w: id is empty", ErrMissingUser)
	}
	return &user, nil
}
