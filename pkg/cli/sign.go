package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/platinummonkey/launchgate/pkg/config"
	"github.com/platinummonkey/launchgate/pkg/initdata"
)

type signOptions struct {
	botToken  string
	userID    int64
	username  string
	firstName string
	authDate  int64
	fields    map[string]string
}

// signedUser is the user object as the platform serialises it, with a numeric id
type signedUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

func newSignCommand(out io.Writer) *Command {
	fs := newFlagSet("sign", out)

	var (
		botToken  = fs.String("bot-token", "", "Bot token to sign with (default $"+config.EnvBotToken+")")
		userID    = fs.Int64("user-id", 0, "User id to embed in the user field")
		username  = fs.String("username", "", "Username to embed in the user field")
		firstName = fs.String("first-name", "", "First name to embed in the user field")
		authDate  = fs.Int64("auth-date", 0, "auth_date in unix seconds (default now)")
		fields    = fieldsFlag{}
	)
	fs.Var(fields, "field", "Extra key=value field, may be repeated")

	return &Command{
		Name:        "sign",
		Description: "Build a signed initData string for local testing",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}

			return runSign(out, signOptions{
				botToken:  *botToken,
				userID:    *userID,
				username:  *username,
				firstName: *firstName,
				authDate:  *authDate,
				fields:    fields,
			})
		},
	}
}

func runSign(out io.Writer, opts signOptions) error {
	botToken := orEnv(opts.botToken, config.EnvBotToken)
	if botToken == "" {
		return fmt.Errorf("bot token is required: pass -bot-token or set %s", config.EnvBotToken)
	}

	fields := make(map[string]string, len(opts.fields)+2)
	for k, v := range opts.fields {
		fields[k] = v
	}

	if _, ok := fields[initdata.AuthDateField]; !ok {
		authDate := opts.authDate
		if authDate == 0 {
			authDate = time.Now().Unix()
		}
		fields[initdata.AuthDateField] = strconv.FormatInt(authDate, 10)
	}

	if opts.userID != 0 {
		user, err := json.Marshal(signedUser{
			ID:        opts.userID,
			FirstName: opts.firstName,
			Username:  opts.username,
		})
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}
		fields[initdata.UserField] = string(user)
	}

	_, err := fmt.Fprintln(out, initdata.Build(fields, botToken))
	return err
}
