package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/platinummonkey/launchgate/pkg/auth"
	"github.com/platinummonkey/launchgate/pkg/config"
)

func newTokenCommand(out io.Writer) *Command {
	fs := newFlagSet("token", out)

	var (
		secret  = fs.String("secret", "", "Signing secret (default $"+config.EnvJWTSecret+")")
		subject = fs.String("subject", "", "Subject (user id) to issue a token for")
		decode  = fs.String("decode", "", "Verify this token and print its claims instead of issuing one")
	)

	return &Command{
		Name:        "token",
		Description: "Issue a bearer token directly, or verify and decode one",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}

			key := orEnv(*secret, config.EnvJWTSecret)
			if *decode != "" {
				return runDecodeToken(out, key, *decode)
			}
			return runIssueToken(out, key, *subject)
		},
	}
}

func runIssueToken(out io.Writer, secret, subject string) error {
	issued, err := auth.NewTokenIssuer(secret).Issue(context.Background(), subject)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	_, err = fmt.Fprintln(out, issued.Token)
	return err
}

func runDecodeToken(out io.Writer, secret, token string) error {
	claims, err := auth.ParseToken(token, secret)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(claims)
}
