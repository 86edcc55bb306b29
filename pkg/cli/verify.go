package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/platinummonkey/launchgate/pkg/config"
	"github.com/platinummonkey/launchgate/pkg/initdata"
)

// VerifyResult is printed by the verify command
type VerifyResult struct {
	Valid    bool           `json:"valid"`
	AuthDate string         `json:"auth_date,omitempty"`
	User     *initdata.User `json:"user,omitempty"`
}

func newVerifyCommand(out io.Writer) *Command {
	fs := newFlagSet("verify", out)

	var (
		botToken = fs.String("bot-token", "", "Bot token the payload was signed for (default $"+config.EnvBotToken+")")
		raw      = fs.String("init-data", "", "Raw initData string, or pass it as the first argument")
		maxAge   = fs.Duration("max-age", 0, "Reject payloads with an older auth_date, 0 disables")
	)

	return &Command{
		Name:        "verify",
		Description: "Check an initData signature and print the user",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}

			data := *raw
			if data == "" && fs.NArg() > 0 {
				data = fs.Arg(0)
			}
			return runVerify(out, orEnv(*botToken, config.EnvBotToken), data, *maxAge)
		},
	}
}

func runVerify(out io.Writer, botToken, raw string, maxAge time.Duration) error {
	if botToken == "" {
		return fmt.Errorf("bot token is required: pass -bot-token or set %s", config.EnvBotToken)
	}
	if raw == "" {
		return fmt.Errorf("initData is required")
	}

	verifier := initdata.NewVerifier(botToken, initdata.WithMaxAge(maxAge))
	data, err := verifier.Verify(context.Background(), raw)
	if err != nil {
		return fmt.Errorf("invalid initData: %w", err)
	}

	result := VerifyResult{
		Valid:    true,
		AuthDate: data.Get(initdata.AuthDateField),
	}
	if user, err := initdata.ExtractUser(data); err == nil {
		result.User = user
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
