package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/platinummonkey/launchgate/pkg/api"
)

func newExchangeCommand(out io.Writer) *Command {
	fs := newFlagSet("exchange", out)

	var (
		endpoint = fs.String("url", "http://localhost:8080/telegram-auth", "Token endpoint URL")
		raw      = fs.String("init-data", "", "Raw initData string, or pass it as the first argument")
		timeout  = fs.Duration("timeout", 10*time.Second, "Request timeout")
	)

	return &Command{
		Name:        "exchange",
		Description: "Exchange initData for a token against a running server",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}

			data := *raw
			if data == "" && fs.NArg() > 0 {
				data = fs.Arg(0)
			}

			ctx, cancel := context.WithTimeout(context.Background(), *timeout)
			defer cancel()
			return runExchange(ctx, out, http.DefaultClient, *endpoint, data)
		},
	}
}

func runExchange(ctx context.Context, out io.Writer, client *http.Client, endpoint, initData string) error {
	if initData == "" {
		return fmt.Errorf("initData is required")
	}

	body, err := json.Marshal(api.TokenRequest{InitData: initData})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("exchange failed: %d %s: %s", resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(respBody)))
	}

	var token api.TokenResponse
	if err := json.Unmarshal(respBody, &token); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	_, err = fmt.Fprintln(out, token.Token)
	return err
}
