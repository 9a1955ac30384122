package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/satelink/econledger/internal/domain"
	"github.com/satelink/econledger/internal/infrastructure/auth"
)

// errCheckFailed marks a ledger check that ran but did not pass.
var errCheckFailed = errors.New("check failed")

type apiClient struct {
	baseURL string
	token   string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	client := &apiClient{}

	rootCmd := &cobra.Command{
		Use:           "econledger-cli",
		Short:         "econledger CLI tool",
		Long:          `A command line interface for inspecting and verifying the econledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&client.baseURL, "url", "http://localhost:8080", "Base URL of the econledger API")
	rootCmd.PersistentFlags().StringVar(&client.token, "token", os.Getenv("ECONLEDGER_TOKEN"), "Bearer token for the API")
	rootCmd.PersistentFlags().DurationVar(&client.timeout, "timeout", 10*time.Second, "Request timeout")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger-wide checks",
	}
	ledgerCmd.AddCommand(
		checkCmd(client, "verify", "Walk the hash chain from genesis", "/api/v1/ledger/chain/verify"),
		checkCmd(client, "consistency", "Check that total debits equal total credits", "/api/v1/ledger/consistency"),
		checkCmd(client, "reconcile", "Compare cached balances with their entries", "/api/v1/ledger/reconcile"),
	)

	rootCmd.AddCommand(
		ledgerCmd,
		getCmd(client, "balance <account_key>", "Show an account's cached balance", "/api/v1/accounts/%s/balance"),
		getCmd(client, "account <account_key>", "Show an account", "/api/v1/accounts/%s"),
		alertsCmd(client),
		tokenCmd(),
	)

	return rootCmd
}

// checkCmd runs a ledger check. The report is printed either way and a
// failing check exits non-zero.
func checkCmd(client *apiClient, use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := client.get(cmd.Context(), path)
			if err != nil {
				return err
			}

			switch status {
			case http.StatusOK:
				printJSON(cmd.OutOrStdout(), body)
				return nil
			case http.StatusConflict:
				printJSON(cmd.OutOrStdout(), body)
				return fmt.Errorf("%s: %w", use, errCheckFailed)
			default:
				return apiError(status, body)
			}
		},
	}
}

func getCmd(client *apiClient, use, short, pathFormat string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := client.get(cmd.Context(), fmt.Sprintf(pathFormat, url.PathEscape(args[0])))
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return apiError(status, body)
			}

			printJSON(cmd.OutOrStdout(), body)
			return nil
		},
	}
}

func alertsCmd(client *apiClient) *cobra.Command {
	var category string
	var limit int

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List security alerts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if category != "" {
				query.Set("category", category)
			}
			query.Set("limit", fmt.Sprint(limit))

			status, body, err := client.get(cmd.Context(), "/api/v1/alerts?"+query.Encode())
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return apiError(status, body)
			}

			printJSON(cmd.OutOrStdout(), body)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Filter by category (abuse, auth, infra)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of alerts")

	return cmd
}

// tokenCmd issues API tokens signed with the server's JWT secret.
func tokenCmd() *cobra.Command {
	var secret, subject, role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret or JWT_SECRET is required")
			}

			r := domain.Role(role)
			if r != domain.RoleAdmin && r != domain.RoleOperator && r != domain.RoleViewer {
				return fmt.Errorf("unknown role %q", role)
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(domain.Principal{Subject: subject, Role: r})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "JWT signing secret")
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleViewer), "Role (admin, operator, viewer)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func (c *apiClient) get(ctx context.Context, path string) (int, []byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

func apiError(status int, body []byte) error {
	var resp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		if resp.Message != "" {
			return fmt.Errorf("api error (%d): %s: %s", status, resp.Error, resp.Message)
		}
		return fmt.Errorf("api error (%d): %s", status, resp.Error)
	}
	return fmt.Errorf("api error (%d): %s", status, truncate(string(body), 200))
}

// printJSON re-indents a JSON body. Non-JSON bodies are printed as is.
func printJSON(w io.Writer, body []byte) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Fprintln(w, string(body))
		return
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
