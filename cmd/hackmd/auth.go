// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pdiddy/hackmd-cli/internal/api"
	"github.com/pdiddy/hackmd-cli/internal/profile"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with the HackMD API",
	Long: `Login stores an API token in a named credential profile and marks that
profile active. The token is verified against the API afterwards; a failed
verification is reported but does not undo the login.

Get your API token from: https://hackmd.io/settings#api`,
	RunE: runAuthLogin,
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	token, _ := cmd.Flags().GetString("token")
	profileName, _ := cmd.Flags().GetString("profile")

	if token == "" {
		fmt.Println("HackMD CLI - Authentication")
		fmt.Println(strings.Repeat("-", 40))
		fmt.Fprint(os.Stderr, "Enter your HackMD API token: ")

		var err error
		token, err = readToken(os.Stdin)
		if err != nil {
			return err
		}
	}

	store := configStore()
	if err := store.Login(token, profileName); err != nil {
		if errors.Is(err, profile.ErrEmptyToken) {
			return fmt.Errorf("token cannot be empty")
		}
		return err
	}

	fmt.Println("✓ Authentication successful")
	fmt.Printf("✓ Token saved to profile '%s'\n", profileName)

	// Best-effort verification; the login is already persisted.
	verifyToken(profile.Credential{APIToken: token, APIBaseURL: profile.DefaultBaseURL})
	return nil
}

// readToken reads the API token from in. On a terminal the input is read
// with echo disabled so the secret never shows on screen; piped input
// falls back to a plain line read.
func readToken(in *os.File) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		defer fmt.Fprintln(os.Stderr)
		secret, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return string(secret), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	RunE:  runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	store := configStore()

	name, masked, err := store.Status()
	if err != nil {
		if errors.Is(err, profile.ErrNotAuthenticated) {
			return fmt.Errorf("not authenticated. Run: hackmd auth login")
		}
		return err
	}

	fmt.Println("✓ Authenticated")
	fmt.Printf("  Active profile: %s\n", name)
	fmt.Printf("  Token: %s\n", masked)

	if cred, err := store.ResolveActive(); err == nil && cred != nil {
		verifyToken(*cred)
	}
	return nil
}

// verifyToken calls GET /me for user feedback only. Any failure is a
// warning: invalid tokens, odd statuses, and transport errors all leave
// the stored login untouched.
func verifyToken(cred profile.Credential) {
	client := api.NewClient(cred, clientConfig())

	user, err := client.Me(context.Background())
	if err == nil {
		name := user.Name
		if name == "" {
			name = "Unknown"
		}
		fmt.Printf("\n✓ Logged in as: %s\n", name)
		fmt.Printf("  Email: %s\n", displayName(user.Email))
		return
	}

	var remote *api.RemoteError
	if errors.As(err, &remote) {
		if remote.Unauthorized() {
			fmt.Fprintln(os.Stderr, "\n✗ Error: Invalid token")
		} else {
			fmt.Fprintf(os.Stderr, "\n⚠ Warning: Unexpected response (%d)\n", remote.Status)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "\n⚠ Could not verify token: %v\n", err)
}

func displayName(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func init() {
	authLoginCmd.Flags().String("token", "", "API token (will prompt if not provided)")
	authLoginCmd.Flags().String("profile", "default", "profile name")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
