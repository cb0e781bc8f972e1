package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	sfrest "github.com/natserract/sfrest/pkg/salesforce/rest"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with a username and password",
	Long: `Log in with the OAuth username-password flow and save the access token.

The password is the user's password followed by their security token.
--username and --password fall back to SF_USERNAME and SF_PASSWORD.`,
	Args: cobra.NoArgs,
	RunE: withApp(runLogin),
}

var authorizeURLCmd = &cobra.Command{
	Use:   "authorize-url",
	Short: "Print the URL that starts the authorization-code flow",
	Args:  cobra.NoArgs,
	RunE:  withApp(runAuthorizeURL),
}

var authorizeConfirmCmd = &cobra.Command{
	Use:   "authorize-confirm",
	Short: "Exchange an authorization code for an access token",
	Args:  cobra.NoArgs,
	RunE:  withApp(runAuthorizeConfirm),
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the saved access token",
	Args:  cobra.NoArgs,
	RunE:  withApp(runRefresh),
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show the saved access token metadata",
	Args:  cobra.NoArgs,
	RunE:  withApp(runToken),
}

func init() {
	loginCmd.Flags().String("username", "", "Salesforce username")
	loginCmd.Flags().String("password", "", "password followed by the security token")

	authorizeURLCmd.Flags().String("redirect-uri", "", "callback URL registered on the connected app")
	authorizeURLCmd.Flags().String("state", "", "opaque value echoed back to the callback")
	authorizeURLCmd.Flags().Bool("reauthorize", false, "force the login and consent screens")
	_ = authorizeURLCmd.MarkFlagRequired("redirect-uri")

	authorizeConfirmCmd.Flags().String("code", "", "authorization code from the callback")
	authorizeConfirmCmd.Flags().String("redirect-uri", "", "callback URL used to obtain the code")
	_ = authorizeConfirmCmd.MarkFlagRequired("code")
	_ = authorizeConfirmCmd.MarkFlagRequired("redirect-uri")

	rootCmd.AddCommand(loginCmd, authorizeURLCmd, authorizeConfirmCmd, refreshCmd, tokenCmd)
}

// tokenSummary is what the CLI prints about a token. The credentials
// themselves are never printed.
type tokenSummary struct {
	ID           string    `json:"id"`
	APIBaseURL   string    `json:"api_base_url"`
	Scopes       []string  `json:"scopes"`
	IssuedAt     time.Time `json:"issued_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	NeedsRefresh bool      `json:"needs_refresh"`
	CanRefresh   bool      `json:"can_refresh"`
}

func summarize(token *sfrest.AccessToken) tokenSummary {
	return tokenSummary{
		ID:           token.ID,
		APIBaseURL:   token.APIBaseURL,
		Scopes:       token.Scopes,
		IssuedAt:     token.IssuedAt,
		ExpiresAt:    token.ExpiresAt,
		NeedsRefresh: token.NeedsRefresh(),
		CanRefresh:   token.RefreshToken != "",
	}
}

func flagOrEnv(cmd *cobra.Command, flag, env string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return os.Getenv(env)
}

func runLogin(cmd *cobra.Command, _ []string, a *app) error {
	username := flagOrEnv(cmd, "username", "SF_USERNAME")
	password := flagOrEnv(cmd, "password", "SF_PASSWORD")
	if username == "" || password == "" {
		return errors.New("username and password are required")
	}

	token, err := a.client.Login(cmd.Context(), username, password)
	if err != nil {
		return err
	}
	if err := a.client.SaveToken(cmd.Context(), a.store); err != nil {
		return err
	}
	return printJSON(cmd, summarize(token))
}

func runAuthorizeURL(cmd *cobra.Command, _ []string, a *app) error {
	redirectURI, _ := cmd.Flags().GetString("redirect-uri")
	state, _ := cmd.Flags().GetString("state")
	reauthorize, _ := cmd.Flags().GetBool("reauthorize")

	fmt.Fprintln(cmd.OutOrStdout(), a.client.LoginURL(redirectURI, state, reauthorize))
	return nil
}

func runAuthorizeConfirm(cmd *cobra.Command, _ []string, a *app) error {
	code, _ := cmd.Flags().GetString("code")
	redirectURI, _ := cmd.Flags().GetString("redirect-uri")

	token, err := a.client.AuthorizeConfirm(cmd.Context(), code, redirectURI)
	if err != nil {
		return err
	}
	if err := a.client.SaveToken(cmd.Context(), a.store); err != nil {
		return err
	}
	return printJSON(cmd, summarize(token))
}

func runRefresh(cmd *cobra.Command, _ []string, a *app) error {
	if _, err := a.client.RestoreToken(cmd.Context(), a.store); err != nil {
		return err
	}
	token, err := a.client.RefreshToken(cmd.Context())
	if err != nil {
		return err
	}
	if err := a.client.SaveToken(cmd.Context(), a.store); err != nil {
		return err
	}
	return printJSON(cmd, summarize(token))
}

func runToken(cmd *cobra.Command, _ []string, a *app) error {
	token, err := a.client.RestoreToken(cmd.Context(), a.store)
	if err != nil {
		return err
	}
	return printJSON(cmd, summarize(token))
}
