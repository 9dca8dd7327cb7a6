package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"healthdash/internal/auth"
	"healthdash/internal/config"
	"healthdash/internal/store"
)

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Connect your Fitbit account",
		Long: `Open the Fitbit consent page and store the resulting tokens.

A local server listens on the configured redirect URL while you approve
access (http://localhost:8089/callback unless fitbit.redirect_url or
HEALTHDASH_FITBIT_REDIRECT_URI says otherwise). Register the same URL as
the redirect URI of your Fitbit app.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateCredentials(); err != nil {
				return a.explainMissingCredentials(err)
			}
			oauthCfg, err := a.oauthConfig()
			if err != nil {
				return err
			}
			db, err := a.store()
			if err != nil {
				return err
			}

			result, err := auth.Authenticate(cmd.Context(), oauthCfg, a.out)
			if err != nil {
				return fmt.Errorf("authentication: %w", err)
			}
			if err := db.SaveAuth(auth.AuthFromResult(result)); err != nil {
				return fmt.Errorf("saving auth: %w", err)
			}

			good.Fprintf(a.out, "Connected Fitbit user %s\n", result.FitbitUserID)
			faint.Fprintln(a.out, "Run `healthdash sync` to pull your data.")
			return nil
		},
	}
}

// explainMissingCredentials writes an example config on first run so there is
// something to edit
func (a *app) explainMissingCredentials(cause error) error {
	if _, err := config.Load(); errors.Is(err, config.ErrNoConfig) {
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
	}
	dir, _ := config.GetConfigDir()
	fmt.Fprintf(a.out, "Add your Fitbit API credentials to:\n  %s/config.json\n", dir)
	fmt.Fprintln(a.out, "or set HEALTHDASH_FITBIT_CLIENT_ID and HEALTHDASH_FITBIT_CLIENT_SECRET.")
	faint.Fprintln(a.out, "Create an app at https://dev.fitbit.com/apps")
	return cause
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored Fitbit tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.store()
			if err != nil {
				return err
			}
			existing, err := db.GetAuth()
			if errors.Is(err, store.ErrNoAuth) {
				fmt.Fprintln(a.out, "Not connected.")
				return nil
			}
			if err != nil {
				return err
			}
			if err := db.DeleteAuth(); err != nil {
				return fmt.Errorf("deleting auth: %w", err)
			}
			fmt.Fprintf(a.out, "Disconnected Fitbit user %s (token was valid until %s)\n",
				existing.FitbitUserID, humanize.Time(existing.ExpiresAt))
			return nil
		},
	}
}
