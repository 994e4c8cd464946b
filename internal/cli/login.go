package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/socialcli/internal/config"
	"github.com/example/socialcli/internal/wire"
)

var loginCmd = &cobra.Command{
	Use:   "login [provider]",
	Short: "Store credentials for a provider",
	Long: `Save provider credentials to the config file. With no argument the
default provider from the config is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accessToken, _ := cmd.Flags().GetString("access-token")
		authorURN, _ := cmd.Flags().GetString("author-urn")
		clientID, _ := cmd.Flags().GetString("client-id")
		clientSecret, _ := cmd.Flags().GetString("client-secret")
		tokenExpiry, _ := cmd.Flags().GetString("token-expiry")
		setDefault, _ := cmd.Flags().GetBool("default")

		cfg := wire.Config()
		name := cfg.DefaultProvider
		if len(args) > 0 {
			name = args[0]
		}

		if accessToken == "" {
			return fmt.Errorf("--access-token is required")
		}

		pc := cfg.Provider(name)
		if pc == nil {
			pc = &config.ProviderConfig{}
		}
		pc.AccessToken = accessToken
		if authorURN != "" {
			pc.AuthorURN = authorURN
		}
		if clientID != "" {
			pc.ClientID = clientID
		}
		if clientSecret != "" {
			pc.ClientSecret = clientSecret
		}
		if tokenExpiry != "" {
			if _, err := time.Parse(time.RFC3339, tokenExpiry); err != nil {
				return fmt.Errorf("invalid --token-expiry (want RFC3339): %w", err)
			}
			pc.TokenExpiry = tokenExpiry
		}
		cfg.SetProvider(name, pc)

		if setDefault {
			cfg.DefaultProvider = name
		}

		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		if err := config.Save(path, cfg); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		fmt.Printf("✓ Saved credentials for %s\n", name)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("access-token", "", "OAuth access token (required)")
	loginCmd.Flags().String("author-urn", "", "Acting account identifier (e.g. urn:li:person:xxxx)")
	loginCmd.Flags().String("client-id", "", "OAuth client ID")
	loginCmd.Flags().String("client-secret", "", "OAuth client secret")
	loginCmd.Flags().String("token-expiry", "", "Access token expiry (RFC3339)")
	loginCmd.Flags().Bool("default", false, "Make this the default provider")
}

func LoginCmd() *cobra.Command {
	return loginCmd
}
