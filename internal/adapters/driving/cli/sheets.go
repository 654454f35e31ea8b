package cli

import (
	"github.com/spf13/cobra"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Sheets user authorisation",
}

var sheetsLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authorise Sheets access as a user",
	Long: `Run the OAuth authorisation-code flow in a browser using the client secret
in the credential directory (client_secret.json) and cache the resulting
token there. A cached token is reused without opening a browser.`,
	Args: cobra.NoArgs,
	RunE: runSheetsLogin,
}

var sheetsLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the cached Sheets token",
	Args:  cobra.NoArgs,
	RunE:  runSheetsLogout,
}

func init() {
	sheetsCmd.AddCommand(sheetsLoginCmd)
	sheetsCmd.AddCommand(sheetsLogoutCmd)
	rootCmd.AddCommand(sheetsCmd)
}

func runSheetsLogin(cmd *cobra.Command, _ []string) error {
	factory, done, err := newFactory(cmd)
	if err != nil {
		return err
	}
	defer done()

	if err := factory.EnsureCredentialDirectory(); err != nil {
		return err
	}
	if _, err := factory.InteractiveSheets(cmd.Context()); err != nil {
		return err
	}
	cmd.Printf("Sheets authorised. Token cached in %s\n", factory.CredentialsDir())
	return nil
}

func runSheetsLogout(cmd *cobra.Command, _ []string) error {
	factory, done, err := newFactory(cmd)
	if err != nil {
		return err
	}
	defer done()

	if err := factory.SignOutSheets(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Sheets token removed.")
	return nil
}
