package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
)

var (
	connectKey     string
	connectSubject string
)

var connectCmd = &cobra.Command{
	Use:   "connect <endpoint>",
	Short: "Build an authenticated client for an endpoint",
	Long: `Load the service-account key, impersonate the subject and build a client
for the endpoint. With verification on (the default) an access token is
fetched immediately, so an unauthorised subject is reported here.

Examples:
  googlewrapper connect sheets --key sa.json --subject reports@example.com
  googlewrapper connect gsc --key sa.json --subject seo@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runConnect,
}

func init() {
	connectCmd.Flags().StringVarP(&connectKey, "key", "k", "", "service-account key file")
	connectCmd.Flags().StringVarP(&connectSubject, "subject", "s", "", "user to impersonate")
	rootCmd.AddCommand(connectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	endpoint, err := domain.ParseEndpoint(args[0])
	if err != nil {
		return err
	}
	key, subject, err := serviceAccountArgs(connectKey, connectSubject)
	if err != nil {
		return err
	}

	factory, done, err := newFactory(cmd)
	if err != nil {
		return err
	}
	defer done()

	client, err := factory.BuildClient(cmd.Context(), endpoint, key, subject)
	if err != nil {
		return fmt.Errorf("connect %s: %w", endpoint, err)
	}

	who := subject
	if who == "" {
		who = "(service account)"
	}
	cmd.Printf("Connected to %s: %s %s as %s\n", client.Endpoint, client.API, client.Version, who)
	return nil
}
