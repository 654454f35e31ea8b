package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the credential directory",
	Long: `Create the credential directory if it does not exist and write a default
settings file when none is present. Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	factory, done, err := newFactory(cmd)
	if err != nil {
		return err
	}
	defer done()

	if err := factory.EnsureCredentialDirectory(); err != nil {
		return err
	}
	cmd.Printf("Credential directory: %s\n", factory.CredentialsDir())

	_, err = os.Stat(settingsStore.Path())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := settingsStore.Save(settings); err != nil {
			return fmt.Errorf("write settings: %w", err)
		}
		cmd.Printf("Settings written: %s\n", settingsStore.Path())
	case err != nil:
		return fmt.Errorf("stat settings: %w", err)
	default:
		cmd.Printf("Settings file: %s\n", settingsStore.Path())
	}
	return nil
}
