package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/googlewrapper/internal/connectors/google"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Faint(true).Padding(0, 1)
)

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List supported endpoints",
	Long:  `Print every supported endpoint with its API name, version and OAuth scopes.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(renderEndpoints(google.Specs()))
	},
}

func init() {
	rootCmd.AddCommand(endpointsCmd)
}

func renderEndpoints(specs []google.APISpec) string {
	rows := make([][]string, 0, len(specs))
	for _, s := range specs {
		api := s.API
		if s.CredentialOnly() {
			api += " (credentials only)"
		}
		rows = append(rows, []string{s.Endpoint.String(), api, s.Version, strings.Join(s.Scopes, "\n")})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ENDPOINT", "API", "VERSION", "SCOPES").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 3:
				return mutedStyle
			default:
				return cellStyle
			}
		})
	return t.Render()
}
