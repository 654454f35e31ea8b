package cli

import (
	"errors"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/spf13/cobra"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

var (
	bqKey     string
	bqSubject string
	bqProject string
)

// bigqueryOptions are appended to the BigQuery client options. Tests point
// the client at a local server through it.
var bigqueryOptions []option.ClientOption

var bigqueryCmd = &cobra.Command{
	Use:   "bigquery",
	Short: "BigQuery helpers",
	Long: `BigQuery has no client wrapper. These commands obtain raw credentials and
hand them to the cloud.google.com/go/bigquery client.`,
}

var bigqueryDatasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List datasets in a project",
	Args:  cobra.NoArgs,
	RunE:  runBigQueryDatasets,
}

func init() {
	bigqueryDatasetsCmd.Flags().StringVarP(&bqKey, "key", "k", "", "service-account key file")
	bigqueryDatasetsCmd.Flags().StringVarP(&bqSubject, "subject", "s", "", "user to impersonate")
	bigqueryDatasetsCmd.Flags().StringVarP(&bqProject, "project", "p", "",
		"project ID (default: the key's project)")
	bigqueryCmd.AddCommand(bigqueryDatasetsCmd)
	rootCmd.AddCommand(bigqueryCmd)
}

func runBigQueryDatasets(cmd *cobra.Command, _ []string) error {
	key, subject, err := serviceAccountArgs(bqKey, bqSubject)
	if err != nil {
		return err
	}

	factory, done, err := newFactory(cmd)
	if err != nil {
		return err
	}
	defer done()

	ctx := cmd.Context()
	creds, err := factory.BigQueryCredentials(ctx, key, subject)
	if err != nil {
		return err
	}

	project := bqProject
	if project == "" {
		project = creds.ProjectID
	}
	if project == "" {
		return errors.New("no project ID in key file, pass --project")
	}

	opts := append([]option.ClientOption{option.WithCredentials(creds)}, bigqueryOptions...)
	client, err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		return fmt.Errorf("create bigquery client: %w", err)
	}
	defer client.Close()

	it := client.Datasets(ctx)
	count := 0
	for {
		ds, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("list datasets: %w", err)
		}
		cmd.Println(ds.DatasetID)
		count++
	}
	if count == 0 {
		cmd.Printf("No datasets in %s.\n", project)
	}
	return nil
}
