// Package google builds authenticated Google API clients from
// service-account credentials.
//
// The package is a registry plus a factory:
//   - The registry maps each domain.Endpoint to its fixed OAuth scope set
//     and the (API name, version) pair of its client library
//   - CredentialFactory loads a service-account key, impersonates a subject
//     and returns a ready-to-use service handle
//   - BigQuery is credential-only: BigQueryCredentials returns the raw
//     credentials and callers build their own BigQuery client
//   - InteractiveSheets runs a local OAuth flow instead of impersonation and
//     caches the resulting token through a driven.TokenStore
//
// # Usage
//
//	f := google.NewCredentialFactory(google.WithCredentialsDir("credentials"))
//	if err := f.EnsureCredentialDirectory(); err != nil {
//		return err
//	}
//	svc, err := f.Calendar(ctx, "sa.json", "user@example.com")
//
// # Errors
//
// Authentication failures match domain.ErrCredential. Failures to construct
// the API client match domain.ErrClientBuild. Nothing is retried.
package google
