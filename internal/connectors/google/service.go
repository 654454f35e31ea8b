package google

import (
	"context"
	"fmt"

	analyticsreporting "google.golang.org/api/analyticsreporting/v4"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/searchconsole/v1"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
)

func newSearchConsoleService(ctx context.Context, opts ...option.ClientOption) (any, error) {
	return searchconsole.NewService(ctx, opts...)
}

func newAnalyticsService(ctx context.Context, opts ...option.ClientOption) (any, error) {
	return analyticsreporting.NewService(ctx, opts...)
}

func newCalendarService(ctx context.Context, opts ...option.ClientOption) (any, error) {
	return calendar.NewService(ctx, opts...)
}

func newSheetsService(ctx context.Context, opts ...option.ClientOption) (any, error) {
	return sheets.NewService(ctx, opts...)
}

func newGmailService(ctx context.Context, opts ...option.ClientOption) (any, error) {
	return gmail.NewService(ctx, opts...)
}

func newDriveService(ctx context.Context, opts ...option.ClientOption) (any, error) {
	return drive.NewService(ctx, opts...)
}

func newDocsService(ctx context.Context, opts ...option.ClientOption) (any, error) {
	return docs.NewService(ctx, opts...)
}

// SearchConsole builds a Search Console v1 service impersonating subject.
func (f *CredentialFactory) SearchConsole(ctx context.Context, keyPath, subject string) (*searchconsole.Service, error) {
	return buildAs[*searchconsole.Service](ctx, f, domain.EndpointSearchConsole, keyPath, subject)
}

// Analytics builds an Analytics Reporting v4 service impersonating subject.
func (f *CredentialFactory) Analytics(ctx context.Context, keyPath, subject string) (*analyticsreporting.Service, error) {
	return buildAs[*analyticsreporting.Service](ctx, f, domain.EndpointAnalytics, keyPath, subject)
}

// Calendar builds a Calendar v3 service impersonating subject.
func (f *CredentialFactory) Calendar(ctx context.Context, keyPath, subject string) (*calendar.Service, error) {
	return buildAs[*calendar.Service](ctx, f, domain.EndpointCalendar, keyPath, subject)
}

// Sheets builds a Sheets v4 service impersonating subject.
func (f *CredentialFactory) Sheets(ctx context.Context, keyPath, subject string) (*sheets.Service, error) {
	return buildAs[*sheets.Service](ctx, f, domain.EndpointSheets, keyPath, subject)
}

// Gmail builds a Gmail v1 service impersonating subject.
func (f *CredentialFactory) Gmail(ctx context.Context, keyPath, subject string) (*gmail.Service, error) {
	return buildAs[*gmail.Service](ctx, f, domain.EndpointGmail, keyPath, subject)
}

// Drive builds a read-only Drive v3 service impersonating subject.
func (f *CredentialFactory) Drive(ctx context.Context, keyPath, subject string) (*drive.Service, error) {
	return buildAs[*drive.Service](ctx, f, domain.EndpointDrive, keyPath, subject)
}

// Docs builds a Docs v1 service impersonating subject.
func (f *CredentialFactory) Docs(ctx context.Context, keyPath, subject string) (*docs.Service, error) {
	return buildAs[*docs.Service](ctx, f, domain.EndpointDocs, keyPath, subject)
}

func buildAs[T any](ctx context.Context, f *CredentialFactory, e domain.Endpoint, keyPath, subject string) (T, error) {
	var zero T
	client, err := f.BuildClient(ctx, e, keyPath, subject)
	if err != nil {
		return zero, err
	}
	svc, ok := client.Service.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected service type %T for %s", domain.ErrClientBuild, client.Service, e)
	}
	return svc, nil
}
