package google

import (
	"context"
	"fmt"
	"slices"

	"google.golang.org/api/option"

	"github.com/custodia-labs/googlewrapper/internal/core/domain"
)

// Scope URIs requested per endpoint.
const (
	scopeWebmastersReadonly = "https://www.googleapis.com/auth/webmasters.readonly"
	scopeAnalyticsReadonly  = "https://www.googleapis.com/auth/analytics.readonly"
	scopeCalendar           = "https://www.googleapis.com/auth/calendar"
	scopeDrive              = "https://www.googleapis.com/auth/drive"
	scopeDriveReadonly      = "https://www.googleapis.com/auth/drive.readonly"
	scopeSpreadsheets       = "https://www.googleapis.com/auth/spreadsheets"
	scopeBigQuery           = "https://www.googleapis.com/auth/bigquery"
	scopeMail               = "https://mail.google.com/"
)

// serviceConstructor builds a client-library service from client options.
type serviceConstructor func(ctx context.Context, opts ...option.ClientOption) (any, error)

// APISpec is one row of the endpoint registry.
type APISpec struct {
	// Endpoint is the registry key.
	Endpoint domain.Endpoint
	// Scopes is the ordered scope set requested from the identity provider.
	Scopes []string
	// API is the client library's API name (e.g. "analyticsreporting").
	API string
	// Version is the client library's API version (e.g. "v4").
	Version string

	build serviceConstructor
}

// CredentialOnly returns true if no service wrapper exists for the endpoint.
func (s APISpec) CredentialOnly() bool {
	return s.build == nil
}

var registry = map[domain.Endpoint]APISpec{
	domain.EndpointSearchConsole: {
		Scopes:  []string{scopeWebmastersReadonly},
		API:     "searchconsole",
		Version: "v1",
		build:   newSearchConsoleService,
	},
	domain.EndpointAnalytics: {
		Scopes:  []string{scopeAnalyticsReadonly},
		API:     "analyticsreporting",
		Version: "v4",
		build:   newAnalyticsService,
	},
	domain.EndpointCalendar: {
		Scopes:  []string{scopeCalendar},
		API:     "calendar",
		Version: "v3",
		build:   newCalendarService,
	},
	domain.EndpointSheets: {
		Scopes:  []string{scopeDrive, scopeSpreadsheets},
		API:     "sheets",
		Version: "v4",
		build:   newSheetsService,
	},
	domain.EndpointBigQuery: {
		Scopes:  []string{scopeBigQuery},
		API:     "bigquery",
		Version: "v2",
	},
	domain.EndpointGmail: {
		Scopes:  []string{scopeMail},
		API:     "gmail",
		Version: "v1",
		build:   newGmailService,
	},
	domain.EndpointDrive: {
		Scopes:  []string{scopeDriveReadonly},
		API:     "drive",
		Version: "v3",
		build:   newDriveService,
	},
	domain.EndpointDocs: {
		Scopes:  []string{scopeDriveReadonly},
		API:     "docs",
		Version: "v1",
		build:   newDocsService,
	},
}

// Lookup returns the registry row for e. The returned scope slice is a copy.
func Lookup(e domain.Endpoint) (APISpec, error) {
	spec, ok := registry[e]
	if !ok {
		return APISpec{}, fmt.Errorf("%w: %w: %q", domain.ErrClientBuild, domain.ErrUnsupportedEndpoint, string(e))
	}
	spec.Endpoint = e
	spec.Scopes = slices.Clone(spec.Scopes)
	return spec, nil
}

// Scopes returns a copy of the scope set for e, or nil if e is unknown.
func Scopes(e domain.Endpoint) []string {
	spec, err := Lookup(e)
	if err != nil {
		return nil
	}
	return spec.Scopes
}

// Specs returns every registry row in domain.AllEndpoints order.
func Specs() []APISpec {
	endpoints := domain.AllEndpoints()
	specs := make([]APISpec, 0, len(endpoints))
	for _, e := range endpoints {
		spec, err := Lookup(e)
		if err != nil {
			continue
		}
		specs = append(specs, spec)
	}
	return specs
}
