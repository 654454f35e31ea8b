package domain

import (
	"fmt"
	"strings"
)

// Endpoint identifies a supported Google API.
type Endpoint string

const (
	// EndpointSearchConsole is the Google Search Console API.
	EndpointSearchConsole Endpoint = "searchconsole"
	// EndpointAnalytics is the Google Analytics Reporting API.
	EndpointAnalytics Endpoint = "analytics"
	// EndpointCalendar is the Google Calendar API.
	EndpointCalendar Endpoint = "calendar"
	// EndpointSheets is the Google Sheets API.
	EndpointSheets Endpoint = "sheets"
	// EndpointBigQuery is BigQuery. It is credential-only: no client wrapper is built.
	EndpointBigQuery Endpoint = "bigquery"
	// EndpointGmail is the Gmail API.
	EndpointGmail Endpoint = "gmail"
	// EndpointDrive is the Google Drive API.
	EndpointDrive Endpoint = "drive"
	// EndpointDocs is the Google Docs API.
	EndpointDocs Endpoint = "docs"
)

// AllEndpoints lists every supported endpoint in display order.
func AllEndpoints() []Endpoint {
	return []Endpoint{
		EndpointSearchConsole,
		EndpointAnalytics,
		EndpointCalendar,
		EndpointSheets,
		EndpointBigQuery,
		EndpointGmail,
		EndpointDrive,
		EndpointDocs,
	}
}

// endpointAliases maps the short method names used by older tooling.
var endpointAliases = map[string]Endpoint{
	"gsc": EndpointSearchConsole,
	"ga":  EndpointAnalytics,
	"cal": EndpointCalendar,
	"gbq": EndpointBigQuery,
}

// String returns the endpoint identifier.
func (e Endpoint) String() string {
	return string(e)
}

// IsValid returns true if e is one of the declared endpoints.
func (e Endpoint) IsValid() bool {
	for _, known := range AllEndpoints() {
		if e == known {
			return true
		}
	}
	return false
}

// ParseEndpoint converts user input (case-insensitive, aliases allowed) to an Endpoint.
func ParseEndpoint(s string) (Endpoint, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := endpointAliases[name]; ok {
		return alias, nil
	}
	e := Endpoint(name)
	if !e.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEndpoint, s)
	}
	return e, nil
}
