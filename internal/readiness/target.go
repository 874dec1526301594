package readiness

import (
	"fmt"
)

// AuthMode selects how a token is attached to a probe request.
type AuthMode int

const (
	// AuthNone sends no credentials.
	AuthNone AuthMode = iota
	// AuthHeaderBearer sends "Authorization: Bearer <token>".
	AuthHeaderBearer
	// AuthQueryParameter appends "api_key=<token>" to the URL.
	AuthQueryParameter
)

func (m AuthMode) String() string {
	switch m {
	case AuthHeaderBearer:
		return "header-bearer"
	case AuthQueryParameter:
		return "query-parameter"
	default:
		return "none"
	}
}

// Target is one URL the gate waits for.
type Target struct {
	URL    string
	Tenant string
	Group  string

	ExpectedStatus int
	// ExpectStatusSuccessJSON additionally requires a JSON body whose
	// "status" field is "success".
	ExpectStatusSuccessJSON bool

	AuthMode AuthMode
	// AuthToken is only sent when HasAuthToken is set.
	AuthToken    string
	HasAuthToken bool
}

func (t Target) String() string {
	return fmt.Sprintf("%s (tenant %s)", t.URL, t.Tenant)
}

// Group is a set of targets probed together.
type Group struct {
	Name    string
	Targets []Target
}

// TokenSource looks up the API token of a tenant.
type TokenSource interface {
	Token(tenant string) (string, bool)
}

// Group names, in the order the gate waits for them.
const (
	GroupDataAPI = "data-api"
	GroupDDAPI   = "dd-api"
	GroupUI      = "ui"
)

// Groups returns the endpoint groups of an instance. tenants are the user
// tenants; systemTenant is added where the system tenant serves traffic.
func Groups(dnsName string, tenants []string, systemTenant string, tokens TokenSource) []Group {
	withSystem := append(append([]string{}, tenants...), systemTenant)

	return []Group{
		{Name: GroupDataAPI, Targets: dataAPITargets(dnsName, withSystem, tokens)},
		{Name: GroupDDAPI, Targets: ddAPITargets(dnsName, tenants, tokens)},
		{Name: GroupUI, Targets: uiTargets(dnsName, withSystem)},
	}
}

func dataAPITargets(dnsName string, tenants []string, tokens TokenSource) []Target {
	out := make([]Target, 0, 2*len(tenants))
	for _, tenant := range tenants {
		for _, url := range []string{
			fmt.Sprintf("https://cortex.%s.%s/api/v1/labels", tenant, dnsName),
			fmt.Sprintf("https://loki.%s.%s/loki/api/v1/labels", tenant, dnsName),
		} {
			t := Target{
				URL:                     url,
				Tenant:                  tenant,
				Group:                   GroupDataAPI,
				ExpectedStatus:          200,
				ExpectStatusSuccessJSON: true,
				AuthMode:                AuthHeaderBearer,
			}
			t.AuthToken, t.HasAuthToken = lookup(tokens, tenant)
			out = append(out, t)
		}
	}
	return out
}

func ddAPITargets(dnsName string, tenants []string, tokens TokenSource) []Target {
	out := make([]Target, 0, len(tenants))
	for _, tenant := range tenants {
		// GET on the series endpoint is rejected with 405 once the API is up.
		t := Target{
			URL:            fmt.Sprintf("https://dd.%s.%s/api/v1/series", tenant, dnsName),
			Tenant:         tenant,
			Group:          GroupDDAPI,
			ExpectedStatus: 405,
			AuthMode:       AuthQueryParameter,
		}
		t.AuthToken, t.HasAuthToken = lookup(tokens, tenant)
		out = append(out, t)
	}
	return out
}

func uiTargets(dnsName string, tenants []string) []Target {
	out := make([]Target, 0, len(tenants))
	for _, tenant := range tenants {
		out = append(out, Target{
			URL:            fmt.Sprintf("https://%s.%s/", tenant, dnsName),
			Tenant:         tenant,
			Group:          GroupUI,
			ExpectedStatus: 200,
			AuthMode:       AuthNone,
		})
	}
	return out
}

func lookup(tokens TokenSource, tenant string) (string, bool) {
	if tokens == nil {
		return "", false
	}
	return tokens.Token(tenant)
}
