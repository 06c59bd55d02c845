package uaa

import (
	"context"
	"net/url"
	"strings"

	"cfuaa/internal/metrics"
	"cfuaa/pkg/logging"
)

// OrganizationsPath lists the organizations visible to the token holder.
const OrganizationsPath = "/v2/organizations"

var scimQuote = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Resolver looks up identities and organization memberships.
type Resolver struct {
	client    *Client
	endpoints Endpoints
}

// NewResolver creates a Resolver.
func NewResolver(client *Client, endpoints Endpoints) *Resolver {
	return &Resolver{client: client, endpoints: endpoints}
}

// ResolveUserID finds the id of the user called userName. Anything other
// than exactly one match is a *UserLookupError.
func (r *Resolver) ResolveUserID(ctx context.Context, userName string, token *AccessToken) (string, error) {
	query := url.Values{
		"attributes": {"id"},
		"filter":     {`userName eq "` + scimQuote.Replace(userName) + `"`},
	}

	var results SearchResults[UserID]
	if err := r.client.GetJSON(ctx, r.endpoints.uaaURL("/Users/"), token, query, &results); err != nil {
		return "", err
	}
	if results.TotalResults != 1 || len(results.Resources) == 0 || results.Resources[0].ID == "" {
		logging.Debug("UAA", "user %q matched %d users", userName, results.TotalResults)
		return "", &UserLookupError{UserName: userName, Matches: results.TotalResults}
	}
	return results.Resources[0].ID, nil
}

// FetchUserProfile reads the profile of the token's user from /userinfo.
func (r *Resolver) FetchUserProfile(ctx context.Context, token *AccessToken) (*UserProfile, error) {
	var profile UserProfile
	if err := r.client.GetJSON(ctx, r.endpoints.uaaURL("/userinfo"), token, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// FetchOrganizations reads the first page of the organization listing at
// path on the cloud controller and returns the names of the active ones in
// provider order. Further pages are not fetched.
func (r *Resolver) FetchOrganizations(ctx context.Context, path string, token *AccessToken) (*Organizations, error) {
	var page Resources[Organization]
	if err := r.client.GetJSON(ctx, r.endpoints.apiURL(path), token, nil, &page); err != nil {
		return nil, err
	}

	orgs := &Organizations{
		Names:        make([]string, 0, len(page.Resources)),
		TotalResults: page.TotalResults,
		TotalPages:   page.TotalPages,
	}
	for _, res := range page.Resources {
		if res.Entity.Status == OrganizationActive {
			orgs.Names = append(orgs.Names, res.Entity.Name)
		}
	}

	if orgs.Truncated() {
		metrics.TruncatedListings.Inc()
		logging.Warn("UAA", "%s returned %d pages, only the first %d of %d organizations were used",
			path, page.TotalPages, len(page.Resources), page.TotalResults)
	}
	return orgs, nil
}

// UserOrganizations lists the organizations userID belongs to.
func (r *Resolver) UserOrganizations(ctx context.Context, userID string, token *AccessToken) (*Organizations, error) {
	return r.FetchOrganizations(ctx, "/v2/users/"+url.PathEscape(userID)+"/organizations", token)
}

// OwnOrganizations lists the organizations visible to the token holder.
func (r *Resolver) OwnOrganizations(ctx context.Context, token *AccessToken) (*Organizations, error) {
	return r.FetchOrganizations(ctx, OrganizationsPath, token)
}
