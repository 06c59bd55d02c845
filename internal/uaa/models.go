package uaa

// UserProfile is the body of the UAA /userinfo endpoint.
type UserProfile struct {
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Name       string `json:"name"`
}

// FullName returns Name, falling back to the given and family names.
func (p *UserProfile) FullName() string {
	if p.Name != "" {
		return p.Name
	}
	switch {
	case p.GivenName != "" && p.FamilyName != "":
		return p.GivenName + " " + p.FamilyName
	case p.GivenName != "":
		return p.GivenName
	default:
		return p.FamilyName
	}
}

// Metadata is the cloud controller v2 resource metadata block.
type Metadata struct {
	GUID      string `json:"guid"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Resource is one entry of a cloud controller v2 listing.
type Resource[T any] struct {
	Metadata Metadata `json:"metadata"`
	Entity   T        `json:"entity"`
}

// Resources is a page of a cloud controller v2 listing.
type Resources[T any] struct {
	TotalResults int           `json:"total_results"`
	TotalPages   int           `json:"total_pages"`
	PrevURL      string        `json:"prev_url"`
	NextURL      string        `json:"next_url"`
	Resources    []Resource[T] `json:"resources"`
}

// Organization is a cloud controller v2 organization entity.
type Organization struct {
	Name                string `json:"name"`
	BillingEnabled      bool   `json:"billing_enabled"`
	QuotaDefinitionGUID string `json:"quota_definition_guid"`
	Status              string `json:"status"`
	QuotaDefinitionURL  string `json:"quota_definition_url"`
	SpacesURL           string `json:"spaces_url"`
	DomainsURL          string `json:"domains_url"`
	UsersURL            string `json:"users_url"`
	ManagersURL         string `json:"managers_url"`
}

// OrganizationActive is the status of an organization that grants access.
const OrganizationActive = "active"

// SearchResults is a SCIM list response from UAA.
type SearchResults[T any] struct {
	Resources    []T      `json:"resources"`
	StartIndex   int      `json:"startIndex"`
	ItemsPerPage int      `json:"itemsPerPage"`
	TotalResults int      `json:"totalResults"`
	Schemas      []string `json:"schemas"`
}

// UserID is the SCIM user projection requested with attributes=id.
type UserID struct {
	ID string `json:"id"`
}

// Organizations is the result of an organization listing. Only the first
// page is ever read; Truncated reports when the provider had more.
type Organizations struct {
	Names        []string
	TotalResults int
	TotalPages   int
}

// Truncated reports whether organizations beyond the first page were dropped.
func (o *Organizations) Truncated() bool {
	return o.TotalPages > 1
}
