// Package principal maps a UAA identity and its organizations to the
// authenticated principal the host application authorizes against.
package principal

import (
	"slices"

	"cfuaa/internal/uaa"
)

// Authenticated is granted to every principal.
const Authenticated = "authenticated"

// Principal is an authenticated user. Authorities always start with
// Authenticated, followed by the user's organization names.
type Principal struct {
	Name        string   `json:"name"`
	UserID      string   `json:"userId,omitempty"`
	UserName    string   `json:"userName,omitempty"`
	DisplayName string   `json:"displayName,omitempty"`
	Email       string   `json:"email,omitempty"`
	Authorities []string `json:"authorities"`
}

// Build maps a logged-in user's profile and organizations. The principal is
// named by the profile's email address. Organization names are used
// verbatim; duplicates are dropped and order is kept. An organization named
// "authenticated" collapses into the fixed Authenticated authority.
func Build(profile *uaa.UserProfile, orgNames []string) *Principal {
	return &Principal{
		Name:        profile.Email,
		UserID:      profile.UserID,
		UserName:    profile.UserName,
		DisplayName: profile.FullName(),
		Email:       profile.Email,
		Authorities: authorities(orgNames),
	}
}

// ForUser maps a user found by user name, for hosts that look users up
// without a browser login.
func ForUser(userName string, orgNames []string) *Principal {
	return &Principal{
		Name:        userName,
		UserName:    userName,
		Authorities: authorities(orgNames),
	}
}

// HasAuthority reports whether p was granted authority.
func (p *Principal) HasAuthority(authority string) bool {
	return slices.Contains(p.Authorities, authority)
}

// Organizations returns the authorities that came from organizations.
func (p *Principal) Organizations() []string {
	if len(p.Authorities) <= 1 {
		return nil
	}
	return slices.Clone(p.Authorities[1:])
}

func authorities(orgNames []string) []string {
	out := make([]string, 0, len(orgNames)+1)
	out = append(out, Authenticated)
	for _, name := range orgNames {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// Group is what the host learns about a group. Groups map one to one onto
// organization names and carry no membership.
type Group struct {
	Name string `json:"name"`
}

// NewGroup returns the details for the group called name.
func NewGroup(name string) Group {
	return Group{Name: name}
}
