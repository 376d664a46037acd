package domain

// GlobalScopeKey marks cache entries and queries that span all companies.
// Only super-admin callers resolve to this scope.
const GlobalScopeKey = "global"

// Scope captures the tenant boundary of a request. Non-super-admin callers are
// always restricted to their own company; super-admin callers see every row.
type Scope struct {
	CompanyID CompanyID
	All       bool
}

// ScopeCompany restricts queries to a single company.
func ScopeCompany(id CompanyID) Scope {
	return Scope{CompanyID: id}
}

// ScopeAll imposes no company filter. Reserved for super-admin callers.
func ScopeAll() Scope {
	return Scope{All: true}
}

// Allows reports whether a row owned by companyID is visible under the scope.
func (s Scope) Allows(companyID CompanyID) bool {
	return s.All || s.CompanyID == companyID
}

// Key returns the cache key fragment for the scope: the company UUID, or the
// global marker for cross-tenant scopes.
func (s Scope) Key() string {
	if s.All {
		return GlobalScopeKey
	}
	return s.CompanyID.String()
}
