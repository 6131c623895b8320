package model

import "time"

// Role is the closed set of account roles.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdvisor Role = "advisor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdvisor, RoleAdmin:
		return true
	}
	return false
}

// Capability names an action a route or service operation requires.
type Capability string

const (
	CapManageCards            Capability = "manage_cards"
	CapTrackSpending          Capability = "track_spending"
	CapRequestAdvisor         Capability = "request_advisor"
	CapRespondAdvisorRequests Capability = "respond_advisor_requests"
	CapViewClients            Capability = "view_clients"
	CapAdminister             Capability = "administer"
)

var roleCapabilities = map[Role][]Capability{
	RoleUser:    {CapManageCards, CapTrackSpending, CapRequestAdvisor},
	RoleAdvisor: {CapManageCards, CapTrackSpending, CapRespondAdvisorRequests, CapViewClients},
	RoleAdmin:   {CapManageCards, CapTrackSpending, CapViewClients, CapAdminister},
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

const (
	StatusActive    = "Active"
	StatusSuspended = "Suspended"
)

// Caller is the authenticated identity a request acts on behalf of.
type Caller struct {
	UserID string
	Role   Role
}

// AdvisorProfile holds advisor-only profile data.
type AdvisorProfile struct {
	Price          float64 `json:"price" bson:"price"`
	Specialization string  `json:"specialization" bson:"specialization"`
	Bio            string  `json:"bio" bson:"bio"`
	Experience     int     `json:"experience" bson:"experience"`
	// Nil means the advisor never set it; only an explicit false opts out.
	IsAcceptingClients *bool `json:"isAcceptingClients,omitempty" bson:"is_accepting_clients,omitempty"`
}

// AcceptsClients treats an unset flag as accepting.
func (p *AdvisorProfile) AcceptsClients() bool {
	return p == nil || p.IsAcceptingClients == nil || *p.IsAcceptingClients
}

// User represents a person in the system
type User struct {
	ID              string          `json:"id" bson:"_id"`
	Name            string          `json:"name" bson:"name"`
	Email           string          `json:"email" bson:"email"`
	PasswordHash    string          `json:"-" bson:"password_hash"` // Do not expose password hash in JSON responses
	Role            Role            `json:"role" bson:"role"`
	Status          string          `json:"status" bson:"status"`
	AssignedAdvisor *string         `json:"assignedAdvisor" bson:"assigned_advisor"`
	AdvisorProfile  *AdvisorProfile `json:"advisorProfile,omitempty" bson:"advisor_profile,omitempty"`
	IsApproved      bool            `json:"isApproved" bson:"is_approved"`
	CreatedAt       time.Time       `json:"createdAt" bson:"created_at"`
}

// AdvisorSummary is the public view of an advisor.
type AdvisorSummary struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	AdvisorProfile *AdvisorProfile `json:"advisorProfile,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func (u *User) AdvisorSummary() AdvisorSummary {
	return AdvisorSummary{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		AdvisorProfile: u.AdvisorProfile,
		CreatedAt:      u.CreatedAt,
	}
}
