package domain

import "time"

// Resource payloads mirror the upstream API's JSON. Only the fields the
// console lists are modelled; unknown fields are ignored on decode.

type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Plan      string    `json:"plan,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Account is a user row in the users and company-employees lists.
type Account struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
	Active    bool   `json:"active"`
}

type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"` // "document" or "email"
	CompanyID string    `json:"company_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InboxItem struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	From       string    `json:"from"`
	DocumentID string    `json:"document_id,omitempty"`
	Status     string    `json:"status"` // pending, signed, rejected
	Read       bool      `json:"read"`
	ReceivedAt time.Time `json:"received_at"`
}

type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Group       string `json:"group,omitempty"`
}

type Credential struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Provider  string    `json:"provider"`
	CompanyID string    `json:"company_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

type Plan struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	DocumentsCap int     `json:"documents_cap"`
	UsersCap     int     `json:"users_cap"`
}

type Subscription struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	PlanID    string    `json:"plan_id"`
	Status    string    `json:"status"`
	RenewsAt  time.Time `json:"renews_at"`
}

// DashboardStats is the single record behind the dashboard view.
type DashboardStats struct {
	Companies      int `json:"companies"`
	Users          int `json:"users"`
	Templates      int `json:"templates"`
	DocumentsSent  int `json:"documents_sent"`
	PendingSigning int `json:"pending_signing"`
}
