package user

import "time"

type User struct {
	ID string `json:"id"`
	// ExternalID is the identifier an account carried in the previous auth
	// provider. Empty for accounts created natively.
	ExternalID        string    `json:"-"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	PasswordHash      string    `json:"-"`
	Country           string    `json:"country"`
	InvestmentGoals   string    `json:"investment_goals"`
	RiskTolerance     string    `json:"risk_tolerance"`
	PreferredIndustry string    `json:"preferred_industry"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewsRecipient is the projection used by the daily digest job.
type NewsRecipient struct {
	ID    string
	Email string
	Name  string
}
