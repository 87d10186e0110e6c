package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the flat two-role model of the portal. Admin is not a superset of
// user: handlers check the exact role they need.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AccountType distinguishes the two registration flows.
type AccountType string

const (
	AccountTypeIndividual AccountType = "individual"
	AccountTypeBusiness   AccountType = "business"
)

// BusinessAddress is the nested address block of a business profile.
type BusinessAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Profile holds the identity-adjacent attributes of an account. Only the
// fields matching the account type are populated.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`

	// Individual accounts
	Profession        string `json:"profession,omitempty"`
	Specialization    string `json:"specialization,omitempty"`
	YearsOfExperience int    `json:"yearsOfExperience,omitempty"`
	LicenseNumber     string `json:"licenseNumber,omitempty"`

	// Business accounts
	CompanyName        string           `json:"companyName,omitempty"`
	IndustryType       string           `json:"industryType,omitempty"`
	CompanySize        string           `json:"companySize,omitempty"`
	BusinessType       string           `json:"businessType,omitempty"`
	RegistrationNumber string           `json:"registrationNumber,omitempty"`
	JobTitle           string           `json:"jobTitle,omitempty"`
	BusinessAddress    *BusinessAddress `json:"businessAddress,omitempty"`
}

// Account is a registered identity. PasswordHash is the argon2id PHC string;
// it never leaves the service boundary.
type Account struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         Role        `json:"role"`
	AccountType  AccountType `json:"accountType"`
	Profile      Profile     `json:"profile"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// AccountResponse is the client-visible projection of an Account.
type AccountResponse struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	Role        Role        `json:"role"`
	AccountType AccountType `json:"accountType"`
	Profile     Profile     `json:"profile"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// ToResponse strips everything a client must not see.
func (a *Account) ToResponse() AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		Email:       a.Email,
		Role:        a.Role,
		AccountType: a.AccountType,
		Profile:     a.Profile,
		CreatedAt:   a.CreatedAt,
	}
}

// Principal is the resolved identity attached to an authenticated request.
// Downstream handlers consume it from the request context instead of
// re-deriving it from raw headers.
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}
