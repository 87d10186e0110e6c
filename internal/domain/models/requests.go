package models

// SignupRequest is the full registration payload. Beyond the common block,
// the required fields depend on AccountType, so cross-field validation is
// done in the service layer where it can produce a field -> message map.
type SignupRequest struct {
	AccountType string `json:"accountType"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`

	// Individual accounts
	Profession        string `json:"profession"`
	Specialization    string `json:"specialization"`
	YearsOfExperience *int   `json:"yearsOfExperience"`
	LicenseNumber     string `json:"licenseNumber"`

	// Business accounts
	CompanyName        string           `json:"companyName"`
	IndustryType       string           `json:"industryType"`
	CompanySize        string           `json:"companySize"`
	BusinessType       string           `json:"businessType"`
	RegistrationNumber string           `json:"registrationNumber"`
	JobTitle           string           `json:"jobTitle"`
	BusinessAddress    *BusinessAddress `json:"businessAddress"`
}

// RegisterRequest is the minimal legacy registration payload. Only the
// minimum password length is enforced on this path.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Company     string `json:"company"`
	PhoneNumber string `json:"phoneNumber"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest updates only the supplied fields; nil means "leave
// unchanged".
type UpdateProfileRequest struct {
	FirstName         *string `json:"firstName"`
	LastName          *string `json:"lastName"`
	Phone             *string `json:"phone"`
	Profession        *string `json:"profession"`
	LicenseNumber     *string `json:"licenseNumber"`
	Specialization    *string `json:"specialization"`
	YearsOfExperience *int    `json:"yearsOfExperience"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// AuthResponse pairs the account projection with its bearer token.
type AuthResponse struct {
	User  AccountResponse `json:"user"`
	Token string          `json:"token"`
}
