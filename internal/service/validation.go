package service

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	domainErrors "github.com/piyushaneja30/licensing-portal/internal/domain/errors"
	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
)

var validate = validator.New()

// passwordPolicy checks the strict signup policy: minimum length 8 with at
// least one uppercase letter, one lowercase letter, one digit and one symbol.
// The legacy register path only enforces the minimum length.
func passwordPolicy(password string, strict bool) bool {
	if len(password) < 8 {
		return false
	}
	if !strict {
		return true
	}
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

const weakPasswordMessage = "Password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character"

func requiredMsg(value, message string) string {
	if strings.TrimSpace(value) == "" {
		return message
	}
	return ""
}

// validateSignup mirrors the portal's registration rules and reports every
// failing field at once.
func validateSignup(req *models.SignupRequest) error {
	accountType := models.AccountType(req.AccountType)
	if accountType != models.AccountTypeIndividual && accountType != models.AccountTypeBusiness {
		return domainErrors.NewValidationError("Invalid account type", nil)
	}

	fields := map[string]string{
		"email":       requiredMsg(req.Email, "Email is required"),
		"password":    requiredMsg(req.Password, "Password is required"),
		"firstName":   requiredMsg(req.FirstName, "First name is required"),
		"lastName":    requiredMsg(req.LastName, "Last name is required"),
		"phoneNumber": requiredMsg(req.PhoneNumber, "Phone number is required"),
	}
	for _, msg := range fields {
		if msg != "" {
			return domainErrors.NewValidationError("Missing required fields", fields)
		}
	}

	if err := validate.Var(req.Email, "email"); err != nil {
		return domainErrors.NewValidationError("Invalid email address", map[string]string{
			"email": "Email address is not valid",
		})
	}

	if !passwordPolicy(req.Password, true) {
		return domainErrors.NewValidationError("Password is not strong enough", map[string]string{
			"password": weakPasswordMessage,
		})
	}

	if accountType == models.AccountTypeIndividual {
		return validateIndividual(req)
	}
	return validateBusiness(req)
}

func validateIndividual(req *models.SignupRequest) error {
	fields := map[string]string{
		"profession":     requiredMsg(req.Profession, "Profession is required"),
		"specialization": requiredMsg(req.Specialization, "Specialization is required"),
	}
	if req.YearsOfExperience == nil {
		fields["yearsOfExperience"] = "Years of experience is required"
	}
	for _, msg := range fields {
		if msg != "" {
			return domainErrors.NewValidationError("Missing required professional information", fields)
		}
	}

	if years := *req.YearsOfExperience; years < 0 || years > 100 {
		return domainErrors.NewValidationError("Invalid years of experience", map[string]string{
			"yearsOfExperience": "Years of experience must be a number between 0 and 100",
		})
	}
	return nil
}

func validateBusiness(req *models.SignupRequest) error {
	fields := map[string]string{
		"companyName":        requiredMsg(req.CompanyName, "Company name is required"),
		"industryType":       requiredMsg(req.IndustryType, "Industry type is required"),
		"companySize":        requiredMsg(req.CompanySize, "Company size is required"),
		"businessType":       requiredMsg(req.BusinessType, "Business type is required"),
		"registrationNumber": requiredMsg(req.RegistrationNumber, "Registration number is required"),
		"jobTitle":           requiredMsg(req.JobTitle, "Job title is required"),
	}
	for _, msg := range fields {
		if msg != "" {
			return domainErrors.NewValidationError("Missing required business information", fields)
		}
	}

	addr := req.BusinessAddress
	if addr == nil {
		addr = &models.BusinessAddress{}
	}
	addrFields := map[string]string{
		"businessAddress.street":  requiredMsg(addr.Street, "Street address is required"),
		"businessAddress.city":    requiredMsg(addr.City, "City is required"),
		"businessAddress.state":   requiredMsg(addr.State, "State is required"),
		"businessAddress.zipCode": requiredMsg(addr.ZipCode, "ZIP code is required"),
		"businessAddress.country": requiredMsg(addr.Country, "Country is required"),
	}
	for _, msg := range addrFields {
		if msg != "" {
			return domainErrors.NewValidationError("Missing required business address information", addrFields)
		}
	}
	return nil
}

// profileFromSignup builds the account profile for the validated request.
func profileFromSignup(req *models.SignupRequest) models.Profile {
	profile := models.Profile{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.PhoneNumber,
	}
	if models.AccountType(req.AccountType) == models.AccountTypeIndividual {
		profile.Profession = req.Profession
		profile.Specialization = req.Specialization
		profile.YearsOfExperience = *req.YearsOfExperience
		profile.LicenseNumber = req.LicenseNumber
	} else {
		profile.CompanyName = req.CompanyName
		profile.IndustryType = req.IndustryType
		profile.CompanySize = req.CompanySize
		profile.BusinessType = req.BusinessType
		profile.RegistrationNumber = req.RegistrationNumber
		profile.JobTitle = req.JobTitle
		profile.BusinessAddress = &models.BusinessAddress{
			Street:  req.BusinessAddress.Street,
			City:    req.BusinessAddress.City,
			State:   req.BusinessAddress.State,
			ZipCode: req.BusinessAddress.ZipCode,
			Country: req.BusinessAddress.Country,
		}
	}
	return profile
}
