package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	domainErrors "github.com/piyushaneja30/licensing-portal/internal/domain/errors"
	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
	"github.com/piyushaneja30/licensing-portal/internal/repository/memory"
	"github.com/piyushaneja30/licensing-portal/internal/security"
)

type AuthServiceTestSuite struct {
	suite.Suite

	accounts *memory.AccountStore
	sessions *memory.SessionStore
	codec    *security.TokenCodec
	service  *AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.accounts = memory.NewAccountStore()
	s.sessions = memory.NewSessionStore()

	hasher, err := security.NewPasswordHasher(security.Argon2Params{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	s.Require().NoError(err)

	s.codec, err = security.NewTokenCodec("unit-test-secret", time.Hour)
	s.Require().NoError(err)

	s.service, err = NewAuthService(s.accounts, s.sessions, hasher, s.codec, nil, zap.NewNop())
	s.Require().NoError(err)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func intPtr(v int) *int { return &v }

func individualSignup(email string) *models.SignupRequest {
	return &models.SignupRequest{
		AccountType:       "individual",
		Email:             email,
		Password:          "Str0ng!pass",
		FirstName:         "Ada",
		LastName:          "Lovelace",
		PhoneNumber:       "555-0100",
		Profession:        "Engineer",
		Specialization:    "Structural",
		YearsOfExperience: intPtr(12),
		LicenseNumber:     "PE-12345",
	}
}

func businessSignup(email string) *models.SignupRequest {
	return &models.SignupRequest{
		AccountType:        "business",
		Email:              email,
		Password:           "Str0ng!pass",
		FirstName:          "Grace",
		LastName:           "Hopper",
		PhoneNumber:        "555-0101",
		CompanyName:        "Acme Licensing",
		IndustryType:       "Construction",
		CompanySize:        "51-200",
		BusinessType:       "LLC",
		RegistrationNumber: "REG-9876",
		JobTitle:           "Compliance Lead",
		BusinessAddress: &models.BusinessAddress{
			Street:  "1 Main St",
			City:    "Springfield",
			State:   "IL",
			ZipCode: "62701",
			Country: "USA",
		},
	}
}

var testClient = ClientInfo{IPAddress: "127.0.0.1", UserAgent: "unit-test"}

// --- Signup ---

func (s *AuthServiceTestSuite) TestSignup_IndividualSuccess() {
	ctx := context.Background()

	account, token, err := s.service.Signup(ctx, individualSignup("ada@example.com"), testClient)
	s.Require().NoError(err)
	s.NotEmpty(token)
	s.Equal(models.RoleUser, account.Role)
	s.Equal(models.AccountTypeIndividual, account.AccountType)
	s.Equal("Structural", account.Profile.Specialization)
	s.Equal(12, account.Profile.YearsOfExperience)

	// The stored credential must be an argon2id hash, never the plaintext.
	stored, err := s.accounts.GetByEmail(ctx, "ada@example.com")
	s.Require().NoError(err)
	s.NotEqual("Str0ng!pass", stored.PasswordHash)
	s.Contains(stored.PasswordHash, "$argon2id$")

	// The issued token resolves immediately.
	principal, err := s.service.Resolve(ctx, token)
	s.Require().NoError(err)
	s.Equal(account.ID, principal.ID)
}

func (s *AuthServiceTestSuite) TestSignup_BusinessSuccess() {
	ctx := context.Background()

	account, token, err := s.service.Signup(ctx, businessSignup("grace@example.com"), testClient)
	s.Require().NoError(err)
	s.NotEmpty(token)
	s.Equal(models.AccountTypeBusiness, account.AccountType)
	s.Equal("Acme Licensing", account.Profile.CompanyName)
	s.Require().NotNil(account.Profile.BusinessAddress)
	s.Equal("Springfield", account.Profile.BusinessAddress.City)
}

func (s *AuthServiceTestSuite) TestSignup_DuplicateEmail() {
	ctx := context.Background()

	_, _, err := s.service.Signup(ctx, individualSignup("dup@example.com"), testClient)
	s.Require().NoError(err)

	_, _, err = s.service.Signup(ctx, individualSignup("dup@example.com"), testClient)
	s.ErrorIs(err, domainErrors.ErrEmailExists)

	// Case variants are the same address.
	_, _, err = s.service.Signup(ctx, individualSignup("DUP@Example.com"), testClient)
	s.ErrorIs(err, domainErrors.ErrEmailExists)
}

func (s *AuthServiceTestSuite) TestSignup_InvalidAccountType() {
	_, _, err := s.service.Signup(context.Background(), &models.SignupRequest{
		AccountType: "government",
		Email:       "x@example.com",
		Password:    "Str0ng!pass",
	}, testClient)

	ve, ok := domainErrors.AsValidation(err)
	s.Require().True(ok)
	s.Equal("Invalid account type", ve.Message)
}

func (s *AuthServiceTestSuite) TestSignup_MissingBaseFields() {
	req := individualSignup("missing@example.com")
	req.FirstName = ""
	req.PhoneNumber = "  "

	_, _, err := s.service.Signup(context.Background(), req, testClient)
	ve, ok := domainErrors.AsValidation(err)
	s.Require().True(ok)
	s.Equal("Missing required fields", ve.Message)
	s.Equal("First name is required", ve.Fields["firstName"])
	s.Equal("Phone number is required", ve.Fields["phoneNumber"])
	s.NotContains(ve.Fields, "email")
}

func (s *AuthServiceTestSuite) TestSignup_MissingProfessionalFields() {
	req := individualSignup("pro@example.com")
	req.Specialization = ""
	req.YearsOfExperience = nil

	_, _, err := s.service.Signup(context.Background(), req, testClient)
	ve, ok := domainErrors.AsValidation(err)
	s.Require().True(ok)
	s.Equal("Missing required professional information", ve.Message)
	s.Contains(ve.Fields, "specialization")
	s.Contains(ve.Fields, "yearsOfExperience")
}

func (s *AuthServiceTestSuite) TestSignup_InvalidYearsOfExperience() {
	req := individualSignup("years@example.com")
	req.YearsOfExperience = intPtr(150)

	_, _, err := s.service.Signup(context.Background(), req, testClient)
	ve, ok := domainErrors.AsValidation(err)
	s.Require().True(ok)
	s.Equal("Invalid years of experience", ve.Message)
}

func (s *AuthServiceTestSuite) TestSignup_MissingBusinessAddress() {
	req := businessSignup("addr@example.com")
	req.BusinessAddress = nil

	_, _, err := s.service.Signup(context.Background(), req, testClient)
	ve, ok := domainErrors.AsValidation(err)
	s.Require().True(ok)
	s.Equal("Missing required business address information", ve.Message)
	s.Contains(ve.Fields, "businessAddress.street")
	s.Contains(ve.Fields, "businessAddress.country")
}

func (s *AuthServiceTestSuite) TestSignup_PasswordPolicy() {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Strong1!", true},
		{"Weak1!", false},      // too short
		{"alllower1!", false},  // no uppercase
		{"ALLUPPER1!", false},  // no lowercase
		{"NoDigits!!", false},  // no digit
		{"NoSymbol11", false},  // no symbol
		{"Str0ng!pass", true},
	}
	for _, tc := range cases {
		req := individualSignup(fmt.Sprintf("pw-%s@example.com", tc.password))
		req.Password = tc.password
		_, _, err := s.service.Signup(context.Background(), req, testClient)
		if tc.ok {
			s.NoError(err, "password %q should be accepted", tc.password)
		} else {
			ve, isValidation := domainErrors.AsValidation(err)
			s.Require().True(isValidation, "password %q should be rejected", tc.password)
			s.Equal("Password is not strong enough", ve.Message)
		}
	}
}

// --- Register (legacy path) ---

func (s *AuthServiceTestSuite) TestRegister_Success() {
	ctx := context.Background()

	account, token, err := s.service.Register(ctx, &models.RegisterRequest{
		Email:     "legacy@example.com",
		Password:  "password", // only the length floor applies here
		FirstName: "Leg",
		LastName:  "Acy",
	}, testClient)
	s.Require().NoError(err)
	s.NotEmpty(token)
	s.Equal(models.AccountTypeIndividual, account.AccountType)
}

func (s *AuthServiceTestSuite) TestRegister_ShortPassword() {
	_, _, err := s.service.Register(context.Background(), &models.RegisterRequest{
		Email:     "short@example.com",
		Password:  "short",
		FirstName: "A",
		LastName:  "B",
	}, testClient)

	ve, ok := domainErrors.AsValidation(err)
	s.Require().True(ok)
	s.Equal("Password is not strong enough", ve.Message)
}

// --- Login ---

func (s *AuthServiceTestSuite) TestLogin_Success() {
	ctx := context.Background()
	_, _, err := s.service.Signup(ctx, individualSignup("login@example.com"), testClient)
	s.Require().NoError(err)

	account, token, err := s.service.Login(ctx, "login@example.com", "Str0ng!pass", testClient)
	s.Require().NoError(err)
	s.NotEmpty(token)
	s.Equal("login@example.com", account.Email)
}

func (s *AuthServiceTestSuite) TestLogin_EmailIsNormalized() {
	ctx := context.Background()
	_, _, err := s.service.Signup(ctx, individualSignup("trim@example.com"), testClient)
	s.Require().NoError(err)

	// Whitespace and case variants reach the same account.
	for _, email := range []string{"  trim@example.com ", "TRIM@Example.com", "\ttrim@example.com\n"} {
		_, token, err := s.service.Login(ctx, email, "Str0ng!pass", testClient)
		s.Require().NoError(err, "email %q", email)
		s.NotEmpty(token)
	}
}

func (s *AuthServiceTestSuite) TestLogin_UnknownAndWrongPasswordAreIndistinguishable() {
	ctx := context.Background()
	_, _, err := s.service.Signup(ctx, individualSignup("known@example.com"), testClient)
	s.Require().NoError(err)

	_, _, unknownErr := s.service.Login(ctx, "unknown@example.com", "Str0ng!pass", testClient)
	_, _, wrongErr := s.service.Login(ctx, "known@example.com", "Wr0ng!pass", testClient)

	s.ErrorIs(unknownErr, domainErrors.ErrInvalidCredentials)
	s.ErrorIs(wrongErr, domainErrors.ErrInvalidCredentials)
	s.Equal(unknownErr.Error(), wrongErr.Error())
}

func (s *AuthServiceTestSuite) TestLogin_ConcurrentSessionsAreIndependent() {
	ctx := context.Background()
	_, _, err := s.service.Signup(ctx, individualSignup("multi@example.com"), testClient)
	s.Require().NoError(err)

	const n = 100
	tokens := make([]string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, token, err := s.service.Login(ctx, "multi@example.com", "Str0ng!pass", testClient)
			assert.NoError(s.T(), err)
			tokens[i] = token
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for _, token := range tokens {
		s.Require().NotEmpty(token)
		seen[token] = struct{}{}
		_, err := s.service.Resolve(ctx, token)
		s.NoError(err)
	}
	s.Len(seen, n, "every login must yield a distinct session")
}

// --- Logout / revocation ---

func (s *AuthServiceTestSuite) TestLogout_TwoLayerRevocation() {
	ctx := context.Background()
	_, token, err := s.service.Signup(ctx, individualSignup("revoke@example.com"), testClient)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Logout(ctx, token))

	// The signature still verifies; revocation lives in the session layer.
	_, err = s.codec.Verify(token)
	s.NoError(err)

	_, err = s.service.Resolve(ctx, token)
	s.ErrorIs(err, domainErrors.ErrSessionExpired)
}

func (s *AuthServiceTestSuite) TestLogout_IsIdempotent() {
	ctx := context.Background()
	_, token, err := s.service.Signup(ctx, individualSignup("idem@example.com"), testClient)
	s.Require().NoError(err)

	s.NoError(s.service.Logout(ctx, token))
	s.NoError(s.service.Logout(ctx, token))
	s.NoError(s.service.Logout(ctx, "token-that-never-existed"))
}

func (s *AuthServiceTestSuite) TestLogout_DoesNotAffectOtherSessions() {
	ctx := context.Background()
	_, first, err := s.service.Signup(ctx, individualSignup("pair@example.com"), testClient)
	s.Require().NoError(err)
	_, second, err := s.service.Login(ctx, "pair@example.com", "Str0ng!pass", testClient)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Logout(ctx, first))

	_, err = s.service.Resolve(ctx, first)
	s.ErrorIs(err, domainErrors.ErrSessionExpired)
	_, err = s.service.Resolve(ctx, second)
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestLogoutAll() {
	ctx := context.Background()
	account, first, err := s.service.Signup(ctx, individualSignup("all@example.com"), testClient)
	s.Require().NoError(err)
	_, second, err := s.service.Login(ctx, "all@example.com", "Str0ng!pass", testClient)
	s.Require().NoError(err)

	revoked, err := s.service.LogoutAll(ctx, account.ID)
	s.Require().NoError(err)
	s.Equal(2, revoked)

	_, err = s.service.Resolve(ctx, first)
	s.ErrorIs(err, domainErrors.ErrSessionExpired)
	_, err = s.service.Resolve(ctx, second)
	s.ErrorIs(err, domainErrors.ErrSessionExpired)
}

// --- Resolve ---

func (s *AuthServiceTestSuite) TestResolve_GarbageToken() {
	_, err := s.service.Resolve(context.Background(), "not-a-token")
	s.ErrorIs(err, domainErrors.ErrInvalidToken)
}

func (s *AuthServiceTestSuite) TestResolve_ValidSignatureWithoutSession() {
	// A token signed with the right key but never paired with a session
	// record must not grant access.
	ctx := context.Background()
	account, _, err := s.service.Signup(ctx, individualSignup("ghost@example.com"), testClient)
	s.Require().NoError(err)

	forged, _, err := s.codec.Issue(account.ID, account.Role, time.Now())
	s.Require().NoError(err)

	_, err = s.service.Resolve(ctx, forged)
	s.ErrorIs(err, domainErrors.ErrSessionExpired)
}

func (s *AuthServiceTestSuite) TestResolve_TouchUpdatesLastActivity() {
	ctx := context.Background()
	_, token, err := s.service.Signup(ctx, individualSignup("touch@example.com"), testClient)
	s.Require().NoError(err)

	before, err := s.sessions.GetByToken(ctx, token)
	s.Require().NoError(err)

	time.Sleep(5 * time.Millisecond)
	_, err = s.service.Resolve(ctx, token)
	s.Require().NoError(err)

	after, err := s.sessions.GetByToken(ctx, token)
	s.Require().NoError(err)
	s.True(after.LastActivity.After(before.LastActivity))
}

// --- Profile ---

func (s *AuthServiceTestSuite) TestUpdateProfile_PartialUpdate() {
	ctx := context.Background()
	account, _, err := s.service.Signup(ctx, individualSignup("profile@example.com"), testClient)
	s.Require().NoError(err)

	newPhone := "555-9999"
	updated, err := s.service.UpdateProfile(ctx, account.ID, &models.UpdateProfileRequest{
		Phone: &newPhone,
	})
	s.Require().NoError(err)
	s.Equal("555-9999", updated.Profile.Phone)
	// Untouched fields survive.
	s.Equal("Ada", updated.Profile.FirstName)
	s.Equal("Structural", updated.Profile.Specialization)
}

// --- ChangePassword ---

func (s *AuthServiceTestSuite) TestChangePassword_RevokesEverySession() {
	ctx := context.Background()
	account, first, err := s.service.Signup(ctx, individualSignup("change@example.com"), testClient)
	s.Require().NoError(err)
	_, second, err := s.service.Login(ctx, "change@example.com", "Str0ng!pass", testClient)
	s.Require().NoError(err)

	err = s.service.ChangePassword(ctx, account.ID, "Str0ng!pass", "N3w!secret")
	s.Require().NoError(err)

	_, err = s.service.Resolve(ctx, first)
	s.ErrorIs(err, domainErrors.ErrSessionExpired)
	_, err = s.service.Resolve(ctx, second)
	s.ErrorIs(err, domainErrors.ErrSessionExpired)

	// Old credential is dead, new one works.
	_, _, err = s.service.Login(ctx, "change@example.com", "Str0ng!pass", testClient)
	s.ErrorIs(err, domainErrors.ErrInvalidCredentials)
	_, _, err = s.service.Login(ctx, "change@example.com", "N3w!secret", testClient)
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestChangePassword_WrongCurrent() {
	ctx := context.Background()
	account, _, err := s.service.Signup(ctx, individualSignup("wrongcur@example.com"), testClient)
	s.Require().NoError(err)

	err = s.service.ChangePassword(ctx, account.ID, "NotTheCurrent1!", "N3w!secret")
	s.ErrorIs(err, domainErrors.ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestChangePassword_WeakNew() {
	ctx := context.Background()
	account, token, err := s.service.Signup(ctx, individualSignup("weaknew@example.com"), testClient)
	s.Require().NoError(err)

	err = s.service.ChangePassword(ctx, account.ID, "Str0ng!pass", "weak")
	s.ErrorIs(err, domainErrors.ErrWeakPassword)

	// A rejected change leaves existing sessions alone.
	_, err = s.service.Resolve(ctx, token)
	s.NoError(err)
}

// --- Admin ---

func (s *AuthServiceTestSuite) TestListAccounts() {
	ctx := context.Background()
	_, _, err := s.service.Signup(ctx, individualSignup("one@example.com"), testClient)
	s.Require().NoError(err)
	_, _, err = s.service.Signup(ctx, businessSignup("two@example.com"), testClient)
	s.Require().NoError(err)

	accounts, err := s.service.ListAccounts(ctx)
	s.Require().NoError(err)
	s.Len(accounts, 2)
}

// expiredSessionResolve exercises lazy expiry without reaping: the session
// record still exists but its expiry has passed.
func TestResolve_ExpiredSessionWithoutReaping(t *testing.T) {
	accounts := memory.NewAccountStore()
	sessions := memory.NewSessionStore()

	hasher, err := security.NewPasswordHasher(security.Argon2Params{
		Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	require.NoError(t, err)

	// A very short TTL so the session outlives nothing.
	codec, err := security.NewTokenCodec("unit-test-secret", 50*time.Millisecond)
	require.NoError(t, err)

	svc, err := NewAuthService(accounts, sessions, hasher, codec, nil, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	_, token, err := svc.Signup(ctx, individualSignup("ttl@example.com"), testClient)
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, token)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = svc.Resolve(ctx, token)
	// Depending on clock skew handling in the JWT library the signature
	// check may fail first; either way access is denied.
	assert.True(t,
		err == domainErrors.ErrExpiredToken || err == domainErrors.ErrSessionExpired,
		"expected expiry rejection, got %v", err)
}
