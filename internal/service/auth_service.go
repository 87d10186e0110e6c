package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainErrors "github.com/piyushaneja30/licensing-portal/internal/domain/errors"
	"github.com/piyushaneja30/licensing-portal/internal/domain/models"
	"github.com/piyushaneja30/licensing-portal/internal/events"
	"github.com/piyushaneja30/licensing-portal/internal/metrics"
	"github.com/piyushaneja30/licensing-portal/internal/repository"
	"github.com/piyushaneja30/licensing-portal/internal/security"
)

// PasswordHasher is the credential hashing contract consumed by AuthService.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, encodedHash string) (bool, error)
}

// TokenCodec is the bearer token contract consumed by AuthService.
type TokenCodec interface {
	Issue(accountID uuid.UUID, role models.Role, now time.Time) (string, time.Time, error)
	Verify(tokenString string) (*security.TokenClaims, error)
	TTL() time.Duration
}

// ClientInfo is the audit metadata recorded on each session.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AuthService orchestrates the identity lifecycle: credential storage and
// verification, token issuance, and server-side session tracking. Tokens are
// self-contained signatures, but access additionally requires a live session
// record; the session is what makes logout and forced expiry effective.
type AuthService struct {
	accounts  repository.AccountRepository
	sessions  repository.SessionRepository
	hasher    PasswordHasher
	codec     TokenCodec
	publisher events.Publisher
	logger    *zap.Logger

	// decoyHash is compared against when login hits an unknown email, so
	// the response time does not reveal whether the email exists.
	decoyHash string
}

func NewAuthService(
	accounts repository.AccountRepository,
	sessions repository.SessionRepository,
	hasher PasswordHasher,
	codec TokenCodec,
	publisher events.Publisher,
	logger *zap.Logger,
) (*AuthService, error) {
	decoy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &AuthService{
		accounts:  accounts,
		sessions:  sessions,
		hasher:    hasher,
		codec:     codec,
		publisher: publisher,
		logger:    logger.Named("auth_service"),
		decoyHash: decoy,
	}, nil
}

// Signup registers a full account. Account creation is the durable step: if
// session issuance fails afterwards, the error surfaces but the account
// stands, and the caller recovers by logging in.
func (s *AuthService) Signup(ctx context.Context, req *models.SignupRequest, client ClientInfo) (*models.Account, string, error) {
	if err := validateSignup(req); err != nil {
		metrics.RegistrationAttemptsTotal.WithLabelValues("invalid").Inc()
		return nil, "", err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		metrics.RegistrationAttemptsTotal.WithLabelValues("error").Inc()
		s.logger.Error("password hashing failed during signup", zap.Error(err))
		return nil, "", domainErrors.ErrInternal
	}

	now := time.Now()
	account := &models.Account{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         models.RoleUser,
		AccountType:  models.AccountType(req.AccountType),
		Profile:      profileFromSignup(req),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if domainErrors.IsConflict(err) {
			metrics.RegistrationAttemptsTotal.WithLabelValues("duplicate").Inc()
			return nil, "", domainErrors.ErrEmailExists
		}
		metrics.RegistrationAttemptsTotal.WithLabelValues("error").Inc()
		s.logger.Error("failed to persist account", zap.Error(err))
		return nil, "", domainErrors.ErrInternal
	}

	token, err := s.openSession(ctx, account, client)
	if err != nil {
		metrics.RegistrationAttemptsTotal.WithLabelValues("error").Inc()
		return nil, "", err
	}

	metrics.RegistrationAttemptsTotal.WithLabelValues("success").Inc()
	s.publish(ctx, events.NewAuthEvent(events.TypeUserRegistered, account.ID))
	return account, token, nil
}

// Register is the legacy minimal registration path: base fields only, and
// only the minimum password length is enforced.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest, client ClientInfo) (*models.Account, string, error) {
	if !passwordPolicy(req.Password, false) {
		metrics.RegistrationAttemptsTotal.WithLabelValues("invalid").Inc()
		return nil, "", domainErrors.NewValidationError("Password is not strong enough", map[string]string{
			"password": "Password must be at least 8 characters long",
		})
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("password hashing failed during registration", zap.Error(err))
		return nil, "", domainErrors.ErrInternal
	}

	now := time.Now()
	account := &models.Account{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         models.RoleUser,
		AccountType:  models.AccountTypeIndividual,
		Profile: models.Profile{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Phone:       req.PhoneNumber,
			CompanyName: req.Company,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if domainErrors.IsConflict(err) {
			metrics.RegistrationAttemptsTotal.WithLabelValues("duplicate").Inc()
			return nil, "", domainErrors.ErrEmailExists
		}
		s.logger.Error("failed to persist account", zap.Error(err))
		return nil, "", domainErrors.ErrInternal
	}

	token, err := s.openSession(ctx, account, client)
	if err != nil {
		return nil, "", err
	}
	metrics.RegistrationAttemptsTotal.WithLabelValues("success").Inc()
	s.publish(ctx, events.NewAuthEvent(events.TypeUserRegistered, account.ID))
	return account, token, nil
}

// Login verifies credentials and opens a new session. Unknown email and wrong
// password produce the identical error, and both burn one hash comparison.
// Concurrent sessions per account are permitted by design.
func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*models.Account, string, error) {
	// Same normalization as signup, so stray whitespace never locks anyone out.
	account, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if domainErrors.IsNotFound(err) {
			// Equalize timing with the found-account path.
			s.hasher.Compare(password, s.decoyHash)
			metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		s.logger.Error("account lookup failed during login", zap.Error(err))
		return nil, "", domainErrors.ErrInternal
	}

	match, err := s.hasher.Compare(password, account.PasswordHash)
	if err != nil {
		s.logger.Error("password comparison failed", zap.Error(err),
			zap.String("account_id", account.ID.String()))
		return nil, "", domainErrors.ErrInternal
	}
	if !match {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, account, client)
	if err != nil {
		return nil, "", err
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return account, token, nil
}

// Logout revokes the session behind the token. Unknown or already revoked
// tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	session, lookupErr := s.sessions.GetByToken(ctx, token)

	if err := s.sessions.Invalidate(ctx, token); err != nil {
		s.logger.Error("failed to invalidate session", zap.Error(err))
		return domainErrors.ErrInternal
	}

	if lookupErr == nil && session.IsLive(time.Now()) {
		metrics.ActiveSessions.Dec()
		s.publish(ctx, events.NewAuthEvent(events.TypeSessionRevoked, session.AccountID))
	}
	return nil
}

// LogoutAll revokes every live session of the account ("log out everywhere").
func (s *AuthService) LogoutAll(ctx context.Context, accountID uuid.UUID) (int, error) {
	revoked, err := s.sessions.InvalidateAllByAccount(ctx, accountID)
	if err != nil {
		s.logger.Error("failed to invalidate account sessions", zap.Error(err),
			zap.String("account_id", accountID.String()))
		return 0, domainErrors.ErrInternal
	}
	metrics.ActiveSessions.Sub(float64(revoked))
	s.publish(ctx, events.NewAuthEvent(events.TypeSessionRevoked, accountID))
	return revoked, nil
}

// Resolve turns a bearer token into a live principal. The failure modes stay
// distinct: ErrInvalidToken / ErrExpiredToken when the signature check fails,
// ErrSessionExpired when the signature is fine but the server-side session is
// gone, revoked or past expiry. A successful resolve touches lastActivity
// (best-effort; a touch failure never fails the request).
func (s *AuthService) Resolve(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}
	accountID, err := claims.AccountID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if domainErrors.IsNotFound(err) {
			return nil, domainErrors.ErrSessionExpired
		}
		s.logger.Error("session lookup failed", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}
	if !session.IsLive(now) {
		return nil, domainErrors.ErrSessionExpired
	}

	if err := s.sessions.Touch(ctx, token, now); err != nil {
		s.logger.Warn("failed to touch session", zap.Error(err),
			zap.String("account_id", accountID.String()))
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if domainErrors.IsNotFound(err) {
			return nil, domainErrors.ErrSessionExpired
		}
		s.logger.Error("account lookup failed during resolve", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}

	return &models.Principal{ID: account.ID, Email: account.Email, Role: account.Role}, nil
}

// CurrentAccount loads the full account behind a resolved principal.
func (s *AuthService) CurrentAccount(ctx context.Context, principal *models.Principal) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, principal.ID)
	if err != nil {
		if domainErrors.IsNotFound(err) {
			return nil, domainErrors.ErrAccountNotFound
		}
		return nil, domainErrors.ErrInternal
	}
	return account, nil
}

// UpdateProfile applies a partial profile update: only supplied fields change.
func (s *AuthService) UpdateProfile(ctx context.Context, accountID uuid.UUID, req *models.UpdateProfileRequest) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if domainErrors.IsNotFound(err) {
			return nil, domainErrors.ErrAccountNotFound
		}
		return nil, domainErrors.ErrInternal
	}

	profile := account.Profile
	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.Phone != nil {
		profile.Phone = *req.Phone
	}
	if req.Profession != nil {
		profile.Profession = *req.Profession
	}
	if req.LicenseNumber != nil {
		profile.LicenseNumber = *req.LicenseNumber
	}
	if req.Specialization != nil {
		profile.Specialization = *req.Specialization
	}
	if req.YearsOfExperience != nil {
		profile.YearsOfExperience = *req.YearsOfExperience
	}

	if err := s.accounts.UpdateProfile(ctx, accountID, profile); err != nil {
		s.logger.Error("failed to update profile", zap.Error(err),
			zap.String("account_id", accountID.String()))
		return nil, domainErrors.ErrInternal
	}
	account.Profile = profile
	return account, nil
}

// ChangePassword re-hashes the credential and revokes every existing session
// of the account. A password change must leave no session alive under the old
// credential.
func (s *AuthService) ChangePassword(ctx context.Context, accountID uuid.UUID, current, next string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if domainErrors.IsNotFound(err) {
			return domainErrors.ErrAccountNotFound
		}
		return domainErrors.ErrInternal
	}

	match, err := s.hasher.Compare(current, account.PasswordHash)
	if err != nil {
		s.logger.Error("password comparison failed", zap.Error(err))
		return domainErrors.ErrInternal
	}
	if !match {
		return domainErrors.ErrInvalidCredentials
	}

	if !passwordPolicy(next, true) {
		return domainErrors.ErrWeakPassword
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		s.logger.Error("password hashing failed during change", zap.Error(err))
		return domainErrors.ErrInternal
	}
	if err := s.accounts.UpdatePasswordHash(ctx, accountID, hash); err != nil {
		s.logger.Error("failed to store new password hash", zap.Error(err))
		return domainErrors.ErrInternal
	}

	revoked, err := s.sessions.InvalidateAllByAccount(ctx, accountID)
	if err != nil {
		s.logger.Error("failed to revoke sessions after password change", zap.Error(err),
			zap.String("account_id", accountID.String()))
		return domainErrors.ErrInternal
	}
	metrics.ActiveSessions.Sub(float64(revoked))
	s.publish(ctx, events.NewAuthEvent(events.TypePasswordChanged, accountID))
	return nil
}

// ListAccounts returns every account, for the admin surface.
func (s *AuthService) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		s.logger.Error("failed to list accounts", zap.Error(err))
		return nil, domainErrors.ErrInternal
	}
	return accounts, nil
}

// openSession mints a token and inserts the paired session record in one
// atomic step. A token collision means the codec issued a duplicate jti,
// which is cryptographically improbable; one retry covers it.
func (s *AuthService) openSession(ctx context.Context, account *models.Account, client ClientInfo) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		now := time.Now()
		token, expiresAt, err := s.codec.Issue(account.ID, account.Role, now)
		if err != nil {
			s.logger.Error("token issuance failed", zap.Error(err))
			return "", domainErrors.ErrInternal
		}

		session := &models.Session{
			Token:        token,
			AccountID:    account.ID,
			IssuedAt:     now,
			ExpiresAt:    expiresAt,
			LastActivity: now,
			IPAddress:    client.IPAddress,
			UserAgent:    client.UserAgent,
		}
		err = s.sessions.Create(ctx, session)
		if err == nil {
			metrics.ActiveSessions.Inc()
			return token, nil
		}
		if domainErrors.IsConflict(err) {
			continue
		}
		s.logger.Error("failed to create session", zap.Error(err),
			zap.String("account_id", account.ID.String()))
		return "", domainErrors.ErrInternal
	}
	return "", domainErrors.ErrInternal
}

func (s *AuthService) publish(ctx context.Context, event events.AuthEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish auth event",
			zap.Error(err), zap.String("type", event.Type))
	}
}
