package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elizabethadegbaju/crystalims/internal/companies"
	"github.com/elizabethadegbaju/crystalims/internal/employees"
	"github.com/elizabethadegbaju/crystalims/internal/users"
	"github.com/elizabethadegbaju/crystalims/pkg/activation"
	pkgauth "github.com/elizabethadegbaju/crystalims/pkg/auth"
	"github.com/elizabethadegbaju/crystalims/pkg/auth/session"
	"github.com/elizabethadegbaju/crystalims/pkg/config"
	pkgdb "github.com/elizabethadegbaju/crystalims/pkg/db"
	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/elizabethadegbaju/crystalims/pkg/mailer"
	"github.com/elizabethadegbaju/crystalims/pkg/security"
	"github.com/elizabethadegbaju/crystalims/pkg/storage/gcs"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8
	signupStashTTL    = 30 * time.Minute
	socialPictureMax  = 5 << 20
)

type roleStore interface {
	ListActiveRoles(ctx context.Context, userID, companyID uuid.UUID) ([]enums.MemberRole, error)
	ActiveMembership(ctx context.Context, userID uuid.UUID) (*models.CompanyMembership, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

type signupStash interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	SignupStashKey(stashID string) string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RegisterCompanyInput carries the founding flow fields: a new tenant with
// its first location and first user.
type RegisterCompanyInput struct {
	CompanyName  string `json:"company_name" validate:"required,min=1,max=120"`
	LocationName string `json:"location_name" validate:"required,min=1,max=120"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	FirstName    string `json:"first_name" validate:"required,min=1,max=120"`
	LastName     string `json:"last_name" validate:"required,min=1,max=120"`
	Username     string `json:"username" validate:"omitempty,min=2,max=60"`
}

// RegisterInput carries the join flow fields for an existing company.
type RegisterInput struct {
	CompanyID uuid.UUID `json:"company_id" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Password  string    `json:"password" validate:"required,min=8"`
	FirstName string    `json:"first_name" validate:"required,min=1,max=120"`
	LastName  string    `json:"last_name" validate:"required,min=1,max=120"`
	Username  string    `json:"username" validate:"omitempty,min=2,max=60"`
}

// SocialCompleteInput finishes a social signup with the provider's profile.
type SocialCompleteInput struct {
	Email      string `json:"email" validate:"required,email"`
	FirstName  string `json:"first_name" validate:"required,min=1,max=120"`
	LastName   string `json:"last_name" validate:"required,min=1,max=120"`
	Username   string `json:"username" validate:"omitempty,min=2,max=60"`
	PictureURL string `json:"picture_url" validate:"omitempty,url"`
}

// TokenPair is an access/refresh token couple.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Credentials bundle the tokens with the authenticated user.
type Credentials struct {
	TokenPair
	User models.User `json:"user"`
}

// Service implements registration, activation and the login session flows.
type Service interface {
	RegisterCompany(ctx context.Context, input RegisterCompanyInput) (*models.User, error)
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Activate(ctx context.Context, userID uuid.UUID, token string) (*Credentials, error)
	Login(ctx context.Context, email, password string) (*Credentials, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
	SocialStart(ctx context.Context, companyID uuid.UUID) (string, error)
	SocialComplete(ctx context.Context, stashID string, input SocialCompleteInput) (*Credentials, error)
}

type service struct {
	users      users.Repository
	companies  companies.Repository
	employees  employees.Repository
	roles      roleStore
	sessions   sessionManager
	activation *activation.Generator
	mail       mailer.Mailer
	blobs      gcs.BlobStore
	stash      signupStash
	httpClient *http.Client
	tx         txRunner
	jwt        config.JWTConfig
	passwords  config.PasswordConfig
	baseURL    string
	now        func() time.Time
}

// NewService wires the auth service with its collaborators.
func NewService(
	userRepo users.Repository,
	companyRepo companies.Repository,
	employeeRepo employees.Repository,
	roles roleStore,
	sessions sessionManager,
	tokens *activation.Generator,
	mail mailer.Mailer,
	blobs gcs.BlobStore,
	stash signupStash,
	tx txRunner,
	jwtCfg config.JWTConfig,
	passwords config.PasswordConfig,
	baseURL string,
) (Service, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if companyRepo == nil {
		return nil, fmt.Errorf("company repository required")
	}
	if employeeRepo == nil {
		return nil, fmt.Errorf("employee repository required")
	}
	if roles == nil {
		return nil, fmt.Errorf("role store required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("activation generator required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if stash == nil {
		return nil, fmt.Errorf("signup stash required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		users:      userRepo,
		companies:  companyRepo,
		employees:  employeeRepo,
		roles:      roles,
		sessions:   sessions,
		activation: tokens,
		mail:       mail,
		blobs:      blobs,
		stash:      stash,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tx:         tx,
		jwt:        jwtCfg,
		passwords:  passwords,
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
	}, nil
}

// RegisterCompany creates a tenant, its first location, the founding user
// with admin and superuser roles, all in one transaction, then mails the
// activation link. A mail failure fails the whole flow.
func (s *service) RegisterCompany(ctx context.Context, input RegisterCompanyInput) (*models.User, error) {
	if err := s.checkNewAccount(ctx, input.Email, input.Password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.CompanyName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}
	if strings.TrimSpace(input.LocationName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location name is required")
	}

	hash, err := security.HashPassword(input.Password, s.passwords)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:        users.NormalizeEmail(input.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		IsActive:     false,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		companyRepo := s.companies.WithTx(tx)

		company := &models.Company{Name: strings.TrimSpace(input.CompanyName)}
		if err := companyRepo.Create(ctx, company); err != nil {
			return err
		}
		location := &models.Location{
			Name:      strings.TrimSpace(input.LocationName),
			CompanyID: company.ID,
		}
		if err := companyRepo.CreateLocation(ctx, location); err != nil {
			return err
		}
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		employee := &models.Employee{
			UserID:     user.ID,
			Username:   usernameOrDefault(input.Username, user.Email),
			LocationID: &location.ID,
		}
		if err := s.employees.WithTx(tx).Create(ctx, employee); err != nil {
			return err
		}
		for _, role := range []enums.MemberRole{enums.MemberRoleAdmin, enums.MemberRoleSuperuser} {
			membership := &models.CompanyMembership{
				CompanyID: company.ID,
				UserID:    user.ID,
				Role:      role,
				Status:    enums.MembershipStatusActive,
			}
			if err := companyRepo.CreateMembership(ctx, membership); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.sendActivationMail(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Register joins an existing company: inactive user, employee bound to the
// company's first location, member role.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if input.CompanyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company id is required")
	}
	if err := s.checkNewAccount(ctx, input.Email, input.Password); err != nil {
		return nil, err
	}
	if _, err := s.companies.GetByID(ctx, input.CompanyID); err != nil {
		return nil, pkgdb.AsLookupError(err, "company")
	}
	locationID, err := s.firstLocationID(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(input.Password, s.passwords)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:        users.NormalizeEmail(input.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		IsActive:     false,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		employee := &models.Employee{
			UserID:     user.ID,
			Username:   usernameOrDefault(input.Username, user.Email),
			LocationID: locationID,
		}
		if err := s.employees.WithTx(tx).Create(ctx, employee); err != nil {
			return err
		}
		return s.companies.WithTx(tx).CreateMembership(ctx, &models.CompanyMembership{
			CompanyID: input.CompanyID,
			UserID:    user.ID,
			Role:      enums.MemberRoleMember,
			Status:    enums.MembershipStatusActive,
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.sendActivationMail(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Activate consumes an activation token. Every failure collapses into one
// generic outcome with no state change; success flips the account active and
// opens a session.
func (s *service) Activate(ctx context.Context, userID uuid.UUID, token string) (*Credentials, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if pkgdb.IsNotFound(err) {
			return nil, activationFailed()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	if user.IsActive {
		return nil, activationFailed()
	}
	if err := s.activation.Check(user, token); err != nil {
		return nil, activationFailed()
	}
	if err := s.users.MarkActive(ctx, user.ID); err != nil {
		return nil, err
	}
	user.IsActive = true
	return s.openSession(ctx, user)
}

// Login verifies the password and opens a session. Credential failures are
// indistinguishable from unknown accounts.
func (s *service) Login(ctx context.Context, email, password string) (*Credentials, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if pkgdb.IsNotFound(err) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, invalidCredentials()
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account is not active")
	}

	credentials, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if err := s.users.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		return nil, err
	}
	return credentials, nil
}

// Refresh rotates the redis session and mints a new access token carrying
// the same identity claims.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwt, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if err == session.ErrInvalidRefreshToken {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
		}
		return nil, err
	}

	access, err := pkgauth.MintAccessToken(s.jwt, s.now(), pkgauth.AccessTokenPayload{
		UserID:    claims.UserID,
		CompanyID: claims.CompanyID,
		Roles:     claims.Roles,
		JTI:       newAccessID,
	})
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: newRefresh}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no session")
	}
	return s.sessions.Revoke(ctx, accessID)
}

// SocialStart stashes the target company for a social signup and hands the
// client an opaque stash token to carry through the provider handshake.
func (s *service) SocialStart(ctx context.Context, companyID uuid.UUID) (string, error) {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return "", pkgdb.AsLookupError(err, "company")
	}
	stashID := uuid.NewString()
	if err := s.stash.Set(ctx, s.stash.SignupStashKey(stashID), companyID.String(), signupStashTTL); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stashing signup")
	}
	return stashID, nil
}

// SocialComplete finishes a social signup: the stashed company is read back,
// the account is created already active (the provider vouched for the
// email), the avatar is copied from the provider, and a session opens.
func (s *service) SocialComplete(ctx context.Context, stashID string, input SocialCompleteInput) (*Credentials, error) {
	if strings.TrimSpace(stashID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stash token is required")
	}
	stored, err := s.stash.Get(ctx, s.stash.SignupStashKey(stashID))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeActivationInvalid, "signup session expired")
	}
	companyID, err := uuid.Parse(stored)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeActivationInvalid, "signup session expired")
	}

	email := users.NormalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !pkgdb.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking email")
	}
	locationID, err := s.firstLocationID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	// Social accounts never use the password; a random throwaway hash keeps
	// the column non-empty.
	throwaway, err := security.GenerateTempPassword(32)
	if err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(throwaway, s.passwords)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		IsActive:     true,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		employee := &models.Employee{
			UserID:        user.ID,
			Username:      usernameOrDefault(input.Username, user.Email),
			LocationID:    locationID,
			EmailVerified: true,
		}
		if err := s.employees.WithTx(tx).Create(ctx, employee); err != nil {
			return err
		}
		return s.companies.WithTx(tx).CreateMembership(ctx, &models.CompanyMembership{
			CompanyID: companyID,
			UserID:    user.ID,
			Role:      enums.MemberRoleMember,
			Status:    enums.MembershipStatusActive,
		})
	})
	if err != nil {
		return nil, err
	}

	if input.PictureURL != "" {
		if err := s.copyProviderPicture(ctx, user.ID, input.PictureURL); err != nil {
			return nil, err
		}
	}
	if err := s.stash.Del(ctx, s.stash.SignupStashKey(stashID)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing signup stash")
	}
	return s.openSession(ctx, user)
}

func (s *service) checkNewAccount(ctx context.Context, email, password string) error {
	if users.NormalizeEmail(email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(password) < minPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !pkgdb.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking email")
	}
	return nil
}

func (s *service) firstLocationID(ctx context.Context, companyID uuid.UUID) (*uuid.UUID, error) {
	locations, err := s.companies.ListLocations(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, nil
	}
	id := locations[0].ID
	return &id, nil
}

// openSession resolves the user's tenant and roles, mints the JWT and stores
// the refresh session under the token's jti.
func (s *service) openSession(ctx context.Context, user *models.User) (*Credentials, error) {
	payload := pkgauth.AccessTokenPayload{UserID: user.ID, JTI: session.NewAccessID()}

	membership, err := s.roles.ActiveMembership(ctx, user.ID)
	if err != nil && !pkgdb.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}
	if membership != nil {
		payload.CompanyID = &membership.CompanyID
		roles, err := s.roles.ListActiveRoles(ctx, user.ID, membership.CompanyID)
		if err != nil {
			return nil, err
		}
		payload.Roles = roles
	}

	access, err := pkgauth.MintAccessToken(s.jwt, s.now(), payload)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sessions.Generate(ctx, payload.JTI)
	if err != nil {
		return nil, err
	}
	return &Credentials{
		TokenPair: TokenPair{AccessToken: access, RefreshToken: refresh},
		User:      *user,
	}, nil
}

func (s *service) sendActivationMail(ctx context.Context, user *models.User) error {
	token, err := s.activation.Make(user)
	if err != nil {
		return fmt.Errorf("minting activation token: %w", err)
	}
	link := fmt.Sprintf("%s/api/v1/auth/activate/%s/%s", s.baseURL, user.ID, token)
	body := fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"Welcome to CrystalIMS. Activate your account:\r\n\r\n%s\r\n\r\n"+
			"The link expires, so do not wait too long.\r\n",
		user.FirstName, link,
	)
	if err := s.mail.Send(ctx, user.Email, "Activate your CrystalIMS account", body); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending activation mail")
	}
	return nil
}

func (s *service) copyProviderPicture(ctx context.Context, userID uuid.UUID, pictureURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pictureURL, nil)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid picture url")
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetching provider picture")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("provider picture fetch returned %d", resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	key := fmt.Sprintf("avatars/user_%s", userID)
	body := io.LimitReader(resp.Body, socialPictureMax)
	if err := s.blobs.Upload(ctx, key, contentType, body); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing avatar")
	}
	return s.employees.SetAvatarKey(ctx, userID, key)
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func activationFailed() error {
	return pkgerrors.New(pkgerrors.CodeActivationInvalid, "activation link is invalid")
}

func usernameOrDefault(username, email string) string {
	username = strings.TrimSpace(username)
	if username != "" {
		return username
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
