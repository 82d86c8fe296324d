package employees

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/elizabethadegbaju/crystalims/internal/companies"
	"github.com/elizabethadegbaju/crystalims/internal/users"
	"github.com/elizabethadegbaju/crystalims/pkg/activation"
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

const tempPasswordLength = 12

var allowedAvatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

type userStore interface {
	WithTx(tx *gorm.DB) users.Repository
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type membershipWriter interface {
	WithTx(tx *gorm.DB) companies.Repository
	CreateMembership(ctx context.Context, membership *models.CompanyMembership) error
}

type locationChecker interface {
	LocationInCompany(ctx context.Context, companyID, locationID uuid.UUID) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AddEmployeeInput carries the fields a manager supplies when onboarding a
// team member. The account starts inactive with a throwaway password; the
// activation mail carries both.
type AddEmployeeInput struct {
	Email      string     `json:"email" validate:"required,email"`
	FirstName  string     `json:"first_name" validate:"required,min=1,max=120"`
	LastName   string     `json:"last_name" validate:"required,min=1,max=120"`
	Username   string     `json:"username" validate:"omitempty,min=2,max=60"`
	LocationID *uuid.UUID `json:"location_id"`
}

// ProfileInput carries the self-service editable profile fields.
type ProfileInput struct {
	FirstName  string     `json:"first_name" validate:"required,min=1,max=120"`
	LastName   string     `json:"last_name" validate:"required,min=1,max=120"`
	Username   string     `json:"username" validate:"required,min=2,max=60"`
	LocationID *uuid.UUID `json:"location_id"`
}

// Profile joins a user with their employee record for display.
type Profile struct {
	User      models.User     `json:"user"`
	Employee  models.Employee `json:"employee"`
	AvatarURL string          `json:"avatar_url,omitempty"`
}

// Service manages employee onboarding, profiles and avatars.
type Service interface {
	Team(ctx context.Context, companyID uuid.UUID) ([]TeamMember, error)
	TeamCount(ctx context.Context, companyID uuid.UUID) (int64, error)
	Profile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	MemberProfile(ctx context.Context, companyID, userID uuid.UUID) (*Profile, error)
	AddEmployee(ctx context.Context, companyID, actorID uuid.UUID, input AddEmployeeInput) (*Profile, error)
	UpdateProfile(ctx context.Context, companyID, userID uuid.UUID, input ProfileInput) (*Profile, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, contentType string, body io.Reader) (string, error)
}

type service struct {
	repo        Repository
	users       userStore
	memberships membershipWriter
	locations   locationChecker
	blobs       gcs.BlobStore
	mail        mailer.Mailer
	tokens      *activation.Generator
	tx          txRunner
	passwords   config.PasswordConfig
	baseURL     string
}

// NewService wires an employee service with its collaborators.
func NewService(
	repo Repository,
	userRepo userStore,
	memberships membershipWriter,
	locations locationChecker,
	blobs gcs.BlobStore,
	mail mailer.Mailer,
	tokens *activation.Generator,
	tx txRunner,
	passwords config.PasswordConfig,
	baseURL string,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("employee repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user store required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("membership writer required")
	}
	if locations == nil {
		return nil, fmt.Errorf("location checker required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("activation generator required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        repo,
		users:       userRepo,
		memberships: memberships,
		locations:   locations,
		blobs:       blobs,
		mail:        mail,
		tokens:      tokens,
		tx:          tx,
		passwords:   passwords,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *service) Team(ctx context.Context, companyID uuid.UUID) ([]TeamMember, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	members, err := s.repo.ListTeam(ctx, companyID)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if members[i].AvatarKey != nil {
			members[i].AvatarURL = s.blobs.PublicURL(*members[i].AvatarKey)
		}
	}
	return members, nil
}

func (s *service) TeamCount(ctx context.Context, companyID uuid.UUID) (int64, error) {
	if companyID == uuid.Nil {
		return 0, fmt.Errorf("company id is required")
	}
	return s.repo.CountTeam(ctx, companyID)
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "user")
	}
	employee, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "employee")
	}
	return s.buildProfile(user, employee), nil
}

// MemberProfile resolves a colleague's profile. A lookup outside the caller's
// company is indistinguishable from a missing one.
func (s *service) MemberProfile(ctx context.Context, companyID, userID uuid.UUID) (*Profile, error) {
	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company id is required")
	}
	ok, err := s.repo.InCompany(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "team member not found")
	}
	return s.Profile(ctx, userID)
}

// AddEmployee onboards a team member: a new inactive user with a temporary
// password, their profile, and a member-role grant, all in one transaction.
// The activation mail carries the temporary password and activation link.
func (s *service) AddEmployee(ctx context.Context, companyID, actorID uuid.UUID, input AddEmployeeInput) (*Profile, error) {
	if companyID == uuid.Nil || actorID == uuid.Nil {
		return nil, fmt.Errorf("company and actor ids are required")
	}
	email := users.NormalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name are required")
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !pkgdb.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking email")
	}
	if input.LocationID != nil {
		ok, err := s.locations.LocationInCompany(ctx, companyID, *input.LocationID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "location not found in company")
		}
	}

	tempPassword, err := security.GenerateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("generating temporary password: %w", err)
	}
	hash, err := security.HashPassword(tempPassword, s.passwords)
	if err != nil {
		return nil, fmt.Errorf("hashing temporary password: %w", err)
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = usernameFromEmail(email)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		IsActive:     false,
	}
	employee := &models.Employee{Username: username, LocationID: input.LocationID}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		employee.UserID = user.ID
		if err := s.repo.WithTx(tx).Create(ctx, employee); err != nil {
			return err
		}
		return s.memberships.WithTx(tx).CreateMembership(ctx, &models.CompanyMembership{
			CompanyID:       companyID,
			UserID:          user.ID,
			Role:            enums.MemberRoleMember,
			Status:          enums.MembershipStatusActive,
			GrantedByUserID: &actorID,
		})
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Make(user)
	if err != nil {
		return nil, fmt.Errorf("minting activation token: %w", err)
	}
	if err := s.mail.Send(ctx, user.Email,
		"You have been added to a CrystalIMS workspace",
		s.onboardingBody(user, tempPassword, token),
	); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending activation mail")
	}

	return s.buildProfile(user, employee), nil
}

func (s *service) UpdateProfile(ctx context.Context, companyID, userID uuid.UUID, input ProfileInput) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "user")
	}
	employee, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "employee")
	}
	if strings.TrimSpace(input.Username) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if input.LocationID != nil {
		ok, err := s.locations.LocationInCompany(ctx, companyID, *input.LocationID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "location not found in company")
		}
	}

	user.FirstName = strings.TrimSpace(input.FirstName)
	user.LastName = strings.TrimSpace(input.LastName)
	employee.Username = strings.TrimSpace(input.Username)
	employee.LocationID = input.LocationID

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Save(ctx, user); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Save(ctx, employee)
	})
	if err != nil {
		return nil, err
	}
	return s.buildProfile(user, employee), nil
}

// UploadAvatar stores the image under a stable per-user key so re-uploads
// overwrite instead of piling up.
func (s *service) UploadAvatar(ctx context.Context, userID uuid.UUID, contentType string, body io.Reader) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("user id is required")
	}
	if !allowedAvatarTypes[contentType] {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "avatar must be png, jpeg or webp")
	}
	if body == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "avatar body is required")
	}
	if _, err := s.repo.GetByUserID(ctx, userID); err != nil {
		return "", pkgdb.AsLookupError(err, "employee")
	}

	key := avatarKey(userID)
	if err := s.blobs.Upload(ctx, key, contentType, body); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "uploading avatar")
	}
	if err := s.repo.SetAvatarKey(ctx, userID, key); err != nil {
		return "", err
	}
	return s.blobs.PublicURL(key), nil
}

func (s *service) buildProfile(user *models.User, employee *models.Employee) *Profile {
	profile := &Profile{User: *user, Employee: *employee}
	if employee.AvatarKey != nil {
		profile.AvatarURL = s.blobs.PublicURL(*employee.AvatarKey)
	}
	return profile
}

func (s *service) onboardingBody(user *models.User, tempPassword, token string) string {
	link := fmt.Sprintf("%s/api/v1/auth/activate/%s/%s", s.baseURL, user.ID, token)
	return fmt.Sprintf(
		"Hello %s,\r\n\r\n"+
			"An account has been created for you.\r\n\r\n"+
			"Temporary password: %s\r\n"+
			"Activate your account: %s\r\n\r\n"+
			"Please change your password after your first login.\r\n",
		user.FirstName, tempPassword, link,
	)
}

func avatarKey(userID uuid.UUID) string {
	return fmt.Sprintf("avatars/user_%s", userID)
}

func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
