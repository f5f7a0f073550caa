package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jcorner/storefront/app/models"
	"github.com/jcorner/storefront/app/repositories"
	"github.com/jcorner/storefront/pkg/apperror"
	"github.com/jcorner/storefront/pkg/auth"
	"github.com/jcorner/storefront/pkg/logger"
	"github.com/jcorner/storefront/pkg/validate"
)

const (
	mobileNoLength    = 11
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt input limit

	msgUserNotFound    = "User not found"
	msgEmailInvalid    = "Email invalid"
	msgMobileInvalid   = "Mobile number invalid"
	msgPasswordTooWeak = "Password must be atleast 8 characters"
	msgPasswordTooLong = "Password must not exceed 72 bytes"
	msgEmailTaken      = "Email already registered"
)

// Registration is the input to Register.
type Registration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	MobileNo  string `json:"mobileNo"`
	Password  string `json:"password"`
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type UserService struct {
	users      UserRepository
	tokens     TokenIssuer
	bcryptCost int
}

func NewUserService(users UserRepository, tokens TokenIssuer, bcryptCost int) *UserService {
	return &UserService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

// Register creates a regular account. Email, mobile number and password
// are checked in that order and the first failure is returned.
func (s *UserService) Register(ctx context.Context, in Registration) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)

	switch {
	case !validEmail(in.Email):
		return nil, apperror.Validationf(msgEmailInvalid)
	case len(in.MobileNo) != mobileNoLength:
		return nil, apperror.Validationf(msgMobileInvalid)
	case len(in.Password) < minPasswordLength:
		return nil, apperror.Validationf(msgPasswordTooWeak)
	case len(in.Password) > maxPasswordBytes:
		return nil, apperror.Validationf(msgPasswordTooLong)
	}

	fields := map[string]string{}
	if strings.TrimSpace(in.FirstName) == "" {
		fields["firstName"] = "First name is required"
	}
	if strings.TrimSpace(in.LastName) == "" {
		fields["lastName"] = "Last name is required"
	}
	if len(fields) > 0 {
		return nil, apperror.ValidationFields("First name and last name are required", fields)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperror.Wrap(err, "Internal Server Error")
	}

	u := &models.User{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     in.Email,
		MobileNo:  in.MobileNo,
		Password:  hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.Conflictf(msgEmailTaken)
		}
		return nil, apperror.Wrap(err, "Internal Server Error")
	}

	logger.WithCtx(ctx).Info("user registered", "user_id", u.ID.Hex())
	return u, nil
}

// Login checks the credentials and returns a signed access token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if !validEmail(email) {
		return "", apperror.Validationf("Invalid Email")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", notFound(err, "No email Found")
	}
	if !auth.CheckPassword(u.Password, password) {
		return "", apperror.Unauthorizedf("Email and password do not match")
	}

	token, err := s.tokens.Issue(auth.Identity{UserID: u.ID.Hex(), Email: u.Email, IsAdmin: u.IsAdmin})
	if err != nil {
		return "", apperror.Wrap(err, "Internal Server Error")
	}
	return token, nil
}

func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	return u, nil
}

// ByEmail looks a user up by email address.
func (s *UserService) ByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	return u, nil
}

// List returns every user. An empty store yields an empty slice.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, "Internal Server Error")
	}
	return users, nil
}

// SetAdmin grants or revokes the admin role.
func (s *UserService) SetAdmin(ctx context.Context, userID string, admin bool) (*models.User, error) {
	u, err := s.users.SetAdmin(ctx, userID, admin)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	logger.WithCtx(ctx).Info("admin role changed", "user_id", userID, "is_admin", admin)
	return u, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	switch {
	case len(newPassword) < minPasswordLength:
		return apperror.Validationf(msgPasswordTooWeak)
	case len(newPassword) > maxPasswordBytes:
		return apperror.Validationf(msgPasswordTooLong)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperror.Wrap(err, "Internal Server Error")
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return notFound(err, msgUserNotFound)
	}
	return nil
}

// UpdateProfile applies the supplied fields. Email and mobile number are
// checked by the ProfileUpdate tags, the same rules Register applies.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	if upd.Empty() {
		return nil, apperror.Validationf("No fields to update")
	}

	if upd.Email != nil {
		email := strings.TrimSpace(*upd.Email)
		upd.Email = &email
	}
	fields := validate.Struct(upd)
	if upd.FirstName != nil && strings.TrimSpace(*upd.FirstName) == "" {
		fields["firstName"] = "First name cannot be empty"
	}
	if upd.LastName != nil && strings.TrimSpace(*upd.LastName) == "" {
		fields["lastName"] = "Last name cannot be empty"
	}
	if len(fields) > 0 {
		return nil, apperror.ValidationFields(validate.First(fields), fields)
	}

	u, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperror.Conflictf(msgEmailTaken)
		}
		return nil, notFound(err, msgUserNotFound)
	}
	return u, nil
}
