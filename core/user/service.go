package user

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/wayteam/way-backend/core"
)

var (
	// errors
	ErrNotFound        = errors.New("user not found")
	ErrEmailExists     = errors.New("a user with this email already exists")
	ErrAlreadyVerified = errors.New("account is already verified")
	ErrInvalidCode     = errors.New("invalid code")
	ErrCodeExpired     = errors.New("code has expired")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, logger: logger}
}

func (svc *Service) CheckEmailUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a new unverified User and emails them a verification code.
// The verification email is best-effort; a failed send does not fail registration.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		FullName:    nu.FullName,
		Email:       nu.Email,
		PhoneNumber: nu.PhoneNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}

	if err := svc.SendVerificationCode(ctx, usr.Email); err != nil {
		svc.logger.Error("sending verification code", err)
	}
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

// SendVerificationCode generates a fresh email verification code, stores its
// hash and emails it to the user. Fails if the account is already verified.
func (svc *Service) SendVerificationCode(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if usr.Verified {
		return ErrAlreadyVerified
	}

	code, err := GenerateCode()
	if err != nil {
		return err
	}
	usr.VerificationCodeHash = HashCode(code)
	usr.VerificationCodeExpiry = NowFunc().UTC().Add(core.Conf.VerificationCodeTTL)
	usr.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return err
	}

	return svc.mailSvc.SendMessage(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		Subject:      "Email Verification Code",
		TemplateName: "user-verification-code",
		TemplateData: codeEmailData{
			FullName:   usr.FullName,
			Code:       code,
			TTLMinutes: int(core.Conf.VerificationCodeTTL.Minutes()),
		},
	})
}

// VerifyEmail checks the submitted code and marks the account verified.
func (svc *Service) VerifyEmail(ctx context.Context, ve VerifyEmail) (User, error) {
	usr, err := svc.GetByEmail(ctx, ve.Email)
	if err != nil {
		return User{}, err
	}
	if usr.Verified {
		return User{}, ErrAlreadyVerified
	}
	if err = checkCode(usr.VerificationCodeHash, usr.VerificationCodeExpiry, ve.Code); err != nil {
		return User{}, err
	}

	usr.Verified = true
	usr.VerificationCodeHash = nil
	usr.VerificationCodeExpiry = time.Time{}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// RequestPasswordReset emails a reset code to the account, if it exists.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := GenerateCode()
	if err != nil {
		return err
	}
	usr.ResetCodeHash = HashCode(code)
	usr.ResetCodeExpiry = NowFunc().UTC().Add(core.Conf.VerificationCodeTTL)
	usr.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return err
	}

	return svc.mailSvc.SendMessage(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		Subject:      "Password Reset Code",
		TemplateName: "user-password-reset-code",
		TemplateData: codeEmailData{
			FullName:   usr.FullName,
			Code:       code,
			TTLMinutes: int(core.Conf.VerificationCodeTTL.Minutes()),
		},
	})
}

// VerifyResetCode checks a reset code without consuming it, so the frontend
// can gate its new-password form.
func (svc *Service) VerifyResetCode(ctx context.Context, vr VerifyResetCode) error {
	usr, err := svc.GetByEmail(ctx, vr.Email)
	if err != nil {
		return err
	}
	return checkCode(usr.ResetCodeHash, usr.ResetCodeExpiry, vr.Code)
}

// SetNewPassword consumes a valid reset code and stores the new password.
func (svc *Service) SetNewPassword(ctx context.Context, sp SetNewPassword) error {
	usr, err := svc.GetByEmail(ctx, sp.Email)
	if err != nil {
		return err
	}
	if err = checkCode(usr.ResetCodeHash, usr.ResetCodeExpiry, sp.Code); err != nil {
		return err
	}
	if err = usr.SetPassword(sp.Password); err != nil {
		return err
	}

	usr.ResetCodeHash = nil
	usr.ResetCodeExpiry = time.Time{}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}

// UpdateProfile applies self-service profile changes.
func (svc *Service) UpdateProfile(ctx context.Context, id string, up UpdateProfile) (User, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if up.FullName != "" {
		usr.FullName = up.FullName
	}
	if up.PhoneNumber != "" {
		usr.PhoneNumber = up.PhoneNumber
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteUsersByID(ctx, ids...)
	return err
}

type codeEmailData struct {
	FullName   string
	Code       string
	TTLMinutes int
}
