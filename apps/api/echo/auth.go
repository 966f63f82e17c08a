package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/wayteam/way-backend/core"
	"github.com/wayteam/way-backend/core/admin"
	"github.com/wayteam/way-backend/core/tutor"
	"github.com/wayteam/way-backend/core/user"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	appJWTConfig = middleware.JWTConfig{
		SigningKey:    core.Conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "userToken",
		Claims:        new(Claims),
	}
	contextUserKey = "user"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Verified bool   `json:"verified,omitempty"`
	IsAdmin  bool   `json:"is_admin,omitempty"` // -> ADMIN PORTAL
	IsTutor  bool   `json:"is_tutor,omitempty"` // -> TUTOR PORTAL
	Role     string `json:"role,omitempty"`     // admin role
}

func newStandardClaims(subject string) jwt.StandardClaims {
	now := time.Now()
	return jwt.StandardClaims{
		Issuer:    core.Conf.AppName,
		Subject:   subject,
		ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
		IssuedAt:  now.Unix(),
	}
}

func GetUserClaims(usr user.User) *Claims {
	return &Claims{
		StandardClaims: newStandardClaims(usr.ID),
		FullName:       usr.FullName,
		Email:          usr.Email,
		Verified:       usr.Verified,
	}
}

func GetAdminClaims(adm admin.Admin) *Claims {
	return &Claims{
		StandardClaims: newStandardClaims(adm.ID),
		FullName:       adm.FullName,
		Email:          adm.Email,
		Verified:       true,
		IsAdmin:        true,
		Role:           adm.Role,
	}
}

func GetTutorClaims(t tutor.Tutor) *Claims {
	return &Claims{
		StandardClaims: newStandardClaims(t.ID),
		FullName:       t.FullName,
		Email:          t.Email,
		Verified:       true,
		IsTutor:        true,
	}
}

func authenticateUser(ctx context.Context, email, pwd string, svc *user.Service) (*Claims, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if usr, err = svc.SetLastLogin(ctx, usr); err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return GetUserClaims(usr), nil
}

func authenticateAdmin(ctx context.Context, email, pwd string, svc *admin.Service) (*Claims, error) {
	adm, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding admin by email")
	}
	if err = adm.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !adm.Active {
		return nil, errAccountDeactivated
	}
	if adm, err = svc.SetLastLogin(ctx, adm); err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return GetAdminClaims(adm), nil
}

func authenticateTutor(ctx context.Context, email, pwd string, svc *tutor.Service) (*Claims, error) {
	t, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == tutor.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding tutor by email")
	}
	if len(t.PasswordHash) == 0 {
		return nil, errAuthenticationFailed
	}
	if err = t.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !t.Active {
		return nil, errAccountDeactivated
	}
	return GetTutorClaims(t), nil
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc *user.Service) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, err
	}
	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}
