package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-DoctorBooking/internal/api/handlers"
	"github.com/m04kA/SMC-DoctorBooking/internal/domain"
	"github.com/m04kA/SMC-DoctorBooking/internal/infra/storage/account"
)

const (
	msgMissingCredentials = "требуется авторизация"
	msgInvalidToken       = "недействительный или просроченный токен"
	msgInvalidCredentials = "неверный email или пароль"
	msgInactiveAccount    = "учетная запись неактивна"
)

var (
	errInvalidClaims   = errors.New("invalid token claims")
	errInactiveAccount = errors.New("account is inactive")
)

// Claims полезная нагрузка JWT: id и роль учетной записи
type Claims struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth проверяет Bearer JWT (HS256) или, если разрешено, Basic-учетные данные
type Auth struct {
	secret     []byte
	allowBasic bool
	accounts   AccountLookup
	logger     Logger
}

func NewAuth(secret string, allowBasic bool, accounts AccountLookup, logger Logger) *Auth {
	return &Auth{
		secret:     []byte(secret),
		allowBasic: allowBasic,
		accounts:   accounts,
		logger:     logger,
	}
}

// Middleware кладет domain.Identity в контекст запроса либо отвечает 401
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))

		var (
			identity domain.Identity
			err      error
			msg      = msgInvalidToken
		)

		switch {
		case header == "":
			a.logger.Warn("Auth - Missing credentials: %s %s", r.Method, r.URL.Path)
			handlers.RespondUnauthorized(w, msgMissingCredentials)
			return

		case strings.HasPrefix(header, "Bearer "):
			identity, err = a.fromToken(r, strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))

		case a.allowBasic && strings.HasPrefix(header, "Basic "):
			msg = msgInvalidCredentials
			identity, err = a.fromBasic(r)

		default:
			a.logger.Warn("Auth - Unsupported authorization scheme: %s %s", r.Method, r.URL.Path)
			handlers.RespondUnauthorized(w, msgMissingCredentials)
			return
		}

		if err != nil {
			switch {
			case errors.Is(err, errInactiveAccount):
				a.logger.Warn("Auth - Inactive account: %v", err)
				handlers.RespondUnauthorized(w, msgInactiveAccount)

			case errors.Is(err, errInvalidClaims),
				errors.Is(err, account.ErrAccountNotFound),
				errors.Is(err, account.ErrInvalidCredentials),
				errors.Is(err, account.ErrUnknownRole),
				errors.Is(err, jwt.ErrTokenMalformed),
				errors.Is(err, jwt.ErrTokenExpired),
				errors.Is(err, jwt.ErrTokenNotValidYet),
				errors.Is(err, jwt.ErrTokenSignatureInvalid),
				errors.Is(err, jwt.ErrTokenUnverifiable),
				errors.Is(err, jwt.ErrTokenInvalidClaims):
				a.logger.Warn("Auth - Rejected credentials: %v", err)
				handlers.RespondUnauthorized(w, msg)

			default:
				a.logger.Error("Auth - Failed to resolve identity: %v", err)
				handlers.RespondInternalError(w)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

func (a *Auth) fromToken(r *http.Request, raw string) (domain.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Identity{}, err
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: id %q", errInvalidClaims, claims.ID)
	}

	role := domain.Role(claims.Role)
	switch role {
	case domain.RolePatient:
		return domain.Identity{UserID: id, Role: role}, nil
	case domain.RoleDoctor:
		return domain.Identity{UserID: id, Role: role, DoctorID: id}, nil
	case domain.RoleReceptionist:
		// врач регистратора хранится только в БД
		acc, err := a.accounts.FindByID(r.Context(), role, id)
		if err != nil {
			return domain.Identity{}, err
		}
		if !acc.IsActive || acc.LinkedDoctorID == nil {
			return domain.Identity{}, fmt.Errorf("%w: receptionist %s", errInactiveAccount, id)
		}
		return acc.Identity(), nil
	default:
		return domain.Identity{}, fmt.Errorf("%w: role %q", errInvalidClaims, claims.Role)
	}
}

func (a *Auth) fromBasic(r *http.Request) (domain.Identity, error) {
	email, password, ok := r.BasicAuth()
	if !ok {
		return domain.Identity{}, account.ErrInvalidCredentials
	}

	acc, err := a.accounts.VerifyPassword(r.Context(), email, password)
	if err != nil {
		return domain.Identity{}, err
	}
	if acc.Role == domain.RoleReceptionist && acc.LinkedDoctorID == nil {
		return domain.Identity{}, fmt.Errorf("%w: receptionist %s", errInactiveAccount, acc.ID)
	}

	return acc.Identity(), nil
}
