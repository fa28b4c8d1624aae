// Аутентификация и авторизация пользователей.
//
// Основные возможности:
//   - Вход по email и паролю с выдачей пары JWT токенов.
//   - Регистрация новых пользователей, если она разрешена конфигурацией.
//   - Продление access токена по refresh токену.
package aidoc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/aisa-it/aidoc/internal/aidoc/apierrors"
	"github.com/aisa-it/aidoc/internal/aidoc/dao"
	"github.com/aisa-it/aidoc/internal/aidoc/notifications"
)

type Authentication struct {
	db           *gorm.DB
	secret       []byte
	emailService *notifications.EmailService
}

type AuthContext struct {
	echo.Context
	User         *dao.User
	AccessToken  *Token
	RefreshToken *Token
}

type AuthConfig struct {
	Secret  []byte
	DB      *gorm.DB
	Skipper middleware.Skipper
}

func AuthMiddleware(config AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == "OPTIONS" {
				return c.NoContent(http.StatusOK)
			}

			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}

			var refreshToken *Token
			var accessToken *Token

			schema, tokenString, ok := strings.Cut(c.Request().Header.Get("Authorization"), " ")
			if !ok {
				// Cookie token
				schema = "Cookies"
				if accessCookie, err := c.Cookie("access_token"); err == nil && accessCookie != nil {
					accessToken = new(Token)
					accessToken.SignedString = accessCookie.Value
					accessToken.Type = "access"
				}

				if refreshCookie, err := c.Cookie("refresh_token"); err == nil && refreshCookie != nil {
					refreshToken = new(Token)
					refreshToken.SignedString = refreshCookie.Value
					refreshToken.Type = "refresh"
				}

				if refreshToken == nil && accessToken == nil {
					return EErrorDefined(c, apierrors.ErrAccessTokenRequired)
				}
			}

			if schema != "Cookies" {
				accessToken = new(Token)
				accessToken.SignedString = strings.TrimSpace(tokenString)
				accessToken.Type = "access"
			}

			keyFunc := func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return config.Secret, nil
			}

			var accessError error
			if accessToken != nil {
				accessToken.JWT, accessError = jwt.Parse(accessToken.SignedString, keyFunc)
			}

			if refreshToken != nil {
				var refreshError error
				refreshToken.JWT, refreshError = jwt.Parse(refreshToken.SignedString, keyFunc)
				if refreshError != nil {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}
			}

			var user *dao.User

			// Prolong if expired
			if errors.Is(accessError, jwt.ErrTokenExpired) || accessToken == nil {
				var err error
				accessToken, user, err = config.tokenProlong(c, refreshToken)
				if accessToken == nil || user == nil {
					return err
				}
			} else if accessError != nil {
				return EErrorDefined(c, apierrors.ErrTokenInvalid)
			} else {
				claims, ok := accessToken.JWT.Claims.(jwt.MapClaims)
				if !ok || !accessToken.JWT.Valid {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}

				userId, _ := claims["user_id"].(string)
				user = new(dao.User)
				if err := config.DB.
					Joins("LastWorkspace").
					Where("users.id = ?", userId).
					First(user).Error; err != nil {
					return EErrorDefined(c, apierrors.ErrTokenInvalid)
				}
			}

			if !user.IsActive {
				return EErrorDefined(c, apierrors.ErrTokenInvalid)
			}

			tm := time.Now()
			if err := config.DB.Model(user).Update("last_active", &tm).Error; err != nil {
				EError(c, err)
			}

			return next(AuthContext{c, user, accessToken, refreshToken})
		}
	}
}

func (a *AuthConfig) tokenProlong(c echo.Context, token *Token) (*Token, *dao.User, error) {
	if token == nil || token.JWT == nil {
		return nil, nil, EErrorDefined(c, apierrors.ErrTokenExpired)
	}

	claims, ok := token.JWT.Claims.(jwt.MapClaims)
	if !ok || !token.JWT.Valid {
		return nil, nil, EErrorDefined(c, apierrors.ErrTokenInvalid)
	}

	userId, _ := claims["user_id"].(string)

	var user dao.User
	if err := a.DB.
		Joins("LastWorkspace").
		Where("users.id = ?", userId).
		First(&user).Error; err != nil {
		return nil, nil, EErrorDefined(c, apierrors.ErrTokenInvalid)
	}

	accessToken, refreshToken, err := createAuthTokens(user.ID.String())
	if err != nil {
		return nil, nil, EError(c, err)
	}

	setAuthCookies(c, accessToken, refreshToken)

	return accessToken, &user, nil
}

func AddAuthenticationServices(db *gorm.DB, e *echo.Echo, secret []byte, emailService *notifications.EmailService) *Authentication {
	ret := &Authentication{db, secret, emailService}

	e.POST("api/sign-in/", ret.emailLogin)
	e.POST("api/sign-up/", ret.emailSignup)
	e.POST("api/sign-out/", ret.logout)
	return ret
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// emailLogin godoc
// @id emailLogin
// @Summary Пользователи: вход пользователя
// @Description Аутентифицирует пользователя по email и паролю
// @Tags Users
// @Accept json
// @Produce json
// @Param data body LoginRequest true "Данные для входа пользователя"
// @Success 200 {object} map[string]interface{} "Токены доступа и информация о пользователе"
// @Failure 401 {object} apierrors.DefinedError "Неудачный вход в систему"
// @Failure 500 {object} apierrors.DefinedError "Внутренняя ошибка сервера"
// @Router /api/sign-in [post]
func (a *Authentication) emailLogin(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Email == "" || req.Password == "" {
		return EErrorDefined(c, apierrors.ErrLoginCredentialsRequired)
	}

	var user dao.User
	if err := a.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EErrorDefined(c, apierrors.ErrFailedLogin)
		}
		return EError(c, err)
	}

	if !user.IsActive {
		return EErrorDefined(c, apierrors.ErrFailedLogin)
	}

	if !checkPassword(req.Password, user.Password) {
		return EErrorDefined(c, apierrors.ErrFailedLogin)
	}

	tm := time.Now()
	user.LastActive = &tm
	user.LastLoginTime = &tm
	user.LastLoginIp = c.RealIP()
	if err := a.db.Model(&user).Select("LastActive", "LastLoginTime", "LastLoginIp").Updates(&user).Error; err != nil {
		return EError(c, err)
	}

	accessToken, refreshToken, err := createAuthTokens(user.ID.String())
	if err != nil {
		return EError(c, err)
	}

	setAuthCookies(c, accessToken, refreshToken)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"access_token":  accessToken.SignedString,
		"refresh_token": refreshToken.SignedString,
		"user":          user.ToLightDTO(),
	})
}

type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// emailSignup godoc
// @id emailSignup
// @Summary Пользователи: регистрация пользователя
// @Description Создает нового пользователя, если регистрация разрешена
// @Tags Users
// @Accept json
// @Produce json
// @Param data body SignupRequest true "Данные для регистрации"
// @Success 200 {object} map[string]interface{} "Токены доступа и информация о пользователе"
// @Failure 403 {object} apierrors.DefinedError "Регистрация отключена"
// @Failure 409 {object} apierrors.DefinedError "Пользователь уже существует"
// @Router /api/sign-up [post]
func (a *Authentication) emailSignup(c echo.Context) error {
	if !cfg.SignUpEnable {
		return EErrorDefined(c, apierrors.ErrSignupDisabled)
	}

	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return EError(c, err)
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if req.Email == "" || req.Password == "" {
		return EErrorDefined(c, apierrors.ErrLoginCredentialsRequired)
	}

	if !ValidateEmail(req.Email) {
		return EErrorDefined(c, apierrors.ErrLoginCredentialsRequired)
	}

	exist, err := dao.UserExists(a.db, req.Email)
	if err != nil {
		return EError(c, err)
	}
	if exist {
		return EErrorDefined(c, apierrors.ErrUserAlreadyExist)
	}

	user := dao.User{
		ID:        dao.GenUUID(),
		Email:     req.Email,
		Password:  dao.GenPasswordHash(req.Password),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
	}

	if err := a.db.Create(&user).Error; err != nil {
		return EError(c, err)
	}

	accessToken, refreshToken, err := createAuthTokens(user.ID.String())
	if err != nil {
		return EError(c, err)
	}

	setAuthCookies(c, accessToken, refreshToken)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"access_token":  accessToken.SignedString,
		"refresh_token": refreshToken.SignedString,
		"user":          user.ToLightDTO(),
	})
}

// logout godoc
// @id logout
// @Summary Пользователи: выход пользователя
// @Description Сбрасывает auth куки
// @Tags Users
// @Success 200
// @Router /api/sign-out [post]
func (a *Authentication) logout(c echo.Context) error {
	clearAuthCookies(c)
	return c.NoContent(http.StatusOK)
}
