package models

import (
	"errors"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/domain"
	"github.com/sirupsen/logrus"
)

// UserClaims identify the caller of the user facing API.
type UserClaims struct {
	jwt.Claims
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

type GenerateUserTokenReq struct {
	UserId string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type AuthModel struct {
	app    *config.AppConfig
	logger *logrus.Entry
}

func NewAuthModel(app *config.AppConfig, logger *logrus.Logger) *AuthModel {
	return &AuthModel{
		app:    app,
		logger: logger.WithField("model", "auth"),
	}
}

// GenerateUserToken signs a user token with the API secret. Admin rights
// come from the configured admin email list.
func (m *AuthModel) GenerateUserToken(req *GenerateUserTokenReq) (string, error) {
	if req.UserId == "" {
		return "", domain.NewValidationFault(config.UserIdRequired)
	}
	sig, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: []byte(m.app.Client.Secret)}, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	cl := UserClaims{
		Claims: jwt.Claims{
			Issuer:    m.app.Client.ApiKey,
			Subject:   req.UserId,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Expiry:    jwt.NewNumericDate(now.Add(*m.app.Client.TokenValidity)),
		},
		Name:    req.Name,
		Email:   req.Email,
		IsAdmin: req.Email != "" && m.app.IsAdminEmail(req.Email),
	}

	return jwt.Signed(sig).Claims(cl).Serialize()
}

// VerifyUserToken checks signature, issuer and validity window.
func (m *AuthModel) VerifyUserToken(token string) (*UserClaims, error) {
	tok, err := jwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, err
	}

	out := new(UserClaims)
	if err = tok.Claims([]byte(m.app.Client.Secret), out); err != nil {
		return nil, err
	}
	if err = out.Validate(jwt.Expected{
		Issuer: m.app.Client.ApiKey,
		Time:   time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	if out.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	// the admin list may have changed since the token was issued
	out.IsAdmin = out.Email != "" && m.app.IsAdminEmail(out.Email)
	return out, nil
}
