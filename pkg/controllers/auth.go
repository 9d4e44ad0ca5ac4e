package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/mynaparrot/meethub-server/pkg/config"
	"github.com/mynaparrot/meethub-server/pkg/models"
)

// AuthController holds dependencies for auth-related handlers.
type AuthController struct {
	AppConfig *config.AppConfig
	AuthModel *models.AuthModel
}

// NewAuthController creates a new AuthController.
func NewAuthController(config *config.AppConfig, authModel *models.AuthModel) *AuthController {
	return &AuthController{
		AppConfig: config,
		AuthModel: authModel,
	}
}

// HandleAuthHeaderCheck is a middleware to check API-KEY & HASH-SIGNATURE.
// HASH-SIGNATURE is the hex encoded hmac sha256 of the body using the secret.
func (ac *AuthController) HandleAuthHeaderCheck(c *fiber.Ctx) error {
	apiKey := c.Get("API-KEY", "")
	signature := c.Get("HASH-SIGNATURE", "")
	body := c.Body()

	if apiKey != ac.AppConfig.Client.ApiKey {
		c.Status(fiber.StatusUnauthorized)
		return sendCommonResponse(c, false, "invalid API key")
	}
	if signature == "" {
		c.Status(fiber.StatusUnauthorized)
		return sendCommonResponse(c, false, "hash signature value required")
	}

	mac := hmac.New(sha256.New, []byte(ac.AppConfig.Client.Secret))
	mac.Write(body)
	expectedSignature := hex.EncodeToString(mac.Sum(nil))
	if subtle.ConstantTimeCompare([]byte(expectedSignature), []byte(signature)) != 1 {
		c.Status(fiber.StatusUnauthorized)
		return sendCommonResponse(c, false, "can't verify provided information")
	}

	return c.Next()
}

// HandleVerifyHeaderToken is a middleware to verify the user token sent in
// the Authorization header.
func (ac *AuthController) HandleVerifyHeaderToken(c *fiber.Ctx) error {
	authToken := strings.TrimSpace(strings.TrimPrefix(c.Get("Authorization"), "Bearer "))
	if authToken == "" {
		c.Status(fiber.StatusUnauthorized)
		return sendCommonResponse(c, false, "Authorization header is missing")
	}

	claims, err := ac.AuthModel.VerifyUserToken(authToken)
	if err != nil {
		errMsg := "invalid token"
		if errors.Is(err, jwt.ErrExpired) {
			errMsg = "token expired"
		}
		c.Status(fiber.StatusUnauthorized)
		return sendCommonResponse(c, false, errMsg)
	}

	c.Locals(localUserId, claims.Subject)
	c.Locals(localIsAdmin, claims.IsAdmin)
	c.Locals(localEmail, claims.Email)
	c.Locals(localName, claims.Name)

	return c.Next()
}

// HandleAdminOnly must run after HandleVerifyHeaderToken.
func (ac *AuthController) HandleAdminOnly(c *fiber.Ctx) error {
	if _, isAdmin := requestUser(c); !isAdmin {
		c.Status(fiber.StatusForbidden)
		return sendCommonResponse(c, false, config.OnlyAdminCanRequest)
	}
	return c.Next()
}

// HandleGenerateUserToken issues a user token. It sits behind the API key
// check so only the integrating backend can mint tokens.
func (ac *AuthController) HandleGenerateUserToken(c *fiber.Ctx) error {
	req := new(models.GenerateUserTokenReq)
	if err := parseRequest(c, req); err != nil {
		return sendFault(c, err)
	}

	token, err := ac.AuthModel.GenerateUserToken(req)
	if err != nil {
		return sendFault(c, err)
	}

	return sendResponse(c, fiber.Map{
		"token":   token,
		"expires": ac.AppConfig.Client.TokenValidity.Seconds(),
	})
}

// HandleGetMe echoes the caller identity carried in the token.
func (ac *AuthController) HandleGetMe(c *fiber.Ctx) error {
	userId, isAdmin := requestUser(c)
	return sendResponse(c, fiber.Map{
		"user": fiber.Map{
			"userId":  userId,
			"name":    c.Locals(localName),
			"email":   c.Locals(localEmail),
			"isAdmin": isAdmin,
		},
	})
}
