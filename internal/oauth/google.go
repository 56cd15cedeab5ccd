package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"

	"invoiceBack/internal/models"
)

// GoogleVerifier checks Google ID tokens against the configured client id.
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (models.GoogleIdentity, error) {
	if v.clientID == "" {
		return models.GoogleIdentity{}, errors.New("google sign-in is not configured")
	}
	if strings.TrimSpace(token) == "" {
		return models.GoogleIdentity{}, models.ErrInvalidCredentials
	}

	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return models.GoogleIdentity{}, fmt.Errorf("%w: %v", models.ErrInvalidCredentials, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return models.GoogleIdentity{}, fmt.Errorf("%w: token has no email", models.ErrInvalidCredentials)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return models.GoogleIdentity{}, fmt.Errorf("%w: email not verified by google", models.ErrInvalidCredentials)
	}
	name, _ := payload.Claims["name"].(string)

	return models.GoogleIdentity{
		Subject: payload.Subject,
		Email:   strings.ToLower(email),
		Name:    name,
	}, nil
}
