// README: Firebase Admin SDK initialisation and ID token verifier for back-office staff.
package infra

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// StaffToken is what the HTTP boundary needs from a verified ID token.
type StaffToken struct {
	UID  string
	Role string
}

// TokenVerifier verifies a raw ID token string.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*StaffToken, error)
}

type firebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier creates a TokenVerifier backed by the Firebase Admin SDK.
// An empty credentialsFile falls back to application-default credentials.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (TokenVerifier, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Auth: %w", err)
	}
	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*StaffToken, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return &StaffToken{UID: token.UID, Role: RoleFromClaims(token.Claims)}, nil
}

// RoleFromClaims reads the custom "role" claim set by the staff admin tooling.
func RoleFromClaims(claims map[string]interface{}) string {
	role, _ := claims["role"].(string)
	return strings.ToLower(strings.TrimSpace(role))
}
