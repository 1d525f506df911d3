package identity

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jengzang/greenguardian-backend-go/internal/models"
	"google.golang.org/api/option"
)

type ctxKey struct{}

// With returns a context carrying uid
func With(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, uid)
}

// FromContext returns the caller's uid, or models.GuestUID when none is set
func FromContext(ctx context.Context) string {
	if uid, ok := ctx.Value(ctxKey{}).(string); ok && uid != "" {
		return uid
	}
	return models.GuestUID
}

// IsGuest reports whether uid is the guest sentinel
func IsGuest(uid string) bool {
	return uid == "" || uid == models.GuestUID
}

// Verifier turns a bearer token into a stable user id
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

var ErrInvalidToken = errors.New("invalid token")

// JWTVerifier accepts HS256 tokens signed with a shared secret.
// The uid is read from the "uid" claim, falling back to "sub".
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates an HS256 verifier
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Claims is the token payload understood by JWTVerifier
type Claims struct {
	UID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	uid := claims.UID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return "", fmt.Errorf("%w: no uid or sub claim", ErrInvalidToken)
	}
	return uid, nil
}

// Sign issues a token for uid; used by the CLI and tests
func (v *JWTVerifier) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// FirebaseVerifier checks Firebase Auth ID tokens
type FirebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier initializes the Firebase admin SDK from a service account file
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsPath string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (string, error) {
	t, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return t.UID, nil
}
