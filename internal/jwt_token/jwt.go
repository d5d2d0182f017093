package jwttoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"idproof/internal/kyc/models"
	dErrors "idproof/pkg/domain-errors"
	"idproof/pkg/requestcontext"
)

const reviewAudienceSuffix = "/review"

// Claims are carried by the bearer tokens of the application shells that drive
// verification sessions.
type Claims struct {
	CallerID string `json:"caller_id"`
	jwt.RegisteredClaims
}

// ReviewClaims identify one manual review case for the admin review surface.
type ReviewClaims struct {
	SessionID string `json:"session_id"`
	CaseID    string `json:"case_id"`
	Priority  string `json:"priority"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
	reviewTTL  time.Duration
}

func NewJWTService(signingKey string, issuer string, audience string, reviewTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		reviewTTL:  reviewTTL,
	}
}

// GenerateCallerToken signs a bearer token for an application shell.
func (s *JWTService) GenerateCallerToken(callerID string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	return s.sign(Claims{
		CallerID: callerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   callerID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := s.parse(tokenString, claims, s.audience); err != nil {
		return nil, err
	}
	if claims.CallerID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// IssueReviewTicket signs a ticket the review surface uses to claim the case. The
// ticket names the case; it carries no contact data and no scores.
func (s *JWTService) IssueReviewTicket(ctx context.Context, id models.SessionID, review models.ManualReview) (string, error) {
	now := requestcontext.Now(ctx)
	return s.sign(ReviewClaims{
		SessionID: id.String(),
		CaseID:    review.CaseID,
		Priority:  string(review.Priority),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   review.CaseID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.reviewTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience + reviewAudienceSuffix},
			ID:        uuid.NewString(),
		},
	})
}

func (s *JWTService) ValidateReviewTicket(tokenString string) (*ReviewClaims, error) {
	claims := &ReviewClaims{}
	if err := s.parse(tokenString, claims, s.audience+reviewAudienceSuffix); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *JWTService) sign(claims jwt.Claims) (string, error) {
	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims, audience string) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(audience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return nil
}
