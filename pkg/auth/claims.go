package auth

import (
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	CompanyID *uuid.UUID
	Roles     []enums.MemberRole
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID    uuid.UUID          `json:"user_id"`
	CompanyID *uuid.UUID         `json:"company_id,omitempty"`
	Roles     []enums.MemberRole `json:"roles"`
	jwt.RegisteredClaims
}
