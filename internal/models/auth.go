package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleIncharge UserRole = "INCHARGE"
	RoleFaculty  UserRole = "FACULTY"
)

// JWTClaims represents the JWT payload for access tokens. Tokens are issued
// by the identity service; this API only validates them. FacultyID and
// UserID are alternative shapes for the same identity, normalised by the
// identity guard.
type JWTClaims struct {
	UserID       string   `json:"user_id"`
	FacultyID    string   `json:"faculty_id"`
	DepartmentID string   `json:"department_id"`
	Role         UserRole `json:"role"`
	Email        string   `json:"email"`
	FullName     string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Incharge is the canonical caller identity after guard resolution.
type Incharge struct {
	FacultyID    string `json:"faculty_id"`
	DepartmentID string `json:"department_id"`
}
