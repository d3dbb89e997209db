package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles, from least to most privileged.
const (
	RoleGuest      = "guest"
	RoleBuyer      = "buyer"
	RoleSeller     = "seller"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superAdmin"
)

// User represents an account document. IsDelete is the soft-delete flag;
// reads must conjoin the not-deleted predicate explicitly (there are no
// implicit query hooks).
type User struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FullName string             `json:"fullname" bson:"fullname"`
	Email    string             `json:"email" bson:"email"`
	Password string             `json:"-" bson:"password"`
	Role     string             `json:"role" bson:"role"`
	Phone    string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Address  string             `json:"address,omitempty" bson:"address,omitempty"`
	IsVerify bool               `json:"isVerify" bson:"isVerify"`
	IsDelete bool               `json:"-" bson:"isDelete"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// SignUpRequest is the payload for account creation.
type SignUpRequest struct {
	FullName string `json:"fullname" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty" validate:"omitempty"`
	Address  string `json:"address,omitempty"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued token and the public user fields.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UpdateUserRequest is the payload for profile updates.
type UpdateUserRequest struct {
	FullName string `json:"fullname,omitempty" validate:"omitempty,min=2,max=100"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}
