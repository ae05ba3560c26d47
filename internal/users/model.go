package users

import "time"

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleClient = "client"
)

var validRoles = map[string]struct{}{
	RoleAdmin:  {},
	RoleEditor: {},
	RoleClient: {},
}

func IsValidRole(role string) bool {
	_, ok := validRoles[role]
	return ok
}

type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	Company      string    `bson:"company,omitempty" json:"company,omitempty"`
	ProfileImage string    `bson:"profile_image,omitempty" json:"profileImage,omitempty"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Role         string    `bson:"role" json:"role"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

type CreateRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Name         string `json:"name" validate:"required,max=120"`
	Company      string `json:"company" validate:"max=120"`
	ProfileImage string `json:"profileImage" validate:"omitempty,url"`
	Password     string `json:"password" validate:"required,min=8"`
	Role         string `json:"role" validate:"required,oneof=admin editor client"`
}
