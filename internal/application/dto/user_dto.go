package dto

import "time"

// RegisterRequest entrada para registro de usuario.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"omitempty,max=200"`
	JobTitle string `json:"job_title" validate:"omitempty,max=100"`
}

// UserResponse salida de un usuario (sin password) con sus concesiones.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	BranchIDs []string  `json:"branch_ids"`
	SectorIDs []string  `json:"sector_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// GrantRequest asignación de filiales y sectores a un usuario (solo admin).
type GrantRequest struct {
	BranchIDs []string `json:"branch_ids" validate:"dive,uuid"`
	SectorIDs []string `json:"sector_ids" validate:"dive,uuid"`
}
