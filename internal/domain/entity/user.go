package entity

import "time"

// User cuenta de acceso. La contraseña se guarda como hash bcrypt.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Name         string
	IsAdmin      bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserProfile concesiones del usuario: filiales y sectores.
type UserProfile struct {
	UserID    string
	JobTitle  string
	BranchIDs []string
	SectorIDs []string
	UpdatedAt time.Time
}

// Principal arma la identidad de acceso a partir del usuario y su perfil.
func (u *User) Principal(profile *UserProfile) Principal {
	p := Principal{UserID: u.ID, IsAdmin: u.IsAdmin}
	if profile != nil {
		p.BranchIDs = append([]string(nil), profile.BranchIDs...)
		p.SectorIDs = append([]string(nil), profile.SectorIDs...)
	}
	return p
}
