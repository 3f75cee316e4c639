package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más la identidad de acceso del usuario.
// Las filiales viajan en el token para que el filtro de acceso no consulte la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string   `json:"user_id"`
	IsAdmin   bool     `json:"is_admin"`
	BranchIDs []string `json:"branch_ids,omitempty"`
	SectorIDs []string `json:"sector_ids,omitempty"`
}

// Identity datos de acceso que se firman en el token.
type Identity struct {
	UserID    string
	IsAdmin   bool
	BranchIDs []string
	SectorIDs []string
}

// Generate genera un token JWT firmado con la identidad indicada.
func Generate(secret string, id Identity, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:    id.UserID,
		IsAdmin:   id.IsAdmin,
		BranchIDs: id.BranchIDs,
		SectorIDs: id.SectorIDs,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve la identidad.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (*Identity, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims inválidos")
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("claims inválidos: user_id vacío")
	}
	return &Identity{
		UserID:    claims.UserID,
		IsAdmin:   claims.IsAdmin,
		BranchIDs: claims.BranchIDs,
		SectorIDs: claims.SectorIDs,
	}, nil
}
