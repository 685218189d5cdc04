package entity

import "time"

// User credenciales del emisor de identidad de desarrollo. El perfil vive aparte (Profile).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano
	CreatedAt    time.Time
}
