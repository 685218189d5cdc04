package invitation

import (
	"net/mail"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/evraklab-api/internal/domain"
)

// NormalizeEmail valida la dirección y la pliega para comparar sin distinguir mayúsculas.
func NormalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.Invalid("email", "requerido")
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", domain.Invalid("email", "formato inválido")
	}
	// Caser no es seguro entre goroutines: uno por llamada.
	return cases.Fold().String(addr.Address), nil
}
