package entity

import "time"

// DefinitionCategory catálogo al que pertenece una definición.
type DefinitionCategory string

const (
	DefinitionDocType  DefinitionCategory = "doc_type"
	DefinitionLocation DefinitionCategory = "location"
)

// Valid informa si la categoría es conocida.
func (c DefinitionCategory) Valid() bool {
	return c == DefinitionDocType || c == DefinitionLocation
}

// Definition etiqueta propia del usuario para tipos de documento y ubicaciones.
type Definition struct {
	ID        string
	UserID    string
	Category  DefinitionCategory
	Label     string
	CreatedAt time.Time
}
