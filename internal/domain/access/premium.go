// Package access decide qué documentos ve un actor y qué acciones de equipo puede hacer.
//
// Todas las funciones son totales: perfiles, empresas, permisos o fechas ausentes
// degradan al resultado de menor privilegio (no premium, no visible, no mutable).
// Las decisiones son de UX; la política de filas de la base de datos es la barrera real.
package access

import (
	"time"

	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// IsPremium calcula el estado premium efectivo.
// Para roles corporativos manda la suscripción de la empresa; si org es nil se usa p.Organization.
func IsPremium(p *entity.Profile, org *entity.Organization, now time.Time) bool {
	if org == nil && p != nil {
		org = p.Organization
	}
	switch p.RoleOrNormal() {
	case entity.RoleAdmin:
		return true
	case entity.RolePremiumCorporate, entity.RoleCorporateChief, entity.RoleCorporateStaff:
		return org != nil && activeUntil(org.SubscriptionEndDate, now)
	case entity.RolePremiumIndividual:
		return activeUntil(p.SubscriptionEndDate, now)
	case entity.RoleNormal:
		return false
	}
	return false
}

// activeUntil: estrictamente mayor; en la igualdad exacta ya venció.
func activeUntil(end *time.Time, now time.Time) bool {
	return end != nil && end.After(now)
}

// EffectiveReminderDays los recordatorios son solo para premium; el valor pedido se ignora si no lo es.
func EffectiveReminderDays(premium bool, requested int) int {
	if !premium || requested < 0 {
		return 0
	}
	return requested
}
