package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/evraklab-api/internal/application/auth"
	"github.com/jhoicas/evraklab-api/internal/application/document"
	"github.com/jhoicas/evraklab-api/internal/application/invitation"
	"github.com/jhoicas/evraklab-api/internal/application/team"
	"github.com/jhoicas/evraklab-api/internal/application/usecase"
	"github.com/jhoicas/evraklab-api/internal/domain/entity"
)

// HealthCheck comprueba una dependencia externa (base de datos, almacenamiento).
type HealthCheck func(ctx context.Context) error

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC         *auth.AuthUseCase
	Documents      *document.Service
	Team           *team.Service
	Invitations    *invitation.Service
	NotificationUC *usecase.NotificationUseCase
	ChatUC         *usecase.ChatUseCase
	AdminUC        *usecase.AdminUseCase
	Sessions       SessionLoader
	JWTSecret      string
	// Opcionales.
	MetricsHandler nethttp.Handler
	HealthChecks   map[string]HealthCheck
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", healthHandler(deps.HealthChecks))
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token y perfil)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.Sessions))
	protected.Get("/me", authHandler.Me)

	docHandler := NewDocumentHandler(deps.Documents)
	docs := protected.Group("/documents")
	docs.Get("/", docHandler.List)
	docs.Post("/", docHandler.Upload)
	docs.Get("/stats", docHandler.Stats)
	docs.Get("/:id", docHandler.Get)
	docs.Put("/:id", docHandler.Update)
	docs.Delete("/:id", docHandler.Delete)
	docs.Post("/:id/renew", docHandler.Renew)

	defs := protected.Group("/definitions")
	defs.Get("/", docHandler.Definitions)
	defs.Post("/", docHandler.AddDefinition)
	defs.Put("/:id", docHandler.RenameDefinition)
	defs.Delete("/:id", docHandler.DeleteDefinition)

	// Equipo: todo exige empresa salvo canjear un código.
	inOrg := RequireOrganization()
	teamHandler := NewTeamHandler(deps.Team, deps.Invitations)
	teamGroup := protected.Group("/team")
	teamGroup.Post("/join", teamHandler.RequestJoin)
	teamGroup.Get("/", inOrg, teamHandler.Overview)
	teamGroup.Post("/codes", inOrg, teamHandler.CreateCode)
	teamGroup.Post("/invites", inOrg, teamHandler.SendEmailInvite)
	teamGroup.Delete("/invitations/:id", inOrg, teamHandler.CancelInvitation)
	teamGroup.Post("/leave", inOrg, teamHandler.Leave)
	teamGroup.Post("/members/:id/role", inOrg, teamHandler.ToggleRole)
	teamGroup.Put("/members/:id/permissions", inOrg, teamHandler.SetPermission)
	teamGroup.Delete("/members/:id", teamHandler.Kick) // el admin expulsa sin pertenecer a la empresa

	notifHandler := NewNotificationHandler(deps.NotificationUC, deps.Invitations)
	notifs := protected.Group("/notifications")
	notifs.Get("/", notifHandler.List)
	notifs.Post("/read-all", notifHandler.MarkAllRead)
	notifs.Post("/:id/read", notifHandler.MarkRead)
	notifs.Post("/:id/approve", notifHandler.Approve)
	notifs.Post("/:id/reject", notifHandler.Reject)
	notifs.Post("/:id/accept", notifHandler.Accept)
	notifs.Post("/:id/decline", notifHandler.Decline)
	notifs.Delete("/:id", notifHandler.Delete)

	chatHandler := NewChatHandler(deps.ChatUC)
	chat := protected.Group("/chat", inOrg)
	chat.Get("/messages", chatHandler.Messages)
	chat.Post("/forward", chatHandler.Forward)

	// Admin del sistema
	adminHandler := NewAdminHandler(deps.AdminUC)
	admin := protected.Group("/admin", RequireRole(entity.RoleAdmin))
	admin.Post("/corporate-plans", adminHandler.ProvisionCorporatePlan)
	admin.Get("/organizations", adminHandler.Organizations)
	admin.Put("/organizations/:id", adminHandler.UpdateOrganization)
	admin.Delete("/organizations/:id", adminHandler.DeleteOrganization)
	admin.Get("/profiles", adminHandler.Profiles)
	admin.Post("/announcements", adminHandler.Announce)
}

// healthHandler 200 si todas las comprobaciones pasan, 503 con el detalle si alguna falla.
func healthHandler(checks map[string]HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		status := fiber.StatusOK
		out := fiber.Map{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = fiber.StatusServiceUnavailable
				out["status"] = "degraded"
				out[name] = err.Error()
				continue
			}
			out[name] = "ok"
		}
		return c.Status(status).JSON(out)
	}
}
