package repository

// Repositories conjunto de repositorios atados a una misma unidad de trabajo (pool o tx).
type Repositories struct {
	Profiles      ProfileRepository
	Organizations OrganizationRepository
	Documents     DocumentRepository
	Invitations   InvitationRepository
	Notifications NotificationRepository
	Messages      MessageRepository
	Definitions   DefinitionRepository
}
