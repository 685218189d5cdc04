package ports

// Recorder métricas de negocio. NopRecorder cuando no hay backend.
type Recorder interface {
	AccessDenied(operation string)
	InvitationTransition(transition string)
}

// NopRecorder no registra nada.
type NopRecorder struct{}

func (NopRecorder) AccessDenied(string)         {}
func (NopRecorder) InvitationTransition(string) {}
