package auth

import (
	"fmt"

	"github.com/saomyaraj/ConvoSphere/internal/hub"
)

// SocketGate admits live connections by verifying their identity token.
// It implements hub.Gate; the hub owns the admit/reject decision, the
// signature verification itself is delegated to the auth service.
type SocketGate struct {
	svc *Service
}

// NewSocketGate builds a gate over the auth service.
func NewSocketGate(svc *Service) *SocketGate {
	return &SocketGate{svc: svc}
}

// Admit verifies the token and produces the identity used to construct
// the session. No resources exist for the connection before this
// succeeds.
func (g *SocketGate) Admit(token string) (hub.Identity, error) {
	if token == "" {
		return hub.Identity{}, fmt.Errorf("%w: no token provided", hub.ErrAuthFailure)
	}
	claims, err := g.svc.ValidateToken(token)
	if err != nil {
		return hub.Identity{}, fmt.Errorf("%w: %v", hub.ErrAuthFailure, err)
	}
	return hub.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}
