package port

import (
	"context"

	"github.com/videoplat/video-processing-service/internal/domain/entity"
)

// IdentityClient looks up user profiles on the auth service. Implementations
// degrade to a placeholder profile when the service is unreachable, so
// processing never blocks on identity availability.
type IdentityClient interface {
	GetUserByID(ctx context.Context, userID string) (*entity.UserProfile, error)
}
