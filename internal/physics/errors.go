package physics

import (
	"errors"
	"fmt"

	"github.com/san-kum/particlesim/internal/particle"
)

// Precondition violations. These signal caller bugs and are never clamped.
var (
	// ErrNegativeCount is returned by Initialize for count < 0.
	ErrNegativeCount = particle.ErrNegativeCount

	// ErrInvalidBounds indicates a non-positive or non-finite world size.
	ErrInvalidBounds = errors.New("physics: world width and height must be positive")

	// ErrInvalidDamping indicates damping outside (0, 1].
	ErrInvalidDamping = errors.New("physics: damping must be in (0, 1]")

	// ErrInvalidForceRadius indicates a force radius <= 0.
	ErrInvalidForceRadius = errors.New("physics: force radius must be positive")

	// ErrNonFiniteForce indicates a NaN or infinite force centre or strength.
	ErrNonFiniteForce = errors.New("physics: force centre and strength must be finite")

	// ErrNegativeDt indicates a negative or non-finite timestep.
	ErrNegativeDt = errors.New("physics: dt must be non-negative")

	// ErrInvalidParams indicates tuning constants that break the broad-phase or
	// the restitution model.
	ErrInvalidParams = errors.New("physics: invalid parameters")
)

func paramError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}
