package service

import (
	"context"

	"github.com/yndnr/cricket-go/internal/core/domain"
)

// Caller performs one backend call. args fill the endpoint's path
// placeholders; body is sent as JSON when non-nil and a JSON response is
// decoded into out when non-nil.
type Caller interface {
	Call(ctx context.Context, ep domain.Endpoint, args []string, body, out any) error
}
