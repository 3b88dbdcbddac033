package order

import (
	"context"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
)

// CommandGateway issues request/response commands against the order-management
// collaborator. Every failure is a *CommandFailure.
type CommandGateway interface {
	CreateOrder(ctx context.Context, input CreateInput) (CreateOutput, error)
	SetStatus(ctx context.Context, input SetStatusInput) (entity.Order, error)
	AssignDriver(ctx context.Context, input AssignDriverInput) (entity.Order, error)
	ConfirmDelivery(ctx context.Context, input ConfirmDeliveryInput) (entity.Order, error)
}
