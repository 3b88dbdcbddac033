package order

import (
	"context"
	"time"

	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/metrics"
)

type GatewayMetricsDecorator struct {
	Next    CommandGateway
	Metrics metrics.Metrics
}

func (d *GatewayMetricsDecorator) CreateOrder(ctx context.Context, input CreateInput) (CreateOutput, error) {
	start := time.Now()
	output, err := d.Next.CreateOrder(ctx, input)
	d.Metrics.RecordUseCaseExecution("CreateOrder", err == nil, time.Since(start))
	return output, err
}

func (d *GatewayMetricsDecorator) SetStatus(ctx context.Context, input SetStatusInput) (entity.Order, error) {
	start := time.Now()
	output, err := d.Next.SetStatus(ctx, input)
	d.Metrics.RecordUseCaseExecution("SetStatus", err == nil, time.Since(start))
	return output, err
}

func (d *GatewayMetricsDecorator) AssignDriver(ctx context.Context, input AssignDriverInput) (entity.Order, error) {
	start := time.Now()
	output, err := d.Next.AssignDriver(ctx, input)
	d.Metrics.RecordUseCaseExecution("AssignDriver", err == nil, time.Since(start))
	return output, err
}

func (d *GatewayMetricsDecorator) ConfirmDelivery(ctx context.Context, input ConfirmDeliveryInput) (entity.Order, error) {
	start := time.Now()
	output, err := d.Next.ConfirmDelivery(ctx, input)
	d.Metrics.RecordUseCaseExecution("ConfirmDelivery", err == nil, time.Since(start))
	return output, err
}
