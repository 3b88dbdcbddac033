package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/DioGolang/GoTrack/internal/domain/entity"
	"github.com/DioGolang/GoTrack/pkg/logger"
)

const DefaultTimeout = 10 * time.Second

type Gateway struct {
	client   outbound.OrderManagement
	validate *validatorv10.Validate
	timeout  time.Duration
	logger   logger.Logger
	tracer   trace.Tracer
	newKey   func() string
}

func NewGateway(client outbound.OrderManagement, timeout time.Duration, log logger.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		client:   client,
		validate: newValidator(),
		timeout:  timeout,
		logger:   log,
		tracer:   otel.Tracer("order-gateway"),
		newKey:   func() string { return uuid.NewString() },
	}
}

func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(createInputStructValidation, CreateInput{})
	return v
}

// createInputStructValidation rejects zero and negative amounts; decimal.Decimal carries no
// comparable tag semantics.
func createInputStructValidation(sl validatorv10.StructLevel) {
	in := sl.Current().Interface().(CreateInput)
	if !in.Amount.IsPositive() {
		sl.ReportError(in.Amount, "amount", "Amount", "positive", "")
	}
}

func (g *Gateway) CreateOrder(ctx context.Context, input CreateInput) (CreateOutput, error) {
	const op = "CreateOrder"
	if err := g.validate.Struct(input); err != nil {
		return CreateOutput{}, invalid(op, "", err)
	}

	req := outbound.CreateOrderRequest{
		IdempotencyKey:  input.IdempotencyKey,
		Amount:          input.Amount,
		Currency:        input.Currency,
		Description:     input.Description,
		DeliveryAddress: input.DeliveryAddress,
		RecipientName:   input.RecipientName,
		RecipientPhone:  input.RecipientPhone,
		PaymentMethod:   entity.PaymentMethod(input.PaymentMethod),
		RiderName:       input.RiderName,
		RiderPhone:      input.RiderPhone,
		BuyerEmail:      input.BuyerEmail,
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = g.newKey()
	}
	if req.Currency == "" {
		req.Currency = entity.DefaultCurrency
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = entity.PaymentBitcoin
	}

	var created outbound.CreatedOrder
	err := g.call(ctx, op, "", func(ctx context.Context) error {
		var err error
		created, err = g.client.CreateOrder(ctx, req)
		if err != nil {
			return err
		}
		return checkOrder(created.Order)
	})
	if err != nil {
		return CreateOutput{}, err
	}

	g.logger.Info(ctx, "Order created",
		logger.String("order_id", created.Order.ID),
		logger.String("amount", created.Order.Amount.String()),
		logger.Bool("invoice", created.Invoice != nil),
	)
	return CreateOutput{Order: created.Order, Invoice: created.Invoice}, nil
}

func (g *Gateway) SetStatus(ctx context.Context, input SetStatusInput) (entity.Order, error) {
	const op = "SetStatus"
	if err := g.validate.Struct(input); err != nil {
		return entity.Order{}, invalid(op, input.OrderID, err)
	}
	status, ok := entity.ParseStatus(input.Status)
	if !ok {
		return entity.Order{}, invalid(op, input.OrderID, fmt.Errorf("unknown status %q, want one of %v", input.Status, entity.Statuses()))
	}

	return g.orderCall(ctx, op, input.OrderID, func(ctx context.Context) (entity.Order, error) {
		return g.client.SetStatus(ctx, input.OrderID, status)
	})
}

func (g *Gateway) AssignDriver(ctx context.Context, input AssignDriverInput) (entity.Order, error) {
	const op = "AssignDriver"
	if err := g.validate.Struct(input); err != nil {
		return entity.Order{}, invalid(op, input.OrderID, err)
	}

	return g.orderCall(ctx, op, input.OrderID, func(ctx context.Context) (entity.Order, error) {
		return g.client.AssignDriver(ctx, outbound.AssignDriverRequest{
			OrderID:     input.OrderID,
			DriverID:    input.DriverID,
			DriverName:  input.DriverName,
			DriverPhone: input.DriverPhone,
		})
	})
}

func (g *Gateway) ConfirmDelivery(ctx context.Context, input ConfirmDeliveryInput) (entity.Order, error) {
	const op = "ConfirmDelivery"
	if err := g.validate.Struct(input); err != nil {
		return entity.Order{}, invalid(op, input.OrderID, err)
	}

	return g.orderCall(ctx, op, input.OrderID, func(ctx context.Context) (entity.Order, error) {
		return g.client.ConfirmDelivery(ctx, input.OrderID)
	})
}

func (g *Gateway) orderCall(ctx context.Context, op, orderID string, fn func(ctx context.Context) (entity.Order, error)) (entity.Order, error) {
	var out entity.Order
	err := g.call(ctx, op, orderID, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		if err != nil {
			return err
		}
		if out.ID != orderID {
			return fmt.Errorf("%w: expected order %q, got %q", ErrInvalidResponse, orderID, out.ID)
		}
		return checkOrder(out)
	})
	return out, err
}

// call runs one round trip under the command timeout. Failures are never retried here.
func (g *Gateway) call(ctx context.Context, op, orderID string, fn func(ctx context.Context) error) error {
	ctx, span := g.tracer.Start(ctx, op, trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	err := fn(callCtx)
	if err == nil {
		return nil
	}

	failure := &CommandFailure{Op: op, OrderID: orderID, Reason: err.Error(), Err: err}
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
		failure.Reason = "timeout"
		failure.Err = fmt.Errorf("%w after %s: %w", ErrCommandTimeout, g.timeout, err)
	case errors.Is(err, context.Canceled):
		failure.Reason = "cancelled"
	}

	span.RecordError(failure)
	span.SetStatus(codes.Error, failure.Reason)
	g.logger.Warn(ctx, "Order command failed",
		logger.String("op", op),
		logger.String("order_id", orderID),
		logger.String("reason", failure.Reason),
		logger.WithError(err),
	)
	return failure
}

func checkOrder(o entity.Order) error {
	if err := o.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}

func invalid(op, orderID string, err error) error {
	return &CommandFailure{
		Op:      op,
		OrderID: orderID,
		Reason:  err.Error(),
		Err:     fmt.Errorf("%w: %w", ErrInvalidCommand, err),
	}
}
