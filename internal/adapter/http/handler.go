package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/waterorder/internal/app"
	"github.com/neomorfeo/waterorder/internal/domain"
)

// OrderResponse is the API representation of a water order.
type OrderResponse struct {
	OrderID         string `json:"orderId" doc:"Farm id and start time, e.g. MYFARM:20200116101010"`
	FarmID          string `json:"farmId" doc:"Farm the water is delivered to"`
	StartDateTime   string `json:"startDateTime" doc:"Delivery start (RFC 3339)"`
	Duration        string `json:"duration" doc:"Delivery length, e.g. 1h30m"`
	DurationSeconds int64  `json:"durationSeconds" doc:"Delivery length in whole seconds"`
	Status          string `json:"status" doc:"Lifecycle state" enum:"REQUESTED,IN_PROGRESS,DELIVERED,CANCELLED"`
	StatusMessage   string `json:"statusMessage" doc:"Human-readable status"`
}

func toOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		OrderID:         o.ID,
		FarmID:          o.FarmID,
		StartDateTime:   o.StartDateTime.Format(time.RFC3339),
		Duration:        o.Duration.String(),
		DurationSeconds: int64(o.Duration / time.Second),
		Status:          string(o.Status),
		StatusMessage:   o.Status.Message(),
	}
}

func toOrderResponses(orders []domain.Order) []OrderResponse {
	resp := make([]OrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	return resp
}

// --- Create Order ---

type CreateOrderInput struct {
	Body struct {
		FarmID        string    `json:"farmId" minLength:"1" maxLength:"100" doc:"Farm the water is delivered to"`
		StartDateTime time.Time `json:"startDateTime" doc:"Delivery start (RFC 3339), must be in the future"`
		Duration      string    `json:"duration" minLength:"1" doc:"Delivery length as a Go duration, e.g. 10m or 1h30m"`
	}
}

type CreateOrderOutput struct {
	Body OrderResponse
}

// --- Get Order ---

type GetOrderInput struct {
	OrderID string `path:"orderId" doc:"Order ID"`
}

type GetOrderOutput struct {
	Body OrderResponse
}

// --- List Orders ---

type ListOrdersInput struct {
	FarmID string `query:"farmid" required:"false" doc:"Only orders of this farm"`
}

type ListOrdersOutput struct {
	Body []OrderResponse
}

// --- Cancel Order ---

type CancelOrderInput struct {
	OrderID string `path:"orderId" doc:"Order ID"`
}

type CancelOrderOutput struct {
	Body OrderResponse
}

// Register adds all water order API routes to the Huma API.
func Register(api huma.API, svc *app.OrderService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-order",
		Method:        http.MethodPost,
		Path:          "/waterorders",
		Summary:       "Place a water order",
		Tags:          []string{"Water orders"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateOrderInput) (*CreateOrderOutput, error) {
		duration, err := time.ParseDuration(input.Body.Duration)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("duration: " + err.Error())
		}

		order, err := svc.CreateOrder(ctx, domain.Candidate{
			FarmID:        input.Body.FarmID,
			StartDateTime: input.Body.StartDateTime,
			Duration:      duration,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateOrderOutput{Body: toOrderResponse(order)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-order",
		Method:      http.MethodGet,
		Path:        "/waterorders/{orderId}",
		Summary:     "Get a water order by ID",
		Tags:        []string{"Water orders"},
	}, func(ctx context.Context, input *GetOrderInput) (*GetOrderOutput, error) {
		order, err := svc.GetOrder(ctx, input.OrderID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetOrderOutput{Body: toOrderResponse(order)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-orders",
		Method:      http.MethodGet,
		Path:        "/waterorders",
		Summary:     "List water orders",
		Description: "Lists every order, or the orders of one farm when farmid is given. " +
			"A farm without orders is reported as not found.",
		Tags: []string{"Water orders"},
	}, func(ctx context.Context, input *ListOrdersInput) (*ListOrdersOutput, error) {
		var (
			orders []domain.Order
			err    error
		)
		if input.FarmID != "" {
			orders, err = svc.ListOrdersForFarm(ctx, input.FarmID)
		} else {
			orders, err = svc.ListOrders(ctx)
		}
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ListOrdersOutput{Body: toOrderResponses(orders)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-order",
		Method:      http.MethodPut,
		Path:        "/waterorders/{orderId}/cancellation",
		Summary:     "Cancel a water order that has not started",
		Tags:        []string{"Water orders"},
	}, func(ctx context.Context, input *CancelOrderInput) (*CancelOrderOutput, error) {
		order, err := svc.CancelOrder(ctx, input.OrderID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CancelOrderOutput{Body: toOrderResponse(order)}, nil
	})
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	var nfErr *domain.NotFoundError
	if errors.As(err, &nfErr) {
		return huma.Error404NotFound(nfErr.Error())
	}

	var taskErr *domain.DeliveryTaskNotFoundError
	if errors.As(err, &taskErr) {
		return huma.Error404NotFound(taskErr.Error())
	}

	var invErr *domain.InvalidOrderError
	if errors.As(err, &invErr) {
		return huma.Error400BadRequest(invErr.Error())
	}

	var inErr *domain.InputError
	if errors.As(err, &inErr) {
		return huma.Error422UnprocessableEntity(inErr.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error409Conflict(trErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}
