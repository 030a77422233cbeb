package test

import (
	"context"
	"time"

	"github.com/buyside/procure/internal/adapter/orderservice"
)

// OrderServiceStub implements the external client with overridable functions.
type OrderServiceStub struct {
	RefreshTokenFn    func(context.Context, string) (*orderservice.TokenPair, error)
	ListOrdersFn      func(context.Context, string, time.Time, time.Time) ([]orderservice.OrderSummary, error)
	CreateOrderFn     func(context.Context, string, orderservice.OrderPayload) (*orderservice.CreatedOrder, error)
	ReversePayablesFn func(context.Context, string, int64) error

	CreatePayloads []orderservice.OrderPayload
	Reversed       []int64
	ListCalls      []ListCall
}

// ListCall records one ListOrders invocation.
type ListCall struct {
	From time.Time
	To   time.Time
}

func (s *OrderServiceStub) RefreshToken(ctx context.Context, refreshToken string) (*orderservice.TokenPair, error) {
	if s.RefreshTokenFn != nil {
		return s.RefreshTokenFn(ctx, refreshToken)
	}
	return &orderservice.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600}, nil
}

func (s *OrderServiceStub) ListOrders(ctx context.Context, token string, from, to time.Time) ([]orderservice.OrderSummary, error) {
	s.ListCalls = append(s.ListCalls, ListCall{From: from, To: to})
	if s.ListOrdersFn != nil {
		return s.ListOrdersFn(ctx, token, from, to)
	}
	return nil, nil
}

func (s *OrderServiceStub) CreateOrder(ctx context.Context, token string, payload orderservice.OrderPayload) (*orderservice.CreatedOrder, error) {
	s.CreatePayloads = append(s.CreatePayloads, payload)
	if s.CreateOrderFn != nil {
		return s.CreateOrderFn(ctx, token, payload)
	}
	return &orderservice.CreatedOrder{ID: 1, Number: 1}, nil
}

func (s *OrderServiceStub) ReversePayables(ctx context.Context, token string, externalID int64) error {
	s.Reversed = append(s.Reversed, externalID)
	if s.ReversePayablesFn != nil {
		return s.ReversePayablesFn(ctx, token, externalID)
	}
	return nil
}
