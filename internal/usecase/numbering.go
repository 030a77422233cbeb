package usecase

import (
	"context"
	"time"

	"github.com/buyside/procure/internal/adapter/orderservice"
	"github.com/buyside/procure/internal/domain/repository"
)

// NumberResolver estimates the next safe sequential order number by
// reconciling the external service's records with the local mirror. It is a
// heuristic, not a lock: concurrent submissions can still collide and rely on
// the submitter's conflict loop.
type NumberResolver struct {
	orders repository.OrderRepository
	client orderservice.Client
	now    func() time.Time
}

// NewNumberResolver constructs a NumberResolver.
func NewNumberResolver(orders repository.OrderRepository, client orderservice.Client) *NumberResolver {
	return &NumberResolver{orders: orders, client: client, now: time.Now}
}

// NextNumber returns max(remote, local)+1, or 1 when both stores are empty.
// The remote side looks at the last 7 days, widening to 30 when nothing was
// issued recently. Always taking the larger of the two maxima avoids
// regressing into a number either store has already seen.
func (r *NumberResolver) NextNumber(ctx context.Context, tenantID int64, token string) (int64, error) {
	now := r.now()

	remote, err := r.client.ListOrders(ctx, token, now.AddDate(0, 0, -7), now)
	if err != nil {
		return 0, err
	}
	if len(remote) == 0 {
		remote, err = r.client.ListOrders(ctx, token, now.AddDate(0, 0, -30), now)
		if err != nil {
			return 0, err
		}
	}

	var remoteMax int64
	for _, order := range remote {
		if order.Number > remoteMax {
			remoteMax = order.Number
		}
	}

	localMax, err := r.orders.MaxNumber(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	next := remoteMax
	if localMax > next {
		next = localMax
	}
	return next + 1, nil
}
