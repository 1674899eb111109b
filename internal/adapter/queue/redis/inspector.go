package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/user/ingest-pipeline/internal/domain"
)

// Inspector implements domain.QueueInspector for the event stream.
type Inspector struct {
	client *redis.Client
	stream string
}

// NewInspector creates a new Inspector over the given stream.
func NewInspector(client *redis.Client, stream string) *Inspector {
	return &Inspector{client: client, stream: stream}
}

// GroupInfo returns all consumer groups attached to the event stream.
func (i *Inspector) GroupInfo(ctx context.Context) ([]domain.ConsumerGroupInfo, error) {
	groups, err := i.client.XInfoGroups(ctx, i.stream).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get group info for stream %s: %w", i.stream, err)
	}

	result := make([]domain.ConsumerGroupInfo, len(groups))
	for n, g := range groups {
		result[n] = domain.ConsumerGroupInfo{
			Name:            g.Name,
			Consumers:       g.Consumers,
			Pending:         g.Pending,
			LastDeliveredID: g.LastDeliveredID,
		}
	}
	return result, nil
}

// PendingSummary summarizes deliveries handed to the group but not yet
// acknowledged.
func (i *Inspector) PendingSummary(ctx context.Context, group string) (*domain.PendingSummary, error) {
	pending, err := i.client.XPending(ctx, i.stream, group).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get pending summary for group %s: %w", group, err)
	}

	return &domain.PendingSummary{
		Total:          pending.Count,
		FirstMessageID: pending.Lower,
		LastMessageID:  pending.Higher,
		ConsumerTotals: pending.Consumers,
	}, nil
}
