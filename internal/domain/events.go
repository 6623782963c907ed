package domain

import (
	"context"
	"time"
)

// Event bus topics
const (
	TopicCategoryCreated    = "catalog:category_created"
	TopicProductCreated     = "catalog:product_created"
	TopicProductUpdated     = "catalog:product_updated"
	TopicProductDeactivated = "catalog:product_deactivated"
)

// OperationEvent is published for every admin mutation and recorded in the operator log
type OperationEvent struct {
	OprID    int64
	RemoteIP string
	Action   string
	Desc     string
	Time     time.Time
}

type remoteIPKey struct{}

// WithRemoteIP attaches the caller address to ctx
func WithRemoteIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, remoteIPKey{}, ip)
}

func RemoteIPFrom(ctx context.Context) string {
	ip, _ := ctx.Value(remoteIPKey{}).(string)
	return ip
}
