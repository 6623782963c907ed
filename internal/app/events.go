package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/karadag/storefront/internal/domain"
	"github.com/karadag/storefront/pkg/common"
	"github.com/karadag/storefront/pkg/metrics"
)

var operationTopics = []string{
	domain.TopicCategoryCreated,
	domain.TopicProductCreated,
	domain.TopicProductUpdated,
	domain.TopicProductDeactivated,
}

// subscribeEvents records every admin mutation in the operator log
func (a *Application) subscribeEvents() {
	for _, topic := range operationTopics {
		if err := a.bus.SubscribeAsync(topic, a.recordOperation, false); err != nil {
			zap.L().Error("subscribe failed", zap.String("topic", topic), zap.Error(err))
		}
	}
}

func (a *Application) recordOperation(ev domain.OperationEvent) {
	metrics.Incr("storefront_" + ev.Action)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	st, err := a.Stores(ctx)
	if err != nil {
		zap.L().Warn("oprlog dropped", zap.String("action", ev.Action), zap.Error(err))
		return
	}
	err = st.OprLogs.Create(ctx, &domain.SysOprLog{
		ID:        common.UUIDint64(),
		OprID:     ev.OprID,
		OprIp:     ev.RemoteIP,
		OptAction: ev.Action,
		OptDesc:   ev.Desc,
		OptTime:   ev.Time,
	})
	if err != nil {
		zap.L().Error("oprlog write failed", zap.String("action", ev.Action), zap.Error(err))
	}
}
