package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"healthdash/internal/analysis"
)

// Insight kinds accepted by LoadInsight
const (
	KindSteps        = "steps"
	KindSleep        = "sleep"
	KindConditioning = "conditioning"
	KindRHRZone2     = "rhr"
	KindRecovery     = "recovery"
	KindTrends       = "trends"
	KindCorrelations = "correlations"
	KindGoals        = "goals"
)

// InsightKinds lists every kind in display order
var InsightKinds = []string{
	KindSteps, KindSleep, KindConditioning, KindRHRZone2,
	KindRecovery, KindTrends, KindCorrelations, KindGoals,
}

// ErrUnknownKind is returned for an insight kind LoadInsight doesn't know
var ErrUnknownKind = errors.New("unknown insight kind")

// CorrelationList wraps correlation insights so every payload is an object
type CorrelationList struct {
	Insights []analysis.CorrelationInsight `json:"insights"`
}

// LoadInsight builds the payload for kind as of now
func LoadInsight(ctx context.Context, ins Insights, kind string, now time.Time) (any, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindSteps:
		return ins.Steps(ctx, now)
	case KindSleep:
		return ins.Sleep(ctx, now)
	case KindConditioning:
		return ins.Conditioning(ctx, now)
	case KindRHRZone2, "rhr-zone2", "readiness":
		return ins.RHRZone2(ctx, now)
	case KindRecovery:
		return ins.Recovery(ctx, now)
	case KindTrends:
		return ins.Trends(ctx, now)
	case KindCorrelations:
		list, err := ins.Correlations(ctx, now)
		if err != nil {
			return nil, err
		}
		return &CorrelationList{Insights: list}, nil
	case KindGoals:
		return ins.Goals(ctx, now)
	}
	return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownKind, kind, strings.Join(InsightKinds, ", "))
}
