package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"healthdash/internal/store"
)

// ErrInvalidSettings is returned when goals or alert thresholds are out of range
var ErrInvalidSettings = errors.New("invalid settings")

var validate = validator.New()

// validateSettings reports the first failing field, e.g. "MinZone2Days must be max=7 (got 9)"
func validateSettings(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s must be %s=%s (got %v)", ErrInvalidSettings, fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
}

// WeeklyGoals returns the user's coaching targets, creating the defaults on first use
func (q *QueryService) WeeklyGoals(ctx context.Context) (*store.WeeklyGoals, error) {
	g, err := q.store.GetOrCreateWeeklyGoals(ctx, q.userID)
	if err != nil {
		return nil, fmt.Errorf("loading weekly goals: %w", err)
	}
	return g, nil
}

// UpdateGoals validates and stores the user's coaching targets
func (q *QueryService) UpdateGoals(ctx context.Context, g store.WeeklyGoals) error {
	g.UserID = q.userID
	if err := validateSettings(g); err != nil {
		return err
	}
	if err := q.store.UpdateWeeklyGoals(ctx, g); err != nil {
		return fmt.Errorf("updating weekly goals: %w", err)
	}
	return nil
}
