package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"brandPulse/business/bandit"
	"brandPulse/business/priority"
	"brandPulse/domain"
	"brandPulse/pkg/config"
	"brandPulse/pkg/logger"
	"brandPulse/pkg/metrics"
)

// BanditStateRepository persists the per-campaign variant bandits, with
// the same atomic-Update contract as the recommendation store.
type BanditStateRepository interface {
	Get(ctx context.Context, key string) (*domain.BanditState, error)
	Update(ctx context.Context, key string, fn func(current *domain.BanditState) (domain.BanditState, error)) (domain.BanditState, error)
}

// EventRepository appends to the engine event log.
type EventRepository interface {
	SaveEvent(ctx context.Context, event domain.EngineEvent) error
}

const eventWriteBudget = 5 * time.Second

// rewardForEngagement maps campaign engagement actions onto the variant
// reward. The action set is closed.
var rewardForEngagement = map[string]bool{
	"open":        true,
	"click":       true,
	"convert":     true,
	"ignore":      false,
	"unsubscribe": false,
	"bounce":      false,
}

// Service picks what to send, which variant to send, and when.
type Service struct {
	states   BanditStateRepository
	events   EventRepository
	core     *bandit.Core
	defaults config.EngineDefaults
}

func NewService(states BanditStateRepository, events EventRepository, core *bandit.Core, defaults config.EngineDefaults) *Service {
	return &Service{
		states:   states,
		events:   events,
		core:     core,
		defaults: defaults,
	}
}

func variantKey(tenantID, campaignID string) string {
	return fmt.Sprintf("campaign:%s:%s", tenantID, campaignID)
}

// RankCampaigns scores the queued candidates and returns them in
// priority order with dense ranks.
func (s *Service) RankCampaigns(ctx context.Context, campaigns []domain.CampaignCandidate) ([]domain.PrioritizedCampaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	return priority.Prioritize(campaigns), nil
}

// OptimizeSelection picks the top queued campaign, selects its message
// variant through the campaign's bandit and suggests a send time for
// the audience segment. A nil result with nil error means nothing is
// eligible right now.
func (s *Service) OptimizeSelection(
	ctx context.Context,
	tenantID string,
	campaigns []domain.CampaignCandidate,
	variants map[string][]string,
	segment string,
) (*domain.CampaignSelection, error) {

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	top, ok := priority.SelectTop(campaigns)
	if !ok {
		return nil, nil
	}

	selection := &domain.CampaignSelection{Campaign: &top}

	if variantIDs := variants[top.ID]; len(variantIDs) > 0 {
		state, err := s.states.Update(ctx, variantKey(tenantID, top.ID), func(current *domain.BanditState) (domain.BanditState, error) {
			if current == nil {
				return bandit.NewState(variantKey(tenantID, top.ID), variantIDs, s.defaults.Strategy, s.defaults.Epsilon), nil
			}
			next := *current
			for _, id := range variantIDs {
				next = bandit.AddArm(next, id)
			}
			return next, nil
		})
		if err != nil {
			return nil, fmt.Errorf("load variant bandit: %w", err)
		}

		picked, err := s.core.SelectArm(&state)
		if err != nil {
			return nil, fmt.Errorf("select variant: %w", err)
		}
		selection.VariantID = picked.ArmID
		selection.Variant = &picked
	}

	sendTime := priority.BestSendTime(segment, time.Now())
	selection.SendTime = &sendTime

	metrics.CampaignSelections.WithLabelValues(tenantID).Inc()

	s.emitEvent(domain.EngineEvent{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		EventType: domain.EventCampaignSend,
		Payload: datatypes.JSONMap{
			"campaign_id": top.ID,
			"priority":    top.Priority,
			"variant_id":  selection.VariantID,
			"segment":     segment,
			"send_at":     sendTime.SendAt,
		},
	})

	return selection, nil
}

// RecordEngagement folds a variant outcome back into the campaign's
// bandit through the engagement-action reward map.
func (s *Service) RecordEngagement(ctx context.Context, tenantID, campaignID, variantID, action string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if campaignID == "" || variantID == "" {
		return fmt.Errorf("missing campaign or variant id")
	}

	engaged, known := rewardForEngagement[action]
	if !known {
		return fmt.Errorf("unknown engagement action %q", action)
	}

	_, err := s.states.Update(ctx, variantKey(tenantID, campaignID), func(current *domain.BanditState) (domain.BanditState, error) {
		state := bandit.NewState(variantKey(tenantID, campaignID), []string{variantID}, s.defaults.Strategy, s.defaults.Epsilon)
		if current != nil {
			state = bandit.AddArm(*current, variantID)
		}
		return bandit.UpdateArm(state, variantID, engaged), nil
	})
	if err != nil {
		return fmt.Errorf("update variant bandit: %w", err)
	}

	s.emitEvent(domain.EngineEvent{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		EventType: domain.EventCampaignEngagement,
		Payload: datatypes.JSONMap{
			"campaign_id": campaignID,
			"variant_id":  variantID,
			"action":      action,
			"engaged":     engaged,
		},
	})

	return nil
}

// VariantStats snapshots a campaign's variant bandit.
func (s *Service) VariantStats(ctx context.Context, tenantID, campaignID string) (domain.BanditStats, error) {
	state, err := s.states.Get(ctx, variantKey(tenantID, campaignID))
	if err != nil {
		return domain.BanditStats{}, fmt.Errorf("load variant bandit: %w", err)
	}
	return bandit.Stats(state), nil
}

func (s *Service) emitEvent(event domain.EngineEvent) {
	if s.events == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventWriteBudget)
		defer cancel()

		if err := s.events.SaveEvent(ctx, event); err != nil {
			logger.Warn("event_write_failed",
				"event_type", event.EventType,
				"tenant_id", event.TenantID,
				"error", err,
			)
		}
	}()
}
