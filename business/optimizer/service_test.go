package optimizer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandPulse/business/bandit"
	"brandPulse/domain"
	"brandPulse/internal/repository/memory"
	"brandPulse/pkg/config"
)

type fakeEventRepo struct {
	mu     sync.Mutex
	events []domain.EngineEvent
}

func (f *fakeEventRepo) SaveEvent(_ context.Context, event domain.EngineEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventRepo) byType(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

func newTestService(events EventRepository) *Service {
	return NewService(
		memory.NewBanditStateStore(),
		events,
		bandit.New(bandit.SeededSampler(7)),
		config.EngineDefaults{Strategy: domain.StrategyThompson, Epsilon: 0.1},
	)
}

func testCampaigns() []domain.CampaignCandidate {
	return []domain.CampaignCandidate{
		{ID: "flash-sale", Impact: 80, Urgency: 80, Fatigue: 0, Status: domain.CampaignQueued},
		{ID: "newsletter", Impact: 60, Urgency: 40, Fatigue: 20, Status: domain.CampaignQueued},
		{ID: "retired", Impact: 95, Urgency: 95, Fatigue: 0, Status: domain.CampaignCompleted},
	}
}

func TestRankCampaignsFiltersAndOrders(t *testing.T) {
	svc := newTestService(&fakeEventRepo{})

	ranked, err := svc.RankCampaigns(context.Background(), testCampaigns())
	require.NoError(t, err)

	require.Len(t, ranked, 2)
	assert.Equal(t, "flash-sale", ranked[0].ID)
	assert.InDelta(t, 64.0, ranked[0].Priority, 1e-9)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
}

func TestOptimizeSelectionPicksTopWithVariantAndSendTime(t *testing.T) {
	events := &fakeEventRepo{}
	svc := newTestService(events)
	ctx := context.Background()

	variants := map[string][]string{
		"flash-sale": {"subject-a", "subject-b"},
	}

	sel, err := svc.OptimizeSelection(ctx, "tenant-1", testCampaigns(), variants, "professional")
	require.NoError(t, err)
	require.NotNil(t, sel)

	assert.Equal(t, "flash-sale", sel.Campaign.ID)
	assert.Contains(t, []string{"subject-a", "subject-b"}, sel.VariantID)
	require.NotNil(t, sel.Variant)
	assert.Equal(t, sel.VariantID, sel.Variant.ArmID)

	require.NotNil(t, sel.SendTime)
	assert.Contains(t, []int{10, 11, 14, 15}, sel.SendTime.Hour)
	assert.True(t, sel.SendTime.SendAt.After(time.Now().Add(-time.Minute)))

	require.Eventually(t, func() bool {
		return events.byType(domain.EventCampaignSend) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOptimizeSelectionWithoutVariants(t *testing.T) {
	svc := newTestService(&fakeEventRepo{})

	sel, err := svc.OptimizeSelection(context.Background(), "tenant-1", testCampaigns(), nil, "")
	require.NoError(t, err)
	require.NotNil(t, sel)

	assert.Empty(t, sel.VariantID)
	assert.Nil(t, sel.Variant)
	require.NotNil(t, sel.SendTime)
}

func TestOptimizeSelectionEmptyEligibleSetIsNotAnError(t *testing.T) {
	svc := newTestService(&fakeEventRepo{})

	campaigns := []domain.CampaignCandidate{
		{ID: "done", Impact: 90, Urgency: 90, Status: domain.CampaignCompleted},
		{ID: "paused", Impact: 90, Urgency: 90, Status: domain.CampaignPaused},
	}

	sel, err := svc.OptimizeSelection(context.Background(), "tenant-1", campaigns, nil, "")
	require.NoError(t, err)
	assert.Nil(t, sel)
}

func TestRecordEngagementTrainsVariantBandit(t *testing.T) {
	events := &fakeEventRepo{}
	svc := newTestService(events)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.RecordEngagement(ctx, "tenant-1", "flash-sale", "subject-a", "click"))
	}
	require.NoError(t, svc.RecordEngagement(ctx, "tenant-1", "flash-sale", "subject-b", "ignore"))

	stats, err := svc.VariantStats(ctx, "tenant-1", "flash-sale")
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalPulls)
	assert.Equal(t, "subject-a", stats.BestArmID)
	assert.InDelta(t, 1.0, stats.BestRate, 1e-9)

	require.Eventually(t, func() bool {
		return events.byType(domain.EventCampaignEngagement) == 6
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRecordEngagementValidatesInput(t *testing.T) {
	svc := newTestService(&fakeEventRepo{})

	require.Error(t, svc.RecordEngagement(context.Background(), "tenant-1", "", "subject-a", "click"))
	require.Error(t, svc.RecordEngagement(context.Background(), "tenant-1", "flash-sale", "", "click"))
	require.Error(t, svc.RecordEngagement(context.Background(), "tenant-1", "flash-sale", "subject-a", "hover"))
}
