package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/fstgc/vms-portal/internal/adapters/memory"
	"github.com/fstgc/vms-portal/internal/mocks"
)

func TestGenerationService_Superseded(t *testing.T) {
	svc := NewGenerationService(GenerationServiceOptions{Store: memory.NewGenerationStore()})
	ctx := context.Background()

	first := svc.Begin(ctx, "sess", "content")
	assert.False(t, first.Superseded(ctx))

	second := svc.Begin(ctx, "sess", "content")
	assert.True(t, first.Superseded(ctx))
	assert.False(t, second.Superseded(ctx))

	// Other containers and sessions do not interfere.
	other := svc.Begin(ctx, "sess", "panel-events")
	svc.Begin(ctx, "other-sess", "content")
	assert.False(t, second.Superseded(ctx))
	assert.False(t, other.Superseded(ctx))

	assert.NoError(t, svc.Forget(ctx, "sess"))
	third := svc.Begin(ctx, "sess", "content")
	assert.Equal(t, int64(1), third.Generation)
}

func TestGenerationService_Supersede(t *testing.T) {
	svc := NewGenerationService(GenerationServiceOptions{Store: memory.NewGenerationStore()})
	ctx := context.Background()

	stats := svc.Begin(ctx, "sess", ContainerID(PanelStats))
	events := svc.Begin(ctx, "sess", ContainerID(PanelEvents))

	svc.Supersede(ctx, "sess", ContainerID(PanelStats), ContainerID(PanelUpcomingEvents))
	assert.True(t, stats.Superseded(ctx))
	assert.False(t, events.Superseded(ctx))

	var none *GenerationService
	none.Supersede(ctx, "sess", "content")
}

func TestGenerationService_DegradesOnStoreErrors(t *testing.T) {
	store := mocks.NewMockGenerationStore(gomock.NewController(t))
	svc := NewGenerationService(GenerationServiceOptions{Store: store})
	ctx := context.Background()

	store.EXPECT().Next(gomock.Any(), "sess", "content").Return(int64(0), errors.New("redis down"))
	ticket := svc.Begin(ctx, "sess", "content")
	assert.False(t, ticket.Superseded(ctx))

	store.EXPECT().Next(gomock.Any(), "sess", "content").Return(int64(4), nil)
	store.EXPECT().Current(gomock.Any(), "sess", "content").Return(int64(0), errors.New("redis down"))
	ticket = svc.Begin(ctx, "sess", "content")
	assert.False(t, ticket.Superseded(ctx))
}

func TestGenerationService_NilAndUnscoped(t *testing.T) {
	var svc *GenerationService
	ctx := context.Background()
	assert.False(t, svc.Begin(ctx, "s", "c").Superseded(ctx))
	assert.NoError(t, svc.Forget(ctx, "s"))

	real := NewGenerationService(GenerationServiceOptions{Store: memory.NewGenerationStore()})
	assert.Equal(t, int64(0), real.Begin(ctx, "", "c").Generation)
}
