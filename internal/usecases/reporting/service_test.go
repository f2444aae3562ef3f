package reporting

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/eventstore"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/eventstore/mocks"
	"go.uber.org/mock/gomock"
)

func TestService_GetDashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)

	store.EXPECT().Increment(gomock.Any(), touchpointsStatKey, 0.0).Return(42.0, nil)
	store.EXPECT().Increment(gomock.Any(), conversionsStatKey, 0.0).Return(7.0, nil)
	store.EXPECT().Increment(gomock.Any(), emailsSentStatKey, 0.0).Return(3.0, nil)
	store.EXPECT().SetMembers(gomock.Any(), trackedUsersStatKey).Return([]string{"u1", "u2"}, nil)
	store.EXPECT().SetMembers(gomock.Any(), experimentsIndexKey).Return([]string{"t1"}, nil)
	store.EXPECT().SetMembers(gomock.Any(), campaignsIndexKey).Return([]string{"c1", "c2", "c3"}, nil)

	service := NewService(store, nil)

	dashboard, err := service.GetDashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), dashboard.Touchpoints)
	assert.Equal(t, int64(7), dashboard.Conversions)
	assert.Equal(t, int64(3), dashboard.EmailsSent)
	assert.Equal(t, int64(2), dashboard.TrackedUsers)
	assert.Equal(t, int64(1), dashboard.Experiments)
	assert.Equal(t, int64(3), dashboard.Campaigns)
}

func TestService_GetDashboard_PropagaErroDoStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().
		Increment(gomock.Any(), touchpointsStatKey, 0.0).
		Return(0.0, fmt.Errorf("%w: conexão recusada", eventstore.ErrUnavailable))

	service := NewService(store, nil)

	_, err := service.GetDashboard(context.Background())

	assert.ErrorIs(t, err, eventstore.ErrUnavailable)
}
