// internal/collaborators/log-view/view_test.go
package logview

import (
	"context"
	"fmt"
	"testing"

	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_Render(t *testing.T) {
	v := NewView(logger.NewTestLogger(t))

	require.NoError(t, v.Render(context.Background(), models.NewAppState()))
	require.NoError(t, v.Render(context.Background(), models.AppState{
		LastNotificationData: map[string]string{"screen": "CallScreen"},
		PendingBadgeCount:    2,
		RegistrationToken:    "tok",
	}))
}

func TestView_AlertsAreBounded(t *testing.T) {
	v := NewView(logger.NewNoOpLogger())
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		require.NoError(t, v.Alert(ctx, "Deep Link", fmt.Sprintf("alert %d", i)))
	}

	alerts := v.Alerts()
	require.Len(t, alerts, 50)
	assert.Equal(t, "alert 10", alerts[0].Message)
	assert.Equal(t, "alert 59", alerts[49].Message)
}

func TestView_ScrollToLatest(t *testing.T) {
	v := NewView(logger.NewNoOpLogger())
	require.NoError(t, v.ScrollToLatest(context.Background()))
	assert.Equal(t, 1, v.scrolls)
}
