// internal/controller/permission-gate/gate_test.go
package permissiongate

import (
	"context"
	"errors"
	"testing"

	apperrors "push-lifecycle/internal/common/errors"
	"push-lifecycle/internal/common/logger"
	"push-lifecycle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockRequester struct {
	RequestPermissionFunc func(ctx context.Context) (models.AuthorizationStatus, error)
}

func (m *MockRequester) RequestPermission(ctx context.Context) (models.AuthorizationStatus, error) {
	return m.RequestPermissionFunc(ctx)
}

type alertCall struct {
	title   string
	message string
}

type MockAlerter struct {
	calls []alertCall
	err   error
}

func (m *MockAlerter) Alert(ctx context.Context, title, message string) error {
	m.calls = append(m.calls, alertCall{title: title, message: message})
	return m.err
}

func requesterReturning(status models.AuthorizationStatus, err error) *MockRequester {
	return &MockRequester{
		RequestPermissionFunc: func(ctx context.Context) (models.AuthorizationStatus, error) {
			return status, err
		},
	}
}

// ==========================
// Tests
// ==========================

func TestGate_Request(t *testing.T) {
	tests := []struct {
		name           string
		status         models.AuthorizationStatus
		requestErr     error
		expectedStatus models.AuthorizationStatus
		expectDenied   bool
	}{
		{
			name:           "authorized",
			status:         models.AuthorizationAuthorized,
			expectedStatus: models.AuthorizationAuthorized,
		},
		{
			name:           "provisional",
			status:         models.AuthorizationProvisional,
			expectedStatus: models.AuthorizationProvisional,
		},
		{
			name:           "denied",
			status:         models.AuthorizationDenied,
			expectedStatus: models.AuthorizationDenied,
			expectDenied:   true,
		},
		{
			name:           "collaborator error is denied",
			status:         models.AuthorizationAuthorized,
			requestErr:     errors.New("bridge unavailable"),
			expectedStatus: models.AuthorizationDenied,
			expectDenied:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alerter := &MockAlerter{}
			gate := NewGate(requesterReturning(tt.status, tt.requestErr), alerter, logger.NewTestLogger(t))

			status, err := gate.Request(context.Background())

			assert.Equal(t, tt.expectedStatus, status)
			if tt.expectDenied {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
				require.Len(t, alerter.calls, 1)
				assert.Equal(t, DeniedAlertTitle, alerter.calls[0].title)
				assert.Equal(t, DeniedAlertMessage, alerter.calls[0].message)
			} else {
				assert.NoError(t, err)
				assert.Empty(t, alerter.calls)
			}
		})
	}
}

func TestGate_Request_AlertFailureStillReturnsDenied(t *testing.T) {
	alerter := &MockAlerter{err: errors.New("view gone")}
	gate := NewGate(requesterReturning(models.AuthorizationDenied, nil), alerter, logger.NewNoOpLogger())

	status, err := gate.Request(context.Background())

	assert.Equal(t, models.AuthorizationDenied, status)
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}

func TestGate_Request_NilAlerter(t *testing.T) {
	gate := NewGate(requesterReturning(models.AuthorizationDenied, nil), nil, logger.NewNoOpLogger())

	_, err := gate.Request(context.Background())
	assert.True(t, errors.Is(err, apperrors.ErrPermissionDenied))
}
