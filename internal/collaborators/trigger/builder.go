// internal/collaborators/trigger/builder.go
package trigger

import (
	apperrors "push-lifecycle/internal/common/errors"

	"github.com/google/uuid"
)

// BuildCallMessage assembles the call payload. Empty fields fall back to
// the demo call defaults; a missing call id gets a fresh uuid.
func BuildCallMessage(in CallInput) (CallMessage, error) {
	if in.CallChannelID == "" {
		return CallMessage{}, apperrors.NewInvalidPayloadError("call channel id is required")
	}
	if in.Title == "" {
		in.Title = "Incoming Video Call"
	}
	if in.Body == "" {
		in.Body = "Alice is calling you..."
	}
	if in.Screen == "" {
		in.Screen = "CallScreen"
	}
	if in.CallID == "" {
		in.CallID = uuid.New().String()
	}

	return CallMessage{
		Token:            in.Token,
		Priority:         PriorityHigh,
		ContentAvailable: true,
		Data: map[string]string{
			"title":  in.Title,
			"body":   in.Body,
			"screen": in.Screen,
			"callId": in.CallID,
			"type":   TypeCall,
		},
		Notification: CallNotification{
			Title:            in.Title,
			Body:             in.Body,
			AndroidChannelID: in.CallChannelID,
		},
	}, nil
}
