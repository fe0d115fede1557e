package leave

import "strings"

// Review button and modal ids carried by leave review messages.
const (
	ActionApprove     = "leave:approve:"
	ActionReject      = "leave:reject:"
	ActionRejectModal = "leave:reject_modal:"
)

// ParseAction splits a component id into its action prefix and request id.
func ParseAction(customID string) (action string, requestID string, ok bool) {
	for _, prefix := range []string{ActionApprove, ActionReject, ActionRejectModal} {
		if strings.HasPrefix(customID, prefix) {
			id := strings.TrimPrefix(customID, prefix)
			return prefix, id, id != ""
		}
	}
	return "", "", false
}
