// ABOUTME: Protocol-level validation of a decoded Call before dispatch
// ABOUTME: Checks the payload matching the declared type is present with required fields

package httpapi

import (
	"fmt"

	"github.com/cuemby/rpmanager/internal/provider"
)

// validateCall checks protocol-level well-formedness of a decoded Call:
// that the payload matching its declared type is present and that required
// fields within it are non-empty. Semantic legality of the operation itself
// is explicitly out of scope (spec.md §1).
func validateCall(call *provider.Call) error {
	switch call.Type {
	case provider.CallSubscribeType:
		if call.Subscribe == nil {
			return fmt.Errorf("subscribe call missing subscribe payload")
		}
		if call.Subscribe.ResourceProviderInfo.Type == "" {
			return fmt.Errorf("subscribe call missing resource_provider_info.type")
		}
		return nil
	case provider.CallUpdateOfferOperationStatusType:
		if call.UpdateOfferOperationStatus == nil {
			return fmt.Errorf("update_offer_operation_status call missing payload")
		}
		return nil
	case provider.CallUpdateStateType:
		if call.UpdateState == nil {
			return fmt.Errorf("update_state call missing payload")
		}
		return nil
	case provider.CallUpdatePublishResourcesStatusType:
		if call.UpdatePublishResourcesStatus == nil {
			return fmt.Errorf("update_publish_resources_status call missing payload")
		}
		return nil
	case provider.CallUnknownType:
		return nil
	default:
		return fmt.Errorf("unrecognized call type %q", call.Type)
	}
}
