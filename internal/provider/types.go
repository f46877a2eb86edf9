// ABOUTME: Wire types for the resource-provider Call/Event protocol
// ABOUTME: Mirrors the JSON/protobuf shapes decoded and encoded by codec.go

package provider

import (
	"encoding/json"

	"github.com/google/uuid"
)

// CallType enumerates the recognized inbound Call variants.
type CallType string

const (
	CallSubscribeType                     CallType = "SUBSCRIBE"
	CallUpdateOfferOperationStatusType    CallType = "UPDATE_OFFER_OPERATION_STATUS"
	CallUpdateStateType                   CallType = "UPDATE_STATE"
	CallUpdatePublishResourcesStatusType  CallType = "UPDATE_PUBLISH_RESOURCES_STATUS"
	CallUnknownType                       CallType = "UNKNOWN"
)

// EventType enumerates the Event variants the manager may write to a stream.
type EventType string

const (
	EventSubscribedType                EventType = "SUBSCRIBED"
	EventApplyOfferOperationType       EventType = "APPLY_OFFER_OPERATION"
	EventAcknowledgeOfferOperationType EventType = "ACKNOWLEDGE_OFFER_OPERATION"
	EventReconcileOfferOperationsType  EventType = "RECONCILE_OFFER_OPERATIONS"
	EventPublishResourcesType          EventType = "PUBLISH_RESOURCES"
)

// OfferOperationStatusState mirrors the provider-reported outcome of an
// offer operation; the manager treats it as an opaque payload it forwards
// upstream without interpreting it further.
type OfferOperationStatusState string

// PublishStatus is the terminal state a provider reports for a publish
// correlation id.
type PublishStatus string

const (
	PublishStatusOK PublishStatus = "OK"
)

// ResourceProviderID identifies a resource provider. Ids minted by the
// manager are string-rendered UUIDs; an id supplied by a resubscribing
// provider is accepted as any non-empty string.
type ResourceProviderID struct {
	Value string `json:"value"`
}

// ResourceProviderInfo is the opaque identity record carried on SUBSCRIBE.
type ResourceProviderInfo struct {
	ID   *ResourceProviderID `json:"id,omitempty"`
	Type string              `json:"type"`
	Name string              `json:"name"`
}

// Resource is an opaque resource value; the manager only inspects the
// provider-id field that ties it to a subscribed entry.
type Resource struct {
	ProviderID string          `json:"provider_id,omitempty"`
	Name       string          `json:"name,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// ResourceVersionUUID is the per-provider version token that must be echoed
// back on every reported offer operation against that provider's resources.
type ResourceVersionUUID struct {
	ProviderID string    `json:"provider_id"`
	UUID       uuid.UUID `json:"uuid"`
}

// OfferOperation is a tentative mutation (reserve, create volume, ...)
// against a set of offered resources. The manager never interprets the
// operation semantically; it only needs the affected resources to derive a
// target provider.
type OfferOperation struct {
	Type      string          `json:"type,omitempty"`
	Resources []Resource      `json:"resources,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

// DeriveProviderID extracts the resource-provider-id an operation targets by
// inspecting its affected resources. Returns ("", false) if no resource
// names a provider (not-found) versus ("", true-with-error-elsewhere) for
// resources that disagree on provider (handled by the caller, which logs a
// distinct message for each case per spec.md §9).
func (o OfferOperation) DeriveProviderID() (id string, found bool) {
	for _, r := range o.Resources {
		if r.ProviderID == "" {
			continue
		}
		if !found {
			id, found = r.ProviderID, true
			continue
		}
		if r.ProviderID != id {
			return "", true
		}
	}
	return id, found
}

// --- Call (provider -> manager) ---

// Call is the single inbound wire message. Exactly one of the payload
// fields is populated, matching Type.
type Call struct {
	Type               CallType             `json:"type"`
	ResourceProviderID *ResourceProviderID  `json:"resource_provider_id,omitempty"`

	Subscribe                    *CallSubscribe                    `json:"subscribe,omitempty"`
	UpdateOfferOperationStatus   *CallUpdateOfferOperationStatus    `json:"update_offer_operation_status,omitempty"`
	UpdateState                  *CallUpdateState                  `json:"update_state,omitempty"`
	UpdatePublishResourcesStatus *CallUpdatePublishResourcesStatus `json:"update_publish_resources_status,omitempty"`
}

// CallSubscribe is the payload of a SUBSCRIBE call.
type CallSubscribe struct {
	ResourceProviderInfo ResourceProviderInfo `json:"resource_provider_info"`
}

// CallUpdateOfferOperationStatus is the payload of an
// UPDATE_OFFER_OPERATION_STATUS call.
type CallUpdateOfferOperationStatus struct {
	FrameworkID   string                     `json:"framework_id"`
	Status        OfferOperationStatusState  `json:"status"`
	OperationUUID uuid.UUID                  `json:"operation_uuid"`
	LatestStatus  *OfferOperationStatusState `json:"latest_status,omitempty"`
}

// CallUpdateState is the payload of an UPDATE_STATE call.
type CallUpdateState struct {
	Resources          []Resource `json:"resources"`
	ResourceVersionUUID uuid.UUID `json:"resource_version_uuid"`
	Operations         []OfferOperationStatusEntry `json:"operations,omitempty"`
}

// OfferOperationStatusEntry is one entry of a provider's reported pending
// operations, indexed later by the manager under its operation uuid.
type OfferOperationStatusEntry struct {
	OperationUUID uuid.UUID                 `json:"operation_uuid"`
	Status        OfferOperationStatusState `json:"status"`
}

// CallUpdatePublishResourcesStatus is the payload of an
// UPDATE_PUBLISH_RESOURCES_STATUS call.
type CallUpdatePublishResourcesStatus struct {
	UUID   uuid.UUID     `json:"uuid"`
	Status PublishStatus `json:"status"`
}

// --- Event (manager -> provider) ---

// Event is the single outbound wire message, framed with RecordIO and
// written to a provider's HttpConnection.
type Event struct {
	Type EventType `json:"type"`

	Subscribed                *EventSubscribed                `json:"subscribed,omitempty"`
	ApplyOfferOperation       *EventApplyOfferOperation        `json:"apply_offer_operation,omitempty"`
	AcknowledgeOfferOperation *EventAcknowledgeOfferOperation   `json:"acknowledge_offer_operation,omitempty"`
	ReconcileOfferOperations  *EventReconcileOfferOperations    `json:"reconcile_offer_operations,omitempty"`
	PublishResources          *EventPublishResources            `json:"publish_resources,omitempty"`
}

// EventSubscribed is the first event ever sent on a new stream, carrying
// the (possibly newly assigned) provider id.
type EventSubscribed struct {
	ProviderID ResourceProviderID `json:"provider_id"`
}

// EventApplyOfferOperation instructs a provider to apply a tentative
// resource mutation.
type EventApplyOfferOperation struct {
	FrameworkID          string         `json:"framework_id"`
	Info                 OfferOperation `json:"info"`
	OperationUUID        uuid.UUID      `json:"operation_uuid"`
	ResourceVersionUUID  []byte         `json:"resource_version_uuid"`
}

// EventAcknowledgeOfferOperation acknowledges a previously reported offer
// operation status.
type EventAcknowledgeOfferOperation struct {
	StatusUUID    uuid.UUID `json:"status_uuid"`
	OperationUUID uuid.UUID `json:"operation_uuid"`
}

// EventReconcileOfferOperations asks a provider to report its current view
// of the listed operations.
type EventReconcileOfferOperations struct {
	OperationUUIDs []uuid.UUID `json:"operation_uuids"`
}

// EventPublishResources asks a provider to make a resource set externally
// reachable, correlated by UUID.
type EventPublishResources struct {
	UUID      uuid.UUID  `json:"uuid"`
	Resources []Resource `json:"resources"`
}

// --- Outbound messages to the agent (consumed off the FIFO queue) ---

// ResourceProviderMessageType enumerates the outbound message variants.
type ResourceProviderMessageType string

const (
	MessageUpdateOfferOperationStatus ResourceProviderMessageType = "UPDATE_OFFER_OPERATION_STATUS"
	MessageUpdateState                ResourceProviderMessageType = "UPDATE_STATE"
)

// ResourceProviderMessage is one entry on the manager's outbound FIFO queue.
type ResourceProviderMessage struct {
	Type ResourceProviderMessageType

	UpdateOfferOperationStatus *UpdateOfferOperationStatusPayload
	UpdateState                *UpdateStatePayload
}

// UpdateOfferOperationStatusPayload carries a provider-reported status
// upstream to the agent.
type UpdateOfferOperationStatusPayload struct {
	FrameworkID   string
	Status        OfferOperationStatusState
	OperationUUID uuid.UUID
	LatestStatus  *OfferOperationStatusState
}

// UpdateStatePayload carries a provider's full resource-state snapshot
// upstream to the agent, operations indexed by their uuid for O(1) lookup.
type UpdateStatePayload struct {
	ProviderInfo        ResourceProviderInfo
	ResourceVersionUUID uuid.UUID
	Resources           []Resource
	OperationsByUUID    map[uuid.UUID]OfferOperationStatusEntry
}
