// Package eventBusTypes defines the types and interfaces used by the eventBus package.
// It provides the core data structures for implementing a publish-subscribe pattern.
package eventBusTypes

import (
	"context"
	"sync"

	"github.com/aixblock/rewards-engine/pkg/rewards/rewardsTypes"
)

// EventName is a string type that identifies different types of events.
type EventName string

// String returns the string representation of the EventName.
func (en *EventName) String() string {
	return string(*en)
}

// Predefined event names used in the system.
var (
	// Event_ConfigInitialized is emitted when a new points config is created.
	Event_ConfigInitialized EventName = "config_initialized"
	// Event_ContributorCreated is emitted when a contributor account is registered.
	Event_ContributorCreated EventName = "contributor_created"
	// Event_ContributionRecorded is emitted after a contribution has been scored and stored.
	Event_ContributionRecorded EventName = "contribution_recorded"
	// Event_MonthlyPointsCalculated is emitted when a distribution period closes.
	Event_MonthlyPointsCalculated EventName = "monthly_points_calculated"
	// Event_ContributorPointsUpdated is emitted when a contributor's monthly points are reset.
	Event_ContributorPointsUpdated EventName = "contributor_points_updated"
	// Event_TokensDistributed is emitted after a payout has been applied.
	Event_TokensDistributed EventName = "tokens_distributed"
	// Event_ReserveDeposit is emitted when tokens are moved into the reserve.
	Event_ReserveDeposit EventName = "reserve_deposit"
	// Event_ReserveTransfer is emitted when tokens are moved out of the reserve.
	Event_ReserveTransfer EventName = "reserve_transfer"
	// Event_ReserveConfigUpdated is emitted when ratio or threshold change.
	Event_ReserveConfigUpdated EventName = "reserve_config_updated"
)

// Event represents a message that is published to the event bus.
// It contains a name that identifies the type of event and arbitrary data.
type Event struct {
	// Name identifies the type of event
	Name EventName
	// Data contains the event payload, which can be of any type
	Data any
}

// ConsumerId is a string type that uniquely identifies an event consumer.
type ConsumerId string

// Consumer represents a subscriber to the event bus.
// It has a unique ID, a context for cancellation, and a channel for receiving events.
type Consumer struct {
	// Id uniquely identifies the consumer
	Id ConsumerId
	// Context can be used to signal cancellation
	Context context.Context
	// Channel receives events from the event bus
	Channel chan *Event
}

// ConsumerList is a thread-safe collection of consumers.
// It provides methods for adding, removing, and retrieving consumers.
type ConsumerList struct {
	mu        sync.Mutex
	consumers []*Consumer
}

// NewConsumerList creates a new empty ConsumerList.
func NewConsumerList() *ConsumerList {
	return &ConsumerList{
		consumers: make([]*Consumer, 0),
	}
}

// Add adds a consumer to the list in a thread-safe manner.
func (cl *ConsumerList) Add(consumer *Consumer) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.consumers = append(cl.consumers, consumer)
}

// Remove removes a consumer from the list in a thread-safe manner.
// It identifies the consumer by its ID.
func (cl *ConsumerList) Remove(consumer *Consumer) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	for i, c := range cl.consumers {
		if c.Id == consumer.Id {
			cl.consumers = append(cl.consumers[:i], cl.consumers[i+1:]...)
			break
		}
	}
}

// GetAll returns a copy of all consumers in the list in a thread-safe manner.
func (cl *ConsumerList) GetAll() []*Consumer {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.consumers
}

// IEventBus defines the interface for an event bus.
// It provides methods for subscribing, unsubscribing, and publishing events.
type IEventBus interface {
	// Subscribe registers a consumer to receive events
	Subscribe(consumer *Consumer)
	// Unsubscribe removes a consumer from the event bus
	Unsubscribe(consumer *Consumer)
	// Publish sends an event to all subscribed consumers
	Publish(event *Event)
}

// ContributionRecordedData is the payload for Event_ContributionRecorded events.
type ContributionRecordedData struct {
	Contribution *rewardsTypes.Contribution
	Contributor  *rewardsTypes.Contributor
}

// MonthlyPointsCalculatedData is the payload for Event_MonthlyPointsCalculated events.
type MonthlyPointsCalculatedData struct {
	Decision *rewardsTypes.DistributionDecision
	Config   *rewardsTypes.PointsConfig
}

// TokensDistributedData is the payload for Event_TokensDistributed events.
type TokensDistributedData struct {
	Contributor *rewardsTypes.Contributor
	Amount      uint64
	Period      uint64
}

// ReserveTransferData is the payload for reserve movement events.
type ReserveTransferData struct {
	ConfigId string
	Amount   uint64
	Balance  uint64
}
