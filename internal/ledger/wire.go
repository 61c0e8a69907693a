package ledger

import (
	"errors"
	"fmt"

	"github.com/oddstream/oddstream-agent/pkg/types"
)

// Discriminators understood by destination chains.
const (
	MessageTypeBatchedOrders   = "BatchedOrders"
	OperationRegisterUserChain = "RegisterUserChain"
)

// Payload is a wire message with a fixed schema, validated before send.
type Payload interface {
	Validate() error
}

// BatchedOrdersPayload is the wire form of one routed batch delivered to a
// market chain.
type BatchedOrdersPayload struct {
	Type        string        `json:"type"`
	UserChainID string        `json:"user_chain_id"`
	Orders      []types.Order `json:"orders"`
	Nonce       uint64        `json:"nonce"`
}

// NewBatchedOrdersPayload builds the wire payload for a routed batch.
func NewBatchedOrdersPayload(b types.Batch) BatchedOrdersPayload {
	return BatchedOrdersPayload{
		Type:        MessageTypeBatchedOrders,
		UserChainID: b.Origin,
		Orders:      b.Orders,
		Nonce:       b.Nonce,
	}
}

// Validate enforces the batch serialization contract.
func (p BatchedOrdersPayload) Validate() error {
	if p.Type != MessageTypeBatchedOrders {
		return fmt.Errorf("payload type must be %q, got %q", MessageTypeBatchedOrders, p.Type)
	}
	if p.UserChainID == "" {
		return errors.New("user chain id is required")
	}
	if len(p.Orders) == 0 {
		return errors.New("batch must contain at least one order")
	}
	for i, o := range p.Orders {
		if err := o.Validate(); err != nil {
			return &types.OrderValidationError{Index: i, Err: err}
		}
	}
	if p.Nonce == 0 {
		return errors.New("nonce must be positive")
	}
	return nil
}

// RegisterUserChainPayload is the registration message sent to the registry
// chain when a user chain is created.
type RegisterUserChainPayload struct {
	Operation   string `json:"operation"`
	UserChainID string `json:"user_chain_id"`
}

// NewRegisterUserChainPayload builds the registration payload for a freshly
// created user chain.
func NewRegisterUserChainPayload(userChainID string) RegisterUserChainPayload {
	return RegisterUserChainPayload{
		Operation:   OperationRegisterUserChain,
		UserChainID: userChainID,
	}
}

// Validate enforces the registration serialization contract.
func (p RegisterUserChainPayload) Validate() error {
	if p.Operation != OperationRegisterUserChain {
		return fmt.Errorf("operation must be %q, got %q", OperationRegisterUserChain, p.Operation)
	}
	if p.UserChainID == "" {
		return errors.New("user chain id is required")
	}
	return nil
}
