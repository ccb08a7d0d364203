package blocks

import (
	"context"
	"fmt"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/ripple"
)

// IrreversibleTracker reports the latest validated ledger
type IrreversibleTracker struct {
	node ripple.Node
}

// NewIrreversibleTracker new irreversible tracker
func NewIrreversibleTracker(node ripple.Node) *IrreversibleTracker {
	return &IrreversibleTracker{node: node}
}

// Latest returns the latest validated ledger.
// Returns ErrRetryRequired if the node has not computed it yet.
func (t *IrreversibleTracker) Latest(ctx context.Context) (*IrreversibleMarker, error) {
	state, err := t.node.ServerState(ctx)
	if err != nil {
		return nil, integrationError("get server state", err)
	}
	validated := state.State.ValidatedLedger
	if validated == nil {
		return nil, fmt.Errorf("%w. Node state: %v", ErrRetryRequired, state.State.ServerState)
	}
	return &IrreversibleMarker{
		Number: BlockNumber(validated.Seq),
		ID:     validated.Hash,
	}, nil
}
