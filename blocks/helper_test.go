package blocks

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/ripple"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/ripple/decoder"
)

type fakeNode struct {
	mu sync.Mutex

	ledger      *ripple.BinaryLedgerResult
	ledgerErr   error
	state       *ripple.ServerStateResult
	stateErr    error
	ledgerCalls []uint32
	stateCalls  int
}

func (n *fakeNode) BinaryLedger(ctx context.Context, seq uint32) (*ripple.BinaryLedgerResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ledgerCalls = append(n.ledgerCalls, seq)
	if n.ledgerErr != nil {
		return nil, n.ledgerErr
	}
	return n.ledger, nil
}

func (n *fakeNode) ServerState(ctx context.Context) (*ripple.ServerStateResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stateCalls++
	if n.stateErr != nil {
		return nil, n.stateErr
	}
	return n.state, nil
}

// fakeDecoder decodes the first byte of a blob as an index into its tables
type fakeDecoder struct {
	header    *decoder.Header
	headerErr error
	txs       []*decoder.Transaction
}

var errFakeDecode = errors.New("fake decode error")

func (d *fakeDecoder) DecodeHeader(ledgerData []byte) (*decoder.Header, error) {
	if d.headerErr != nil {
		return nil, d.headerErr
	}
	return d.header, nil
}

func (d *fakeDecoder) DecodeTransaction(txBlob, meta []byte) (*decoder.Transaction, error) {
	if len(txBlob) == 0 || int(txBlob[0]) >= len(d.txs) {
		return nil, errFakeDecode
	}
	return d.txs[txBlob[0]], nil
}

func closeTime(seconds uint32) *uint32 {
	return &seconds
}

func boolPtr(b bool) *bool {
	return &b
}

func uint32Ptr(v uint32) *uint32 {
	return &v
}

// binaryTxs builds ledger transactions whose blobs index the fake decoder table
func binaryTxs(count int) []ripple.BinaryTransaction {
	txs := make([]ripple.BinaryTransaction, count)
	for i := range txs {
		txs[i] = ripple.BinaryTransaction{
			TxBlob: hex.EncodeToString([]byte{byte(i), 0xAA}),
			Meta:   "BB",
		}
	}
	return txs
}

func loadLedgerFixture(t *testing.T, name string) *ripple.BinaryLedgerResult {
	t.Helper()
	content, err := os.ReadFile(filepath.Join("..", "ripple", "testdata", name))
	if err != nil {
		t.Fatalf("read fixture %v error: %v", name, err)
	}
	var resp struct {
		Result ripple.BinaryLedgerResult `json:"result"`
	}
	if err := json.Unmarshal(content, &resp); err != nil {
		t.Fatalf("unmarshal fixture %v error: %v", name, err)
	}
	return &resp.Result
}
