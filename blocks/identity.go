package blocks

import (
	"fmt"
	"strconv"
)

// DuplicateKey block id and raw transaction hash of a known hash collision
type DuplicateKey struct {
	BlockID string
	TxHash  string
}

// IdentityResolver builds canonical transaction ids from raw hashes.
// Its tables are read only after construction and safe for concurrent use.
type IdentityResolver struct {
	duplicates map[DuplicateKey]*int64
	suspicious map[string]struct{}
}

// NewIdentityResolver new identity resolver.
// A nil suffix in duplicates means the raw hash is used as is.
func NewIdentityResolver(duplicates map[DuplicateKey]*int64, suspicious map[string]struct{}) *IdentityResolver {
	r := &IdentityResolver{
		duplicates: make(map[DuplicateKey]*int64, len(duplicates)),
		suspicious: make(map[string]struct{}, len(suspicious)),
	}
	for key, suffix := range duplicates {
		if suffix != nil {
			value := *suffix
			suffix = &value
		}
		r.duplicates[key] = suffix
	}
	for hash := range suspicious {
		r.suspicious[hash] = struct{}{}
	}
	return r
}

// NewDefaultIdentityResolver identity resolver with the well known duplicates
func NewDefaultIdentityResolver() *IdentityResolver {
	return NewIdentityResolver(WellKnownDuplicates(), SuspiciousHashes())
}

// WellKnownDuplicates well known transaction hash duplications
func WellKnownDuplicates() map[DuplicateKey]*int64 {
	zero := int64(0)
	return map[DuplicateKey]*int64{
		{
			BlockID: "644732C14FA656B17770EC50653B5B1D5892D237ED3254A4ABB574AA64F0D82A",
			TxHash:  "C6A40F56127436DCD830B1B35FF939FD05B5747D30D6542572B7A835239817AF",
		}: &zero,
	}
}

// SuspiciousHashes hashes that have ever collided
func SuspiciousHashes() map[string]struct{} {
	return map[string]struct{}{
		"C6A40F56127436DCD830B1B35FF939FD05B5747D30D6542572B7A835239817AF": {},
	}
}

// Resolve returns the canonical id of transaction 'txHash' in block 'blockID'
func (r *IdentityResolver) Resolve(txHash, blockID string) (string, error) {
	if suffix, exist := r.duplicates[DuplicateKey{BlockID: blockID, TxHash: txHash}]; exist {
		if suffix == nil {
			return txHash, nil
		}
		return txHash + "_" + strconv.FormatInt(*suffix, 10), nil
	}
	if _, exist := r.suspicious[txHash]; exist {
		return "", fmt.Errorf("%w. block %v, transaction %v", ErrUnknownDuplicate, blockID, txHash)
	}
	return txHash, nil
}
