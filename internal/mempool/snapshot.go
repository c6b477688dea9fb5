package mempool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/eugenenazirov/fee-simulator/internal/packer"
)

// snapshotTx uses pointer fields so a missing key can be told apart from a
// zero value; records missing any required key are skipped, not fatal.
type snapshotTx struct {
	TxID  *string `json:"txid"`
	Fee   *int64  `json:"fee"`
	VSize *int64  `json:"vsize"`
}

// SnapshotSource reads candidates from a local JSON mempool snapshot: an
// array of objects each requiring at minimum txid, fee, and vsize.
type SnapshotSource struct {
	path string
}

// NewSnapshotSource creates a source backed by the file at path.
func NewSnapshotSource(path string) *SnapshotSource {
	return &SnapshotSource{path: path}
}

// Name implements Source.
func (s *SnapshotSource) Name() string {
	return "snapshot"
}

// Fetch implements Source.
func (s *SnapshotSource) Fetch(ctx context.Context) (Set, error) {
	if err := ctx.Err(); err != nil {
		return Set{}, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return Set{}, fmt.Errorf("read snapshot: %w", err)
	}

	var raw []snapshotTx
	if err := json.Unmarshal(data, &raw); err != nil {
		return Set{}, fmt.Errorf("parse snapshot %s: %w", s.path, err)
	}

	set := Set{Candidates: make([]packer.Candidate, 0, len(raw))}
	for _, tx := range raw {
		if tx.TxID == nil || tx.Fee == nil || tx.VSize == nil {
			set.Skipped++
			continue
		}
		candidate, err := packer.NewCandidate(*tx.TxID, *tx.Fee, *tx.VSize)
		if err != nil {
			set.Skipped++
			continue
		}
		set.Candidates = append(set.Candidates, candidate)
	}

	return set, nil
}
