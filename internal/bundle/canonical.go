package bundle

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/oklahomahail/plotboard/internal/domain"
)

// CanonicalJSON produces a deterministic JSON encoding of a board:
// keys sorted lexicographically, no insignificant whitespace, no HTML
// escaping. Two structurally equal boards always canonicalize to the
// same bytes, which is what makes the checksum meaningful.
func CanonicalJSON(board *domain.PlotBoard) ([]byte, error) {
	// Round-trip through a generic value so encoding/json sorts all
	// object keys, then re-encode compactly.
	raw, err := json.Marshal(board)
	if err != nil {
		return nil, fmt.Errorf("failed to encode board: %w", err)
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode board for canonicalization: %w", err)
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(generic); err != nil {
		return nil, fmt.Errorf("failed to canonicalize board: %w", err)
	}

	// Remove trailing newline added by Encode
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	return result, nil
}

// Checksum computes the integrity digest of a board as
// "sha256:<hex>" over its canonical JSON.
func Checksum(board *domain.PlotBoard) string {
	data, err := CanonicalJSON(board)
	if err != nil {
		// Marshaling a PlotBoard cannot fail; keep the signature simple.
		return ""
	}
	hash := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(hash[:])
}
