package embedding

import (
	"encoding/binary"
	"fmt"
	"math"

	domprofile "github.com/talentmesh/profilesearch/internal/domain/profile"
)

// Hash field names for a persisted embedding record.
const (
	fieldVector     = "vector"
	fieldSourceText = "source_text"
	fieldVersion    = "version"
)

// buildHashFields converts an embedding record into a flat map for HSET.
func buildHashFields(rec domprofile.EmbeddingRecord) map[string]string {
	return map[string]string{
		fieldVector:     vectorToBytes(rec.Vector),
		fieldSourceText: rec.SourceText,
		fieldVersion:    rec.Version,
	}
}

// parseHashFields converts a flat hash map back into an embedding record.
func parseHashFields(userID string, m map[string]string) (domprofile.EmbeddingRecord, error) {
	raw, ok := m[fieldVector]
	if !ok {
		return domprofile.EmbeddingRecord{}, fmt.Errorf("user %s: missing vector field", userID)
	}
	vec, err := bytesToVector(raw)
	if err != nil {
		return domprofile.EmbeddingRecord{}, fmt.Errorf("user %s: %w", userID, err)
	}
	return domprofile.EmbeddingRecord{
		UserID:     userID,
		Vector:     vec,
		SourceText: m[fieldSourceText],
		Version:    m[fieldVersion],
	}, nil
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) ([]float32, error) {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid vector encoding: len=%d (not multiple of 4)", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
