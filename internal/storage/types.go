package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidInput indicates that the input parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoRowsWritten indicates that an insert completed without the
	// backend reporting a stored row. Callers surface this as a storage
	// failure so the application knows the write did not happen.
	ErrNoRowsWritten = errors.New("no rows written")
)

// SerializeEmbedding converts an embedding vector to a little-endian binary
// blob for storage backends without a native vector type. A nil or empty
// vector serializes to nil, which the schema stores as NULL so that
// "no embedding yet" survives a round-trip.
func SerializeEmbedding(embedding []float32) []byte {
	if len(embedding) == 0 {
		return nil
	}
	buf := make([]byte, len(embedding)*4)
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DeserializeEmbedding converts a binary blob back to an embedding vector.
// A nil or empty blob deserializes to nil.
func DeserializeEmbedding(buf []byte) ([]float32, error) {
	if len(buf) == 0 {
		return nil, nil
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(buf))
	}
	embedding := make([]float32, len(buf)/4)
	for i := range embedding {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return embedding, nil
}
