package storage

import (
	"reflect"
	"testing"
)

func TestEmbeddingSerializationRoundTrip(t *testing.T) {
	original := []float32{0.1, -2.5, 0, 3.25}

	data := SerializeEmbedding(original)
	decoded, err := DeserializeEmbedding(data)
	if err != nil {
		t.Fatalf("DeserializeEmbedding: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip = %v, want %v", decoded, original)
	}
}

func TestEmbeddingSerializationNil(t *testing.T) {
	if data := SerializeEmbedding(nil); data != nil {
		t.Errorf("nil embedding must serialize to nil, got %v", data)
	}

	decoded, err := DeserializeEmbedding(nil)
	if err != nil {
		t.Fatalf("DeserializeEmbedding(nil): %v", err)
	}
	if decoded != nil {
		t.Errorf("nil blob must decode to nil, got %v", decoded)
	}
}

func TestDeserializeEmbeddingMalformed(t *testing.T) {
	if _, err := DeserializeEmbedding([]byte{1, 2, 3}); err == nil {
		t.Error("truncated blob must fail to decode")
	}
}
