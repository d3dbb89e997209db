package payment

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parvesmosarof35/new-ecommerce-api/models"
)

func sampleEnvelope(itemCount int) models.CheckoutMetadata {
	items := make([]models.MetadataItem, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		items = append(items, models.MetadataItem{
			ProductID: fmt.Sprintf("64b5f0a1c2d3e4f5a6b7c8%02d", i),
			Quantity:  i + 1,
			Price:     19.99,
			Name:      fmt.Sprintf("Hydrating Serum Variant %d", i),
			Image:     "https://cdn.example.com/products/serum.jpg",
		})
	}
	return models.CheckoutMetadata{
		CustomerID:  "64b5f0a1c2d3e4f5a6b7c8d9",
		Items:       items,
		TotalAmount: 19.99 * float64(itemCount),
		ShippingAddress: models.Address{
			Street:     "1 Main St",
			City:       "Springfield",
			State:      "IL",
			PostalCode: "62701",
			Country:    "US",
		},
		Currency: "usd",
	}
}

func TestCompressSmallPayloadSingleKey(t *testing.T) {
	meta, err := CompressMetadata(map[string]string{"a": "b"}, 500)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"cartData": `{"a":"b"}`}, meta)
}

func TestCompressLargePayloadChunks(t *testing.T) {
	envelope := sampleEnvelope(10)
	meta, err := CompressMetadata(envelope, 500)
	require.NoError(t, err)

	assert.NotContains(t, meta, "cartData")
	require.Contains(t, meta, "cartData_chunks")
	require.Contains(t, meta, "cartData_00")

	for key, value := range meta {
		if key == "cartData_chunks" {
			continue
		}
		assert.LessOrEqual(t, len(value), 500, "chunk %s exceeds limit", key)
	}
}

func TestRoundTripSinglePayload(t *testing.T) {
	envelope := sampleEnvelope(1)
	meta, err := CompressMetadata(envelope, 10000)
	require.NoError(t, err)
	require.Contains(t, meta, "cartData")

	var decoded models.CheckoutMetadata
	require.NoError(t, DecompressMetadata(meta, &decoded))
	assert.Equal(t, envelope, decoded)
}

func TestRoundTripChunkedPayload(t *testing.T) {
	envelope := sampleEnvelope(25)
	meta, err := CompressMetadata(envelope, 500)
	require.NoError(t, err)
	require.Contains(t, meta, "cartData_chunks")

	var decoded models.CheckoutMetadata
	require.NoError(t, DecompressMetadata(meta, &decoded))
	assert.Equal(t, envelope, decoded)
}

func TestDecompressMissingChunkFails(t *testing.T) {
	meta, err := CompressMetadata(sampleEnvelope(25), 500)
	require.NoError(t, err)
	delete(meta, "cartData_01")

	var decoded models.CheckoutMetadata
	err = DecompressMetadata(meta, &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cartData_01")
}

func TestDecompressNoDataFails(t *testing.T) {
	var decoded models.CheckoutMetadata
	err := DecompressMetadata(map[string]string{"type": "cart_payment"}, &decoded)
	assert.Error(t, err)
}

func TestDecompressBadChunkCountFails(t *testing.T) {
	var decoded models.CheckoutMetadata
	err := DecompressMetadata(map[string]string{"cartData_chunks": "zero"}, &decoded)
	assert.Error(t, err)
}

func TestChunkKeysAreZeroPadded(t *testing.T) {
	payload := strings.Repeat("x", 60)
	meta, err := CompressMetadata(payload, 10)
	require.NoError(t, err)

	// "x"*60 marshals to a 62-char JSON string, 7 chunks of 10.
	assert.Equal(t, "7", meta["cartData_chunks"])
	for i := 0; i < 7; i++ {
		assert.Contains(t, meta, fmt.Sprintf("cartData_%02d", i))
	}
}
