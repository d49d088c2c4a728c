package promptpay

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRandomSatangIntegerAmount(t *testing.T) {
	for i := 0; i < 50; i++ {
		got := AddRandomSatang(500)
		assert.Greater(t, got, 500.0)
		assert.LessOrEqual(t, got, 500.99)

		satang := math.Round((got - 500) * 100)
		assert.GreaterOrEqual(t, satang, 1.0)
		assert.LessOrEqual(t, satang, 99.0)
	}
}

func TestAddRandomSatangFractionalAmountUntouched(t *testing.T) {
	assert.Equal(t, 500.25, AddRandomSatang(500.25))
	assert.Equal(t, 0.99, AddRandomSatang(0.99))
}

func TestNewReferenceShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		ref := NewReference()
		require.Len(t, ref, 12)
		require.True(t, strings.HasPrefix(ref, "PP"))
		assert.False(t, seen[ref], "reference %s repeated", ref)
		seen[ref] = true
	}
}

func TestBuildPayloadStructure(t *testing.T) {
	payload := BuildPayload("0812345678", 500.5)

	assert.True(t, strings.HasPrefix(payload, "000201"), "payload format indicator")
	assert.Contains(t, payload, "010212", "dynamic point of initiation")
	assert.Contains(t, payload, "A000000677010111", "promptpay merchant AID")
	assert.Contains(t, payload, "0066812345678", "phone converted to 0066 form")
	assert.Contains(t, payload, "5303764", "THB currency code")
	assert.Contains(t, payload, "540650", "amount field with 500.50")
	assert.Contains(t, payload, "5802TH", "country code")

	// trailing CRC must verify against the rest of the payload
	require.Greater(t, len(payload), 8)
	body, crc := payload[:len(payload)-4], payload[len(payload)-4:]
	assert.Equal(t, crc16(body), crc)
}

func TestBuildPayloadNationalID(t *testing.T) {
	payload := BuildPayload("1234567890123", 100)
	assert.Contains(t, payload, "1234567890123")
	assert.NotContains(t, payload, "0066")
}

func TestGenerate(t *testing.T) {
	req := Generate("0812345678", 123.45)
	assert.Equal(t, 123.45, req.Amount)
	assert.Equal(t, "0812345678", req.PromptPayID)
	assert.Len(t, req.ReferenceID, 12)
	assert.Equal(t, BuildPayload("0812345678", 123.45), req.Payload)
}

func TestFormatTHB(t *testing.T) {
	assert.Equal(t, "฿1,234.56", FormatTHB(1234.56))
	assert.Equal(t, "฿0.99", FormatTHB(0.99))
}
