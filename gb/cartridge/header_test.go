package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRomBankCountTable(t *testing.T) {
	assert.Equal(t, 2, romBankCount(0x00))
	assert.Equal(t, 8, romBankCount(0x02))
	assert.Equal(t, 512, romBankCount(0x08))
}

func TestRamBankCountTable(t *testing.T) {
	assert.Equal(t, 0, ramBankCount(0x00))
	assert.Equal(t, 1, ramBankCount(0x02))
	assert.Equal(t, 4, ramBankCount(0x03))
	assert.Equal(t, 16, ramBankCount(0x04))
	assert.Equal(t, 8, ramBankCount(0x05))
}

func TestCleanTitleReplacesNullsAndTrims(t *testing.T) {
	raw := append([]byte("POKEMON"), 0, 0, 0, 0, 0, 0, 0, 0, 0)
	assert.Equal(t, "POKEMON", cleanTitle(raw))
}

func TestCleanTitleEmptyBecomesPlaceholder(t *testing.T) {
	raw := make([]byte, 16)
	assert.Equal(t, "(untitled)", cleanTitle(raw))
}

func TestVerifyHeaderChecksum(t *testing.T) {
	data := buildROM(0x8000, uint8(TypeROMOnly), 0x00, 0x00)
	assert.True(t, verifyHeaderChecksum(data))

	data[0x140] ^= 0xFF
	assert.False(t, verifyHeaderChecksum(data))
}
