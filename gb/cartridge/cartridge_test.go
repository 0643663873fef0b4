package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildROM constructs a minimal, checksum-valid ROM image of the given
// size with the requested cartridge-type/ROM-size/RAM-size header bytes.
func buildROM(size int, cartType, romSizeByte, ramSizeByte uint8) []byte {
	data := make([]byte, size)
	copy(data[titleAddress:], []byte("TESTROM"))
	data[cartTypeAddress] = cartType
	data[romSizeAddress] = romSizeByte
	data[ramSizeAddress] = ramSizeByte

	var x uint8
	for i := 0x0134; i <= 0x014C; i++ {
		x = x - data[i] - 1
	}
	data[headerChecksumAddress] = x

	return data
}

func TestLoadRejectsShortData(t *testing.T) {
	_, err := Load(make([]byte, 0x10))
	assert.Error(t, err)
}

func TestLoadRejectsBadHeaderChecksum(t *testing.T) {
	data := buildROM(0x8000, uint8(TypeROMOnly), 0x00, 0x00)
	data[headerChecksumAddress] ^= 0xFF

	_, err := Load(data)
	assert.Error(t, err)
}

func TestLoadNoMBC(t *testing.T) {
	data := buildROM(0x8000, uint8(TypeROMOnly), 0x00, 0x00)
	cart, err := Load(data)
	require.NoError(t, err)

	assert.Equal(t, "TESTROM", cart.Header.Title)
	assert.Equal(t, VariantNone, cart.Header.Variant)
	assert.False(t, cart.Header.HasRAM)
}

func TestLoadDerivesVariantAndHardwareFlags(t *testing.T) {
	data := buildROM(0x20000, uint8(TypeMBC3PlusTimerPlusRAMBattery), 0x02, 0x03)
	cart, err := Load(data)
	require.NoError(t, err)

	assert.Equal(t, VariantMBC3, cart.Header.Variant)
	assert.True(t, cart.Header.HasRAM)
	assert.True(t, cart.Header.HasBattery)
	assert.True(t, cart.Header.HasTimer)
	assert.Equal(t, 8, cart.Header.ROMBankCount)
	assert.Equal(t, 4, cart.Header.RAMBankCount)
}

func TestNoMBCHasNoWritableRAM(t *testing.T) {
	data := buildROM(0x8000, uint8(TypeROMOnly), 0x00, 0x00)
	cart, err := Load(data)
	require.NoError(t, err)

	cart.Write(0xA000, 0x42)
	assert.Equal(t, uint8(0xFF), cart.Read(0xA000))
}
