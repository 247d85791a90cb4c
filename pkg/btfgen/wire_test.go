package btfgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferSectionWriterSwitchesSections(t *testing.T) {
	w := NewBufferSectionWriter()
	require.NoError(t, w.SwitchSection(".BTF"))
	require.NoError(t, w.WriteU32(0xDEADBEEF))
	require.NoError(t, w.SwitchSection(".text"))
	require.NoError(t, w.WriteU8(0x90))

	require.Equal(t, []byte{0xEF, 0xBE, 0xAD, 0xDE}, w.Section(".BTF"))
	require.Equal(t, []byte{0x90}, w.Section(".text"))
}

func TestBufferSectionWriterRequiresSectionFirst(t *testing.T) {
	w := NewBufferSectionWriter()
	require.Error(t, w.WriteU8(1))
	require.Error(t, w.WriteU16(1))
	require.Error(t, w.WriteU32(1))
	require.Error(t, w.WriteBytes([]byte{1}))
}

func TestHeaderEmitIsLittleEndianAndConstant(t *testing.T) {
	h := computeHeader(100, 10)
	w := NewBufferSectionWriter()
	require.NoError(t, w.SwitchSection(".BTF"))
	require.NoError(t, h.emit(w))

	got := w.Section(".BTF")
	require.Len(t, got, btfHdrLen)
	require.Equal(t, []byte{0x9F, 0xEB}, got[0:2]) // magic
	require.Equal(t, byte(1), got[2])              // version
	require.Equal(t, byte(0), got[3])              // flags
	require.Equal(t, uint32(24), readU32(t, got, 4))
	require.Equal(t, uint32(0), readU32(t, got, 8))    // type_off
	require.Equal(t, uint32(100), readU32(t, got, 12)) // type_len
	require.Equal(t, uint32(100), readU32(t, got, 16)) // str_off
	require.Equal(t, uint32(10), readU32(t, got, 20))  // str_len
}
