package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servimas/cortineros/internal/encoding"
)

func decode(t *testing.T, input []byte) (string, encoding.Charset) {
	t.Helper()

	r, cs, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), cs
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "Fecha;Tipo;Importe;Detalle\n25/11/2024;Entrega;35.000;Cortinas baño\n"

	got, cs := decode(t, []byte(input))
	assert.Equal(t, input, got)
	assert.Equal(t, encoding.UTF8, cs)
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	// "Baño;Señal\n" with ñ = 0xF1.
	input := []byte{'B', 'a', 0xF1, 'o', ';', 'S', 'e', 0xF1, 'a', 'l', '\n'}

	got, _ := decode(t, input)
	assert.Equal(t, "Baño;Señal\n", got)
}

func TestNewUTF8Reader_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, "Fecha;Debe;Haber\n"...)

	got, cs := decode(t, input)
	assert.Equal(t, "Fecha;Debe;Haber\n", got)
	assert.Equal(t, encoding.UTF8BOM, cs)
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	input := []byte{0xFF, 0xFE}
	for _, c := range "Fecha;Tipo\n" {
		input = append(input, byte(c), 0)
	}

	got, cs := decode(t, input)
	assert.Equal(t, "Fecha;Tipo\n", got)
	assert.Equal(t, encoding.UTF16LE, cs)
}

func TestNewUTF8Reader_LongUTF8(t *testing.T) {
	// Multi-byte runes straddling the peek window must not force a fallback.
	input := "a" + strings.Repeat("ñ", 5000)

	got, cs := decode(t, []byte(input))
	assert.Equal(t, input, got)
	assert.Equal(t, encoding.UTF8, cs)
}
