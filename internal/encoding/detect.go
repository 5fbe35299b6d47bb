// Package encoding normalises uploaded spreadsheet exports to UTF-8.
//
// Office machines still save CSV as Windows-1252 or Latin-1, and some
// spreadsheet tools prepend a BOM or write UTF-16.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const peekSize = 4096

// Charset names the encoding a reader was decoded from.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF8BOM     Charset = "UTF-8 (BOM)"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88591    Charset = "ISO-8859-1"
	ISO885915   Charset = "ISO-8859-15"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// NewUTF8Reader wraps r so it yields UTF-8 and reports the detected charset.
// A BOM wins, then valid UTF-8, then chardet's best guess among the Latin
// charsets. Anything else is read as Windows-1252.
func NewUTF8Reader(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, peekSize)

	buf, err := br.Peek(peekSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, UTF8BOM, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return utf16(br, unicode.LittleEndian), UTF16LE, nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return utf16(br, unicode.BigEndian), UTF16BE, nil
	case validUTF8Prefix(buf, err == io.EOF):
		return br, UTF8, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		switch result.Charset {
		case "UTF-8":
			return br, UTF8, nil
		case "ISO-8859-1":
			return transform.NewReader(br, charmap.ISO8859_1.NewDecoder()), ISO88591, nil
		case "ISO-8859-15":
			return transform.NewReader(br, charmap.ISO8859_15.NewDecoder()), ISO885915, nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), Windows1252, nil
}

func utf16(r io.Reader, e unicode.Endianness) io.Reader {
	return transform.NewReader(r, unicode.UTF16(e, unicode.UseBOM).NewDecoder())
}

// validUTF8Prefix tolerates a multi-byte rune cut at the end of a partial peek.
func validUTF8Prefix(buf []byte, whole bool) bool {
	if whole {
		return utf8.Valid(buf)
	}

	for cut := 0; cut < utf8.UTFMax && cut < len(buf); cut++ {
		if utf8.Valid(buf[:len(buf)-cut]) {
			return true
		}
	}

	return false
}
