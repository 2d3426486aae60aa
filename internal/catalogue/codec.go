// Package catalogue loads and writes theme rule catalogues: JSON arrays of
// descriptors stored in ISO-8859-1 so Swedish theme names keep their
// diacritics byte for byte.
package catalogue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/charmap"

	"github.com/zapponejosh/themedays-api/internal/themes"
)

// DecodeLatin1 converts ISO-8859-1 bytes to UTF-8.
func DecodeLatin1(b []byte) ([]byte, error) {
	return charmap.ISO8859_1.NewDecoder().Bytes(b)
}

// EncodeLatin1 converts UTF-8 to ISO-8859-1. Characters outside Latin-1 are
// an error rather than being replaced.
func EncodeLatin1(b []byte) ([]byte, error) {
	return charmap.ISO8859_1.NewEncoder().Bytes(b)
}

// Parse decodes a Latin-1 catalogue.
func Parse(data []byte) ([]themes.Descriptor, error) {
	utf, err := DecodeLatin1(data)
	if err != nil {
		return nil, fmt.Errorf("decode latin-1: %w", err)
	}

	var descs []themes.Descriptor
	if err := json.Unmarshal(utf, &descs); err != nil {
		return nil, err
	}
	return descs, nil
}

// Write encodes descs as a Latin-1 catalogue, one descriptor per line.
func Write(w io.Writer, descs []themes.Descriptor) error {
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, d := range descs {
		line, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal %q: %w", d.Theme, err)
		}
		buf.WriteString("  ")
		buf.Write(line)
		if i < len(descs)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("]\n")

	latin, err := EncodeLatin1(buf.Bytes())
	if err != nil {
		return fmt.Errorf("encode latin-1: %w", err)
	}
	_, err = w.Write(latin)
	return err
}

// WriteFile writes descs to path as a Latin-1 catalogue.
func WriteFile(path string, descs []themes.Descriptor) error {
	var buf bytes.Buffer
	if err := Write(&buf, descs); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write catalogue: %w", err)
	}
	return nil
}
