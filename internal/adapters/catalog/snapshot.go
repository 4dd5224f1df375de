package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/okian/storefront/internal/domain/product"
	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// Format is a snapshot file encoding.
type Format string

// Supported snapshot formats.
const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
	FormatLZ4     Format = "lz4" // lz4 frame around msgpack
)

const snapshotFileMode = 0o644

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mp":
		return FormatMsgpack, nil
	case ".lz4":
		return FormatLZ4, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Load reads a catalog snapshot.
func Load(path string) ([]product.Product, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path) //nolint:gosec // path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadSnapshot, err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Save writes products to path in the format implied by its extension.
func Save(path string, products []product.Product) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, products); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), snapshotFileMode); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteSnapshot, err)
	}
	return nil
}

// Decode reads a snapshot in format from r.
func Decode(r io.Reader, format Format) ([]product.Product, error) {
	var products []product.Product
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&products); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadSnapshot, err)
		}
	case FormatMsgpack:
		if err := decodeMsgpack(r, &products); err != nil {
			return nil, err
		}
	case FormatLZ4:
		if err := decodeMsgpack(lz4.NewReader(r), &products); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if products == nil {
		products = []product.Product{}
	}
	return products, nil
}

// Encode writes products to w in format.
func Encode(w io.Writer, format Format, products []product.Product) error {
	if products == nil {
		products = []product.Product{}
	}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(products); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteSnapshot, err)
		}
	case FormatMsgpack:
		if err := msgpack.NewEncoder(w).Encode(products); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteSnapshot, err)
		}
	case FormatLZ4:
		zw := lz4.NewWriter(w)
		if err := msgpack.NewEncoder(zw).Encode(products); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteSnapshot, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteSnapshot, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return nil
}

func decodeMsgpack(r io.Reader, v any) error {
	dec := msgpack.NewDecoder(r)
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrReadSnapshot, err)
	}
	return nil
}
