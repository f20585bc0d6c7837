// Package compress compresses persisted datasets according to their file
// extension.
package compress

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type is a compression algorithm.
type Type uint8

const (
	// None stores data as is.
	None Type = iota
	// LZ4 uses the LZ4 frame format (fast).
	LZ4
	// ZSTD uses the zstd frame format (better ratio).
	ZSTD
)

// Extensions appended to a base file name.
const (
	ExtLZ4  = ".lz4"
	ExtZSTD = ".zst"
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compress.Type(%d)", uint8(t))
	}
}

// Ext returns the file extension for t, or "" for None.
func (t Type) Ext() string {
	switch t {
	case LZ4:
		return ExtLZ4
	case ZSTD:
		return ExtZSTD
	default:
		return ""
	}
}

// Parse parses the String form of a type.
func Parse(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd", "zst":
		return ZSTD, nil
	}
	return None, fmt.Errorf("unknown compression %q", s)
}

// FromName returns the compression implied by a file name.
func FromName(name string) Type {
	switch {
	case strings.HasSuffix(name, ExtZSTD):
		return ZSTD
	case strings.HasSuffix(name, ExtLZ4):
		return LZ4
	default:
		return None
	}
}

// TrimExt removes a compression extension from name.
func TrimExt(name string) string {
	return strings.TrimSuffix(strings.TrimSuffix(name, ExtZSTD), ExtLZ4)
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil)
}

// Compress compresses data with t.
func Compress(data []byte, t Type) ([]byte, error) {
	switch t {
	case None:
		return data, nil
	case ZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(data, nil), nil
	case LZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("compress: unsupported type %s", t)
	}
}

// Decompress reverses Compress.
func Decompress(data []byte, t Type) ([]byte, error) {
	switch t {
	case None:
		return data, nil
	case ZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return out, nil
	case LZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("lz4: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("compress: unsupported type %s", t)
	}
}
