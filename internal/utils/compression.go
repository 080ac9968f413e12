package utils

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Compression identifies the codec wrapped around a tar archive
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zst"
	CompressionXZ   Compression = "xz"
	CompressionGzip Compression = "gz"
	CompressionLZ4  Compression = "lz4"
	CompressionBz2  Compression = "bz2"
)

// Magic bytes for compression detection
var (
	zstdMagic  = []byte{0x28, 0xB5, 0x2F, 0xFD}
	xzMagic    = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	gzipMagic  = []byte{0x1F, 0x8B}
	lz4Magic   = []byte{0x04, 0x22, 0x4D, 0x18}
	bzip2Magic = []byte("BZh")
)

// ParseCompression maps a flag value or file extension to a Compression
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "zst", ".zst", "zstd":
		return CompressionZstd, nil
	case "xz", ".xz":
		return CompressionXZ, nil
	case "gz", ".gz", "gzip":
		return CompressionGzip, nil
	case "lz4", ".lz4":
		return CompressionLZ4, nil
	case "none", "":
		return CompressionNone, nil
	default:
		return "", fmt.Errorf("unsupported compression %q", s)
	}
}

func (c Compression) String() string {
	return string(c)
}

// Extension returns the file suffix appended after ".tar"
func (c Compression) Extension() string {
	switch c {
	case CompressionNone:
		return ""
	default:
		return "." + string(c)
	}
}

// Compress compresses data with the codec
func (c Compression) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	var w io.WriteCloser
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		w = zw
	case CompressionXZ:
		xw, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		w = xw
	case CompressionGzip:
		w = gzip.NewWriter(&buf)
	case CompressionLZ4:
		w = lz4.NewWriter(&buf)
	default:
		return nil, fmt.Errorf("cannot compress with %q", c)
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DetectCompression inspects the leading bytes of a stream
func DetectCompression(header []byte) Compression {
	switch {
	case bytes.HasPrefix(header, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(header, xzMagic):
		return CompressionXZ
	case bytes.HasPrefix(header, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(header, lz4Magic):
		return CompressionLZ4
	case bytes.HasPrefix(header, bzip2Magic):
		return CompressionBz2
	default:
		return CompressionNone
	}
}

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

type zstdCloser struct{ *zstd.Decoder }

func (z zstdCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// NewReader returns a reader that decompresses r according to its magic
// bytes. Uncompressed input is passed through.
func NewReader(r io.Reader) (io.ReadCloser, Compression, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, CompressionNone, err
	}

	c := DetectCompression(header)
	switch c {
	case CompressionZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, c, err
		}
		return zstdCloser{zr}, c, nil
	case CompressionXZ:
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, c, err
		}
		return nopCloser{xr}, c, nil
	case CompressionGzip:
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, c, err
		}
		return gr, c, nil
	case CompressionLZ4:
		return nopCloser{lz4.NewReader(br)}, c, nil
	case CompressionBz2:
		return nopCloser{bzip2.NewReader(br)}, c, nil
	default:
		return nopCloser{br}, c, nil
	}
}

// Decompress decompresses an in-memory blob of any supported codec
func Decompress(data []byte) ([]byte, error) {
	r, _, err := NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}
