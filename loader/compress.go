package loader

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/erraggy/oascombine/oaserrors"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Decompress returns data unchanged unless it is gzip or zstd compressed,
// as recognised by its magic bytes. Compressed sources such as
// "api.yaml.gz" and "api.json.zst" can therefore be combined directly. The
// decompressed size is capped at limit.
func Decompress(data []byte, location string, limit int64) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return gunzip(data, location, limit)
	case bytes.HasPrefix(data, zstdMagic):
		return unzstd(data, location, limit)
	}
	return data, nil
}

func decompressEncoding(encoding string, data []byte, location string, limit int64) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip", "x-gzip":
		return gunzip(data, location, limit)
	case "zstd":
		return unzstd(data, location, limit)
	}
	return nil, &oaserrors.FetchError{Location: location, Message: fmt.Sprintf("unsupported content encoding %q", encoding)}
}

func gunzip(data []byte, location string, limit int64) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &oaserrors.ParseError{Path: location, Message: "invalid gzip stream", Cause: err}
	}
	defer func() { _ = zr.Close() }()
	return readDecompressed(zr, location, limit)
}

func unzstd(data []byte, location string, limit int64) ([]byte, error) {
	zr, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &oaserrors.ParseError{Path: location, Message: "invalid zstd stream", Cause: err}
	}
	defer zr.Close()
	return readDecompressed(zr, location, limit)
}

func readDecompressed(r io.Reader, location string, limit int64) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, &oaserrors.ParseError{Path: location, Message: "failed to decompress", Cause: err}
	}
	if int64(len(out)) > limit {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "file_size",
			Limit:        limit,
			Message:      "decompressed document " + location + " is too large",
		}
	}
	return out, nil
}
