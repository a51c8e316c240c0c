package archive

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// Codec is the compression applied to an archived record.
type Codec byte

const (
	CodecNone Codec = iota
	CodecSnappy
	CodecLZ4
)

// ParseCodec parses "none", "snappy" or "lz4".
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(s) {
	case "none", "":
		return CodecNone, nil
	case "snappy":
		return CodecSnappy, nil
	case "lz4":
		return CodecLZ4, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, s)
}

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecSnappy:
		return "snappy"
	case CodecLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("codec(%d)", byte(c))
	}
}

// maxExpansion bounds the raw length a compressed payload may claim. An
// lz4 block expands by at most 255x; snappy stays well under that.
const maxExpansion = 255

// encodeRecord frames raw as (codec, uvarint raw length, payload). An lz4
// block that does not shrink the data is stored uncompressed.
func encodeRecord(c Codec, raw []byte) ([]byte, Codec, error) {
	var payload []byte
	switch c {
	case CodecNone:
		payload = raw
	case CodecSnappy:
		payload = snappy.Encode(nil, raw)
	case CodecLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, c, fmt.Errorf("lz4 compress: %w", err)
		}
		if n == 0 || n >= len(raw) {
			c, payload = CodecNone, raw
		} else {
			payload = buf[:n]
		}
	default:
		return nil, c, fmt.Errorf("%w: %s", ErrUnknownCodec, c)
	}

	rec := make([]byte, 1, 1+binary.MaxVarintLen64+len(payload))
	rec[0] = byte(c)
	rec = binary.AppendUvarint(rec, uint64(len(raw)))
	return append(rec, payload...), c, nil
}

func decodeRecord(rec []byte) ([]byte, error) {
	if len(rec) < 2 {
		return nil, fmt.Errorf("%w: record of %d bytes", ErrCorrupt, len(rec))
	}
	c := Codec(rec[0])
	size, n := binary.Uvarint(rec[1:])
	if n <= 0 {
		return nil, fmt.Errorf("%w: bad length prefix", ErrCorrupt)
	}
	payload := rec[1+n:]
	if (c == CodecSnappy || c == CodecLZ4) && size > uint64(len(payload))*maxExpansion {
		return nil, fmt.Errorf("%w: %d bytes claimed from a %d byte payload", ErrCorrupt, size, len(payload))
	}

	var raw []byte
	switch c {
	case CodecNone:
		raw = append([]byte(nil), payload...)
	case CodecSnappy:
		n, err := snappy.DecodedLen(payload)
		if err != nil || uint64(n) != size {
			return nil, fmt.Errorf("%w: snappy header does not match length %d", ErrCorrupt, size)
		}
		if raw, err = snappy.Decode(nil, payload); err != nil {
			return nil, fmt.Errorf("%w: snappy: %v", ErrCorrupt, err)
		}
	case CodecLZ4:
		raw = make([]byte, size)
		m, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
		}
		raw = raw[:m]
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, c)
	}

	if uint64(len(raw)) != size {
		return nil, fmt.Errorf("%w: decoded %d bytes, want %d", ErrCorrupt, len(raw), size)
	}
	return raw, nil
}
