package persistence

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/qubicDB/emocore/pkg/core"
)

// Binary format constants
const (
	MagicLexicon  = "EMLX"
	MagicTrend    = "EMTR"
	FormatVersion = 1

	headerSize = 20
)

// Header for binary format
type Header struct {
	Magic    [4]byte
	Version  uint16
	Flags    uint16
	DataLen  uint64
	Checksum uint32
}

const (
	FlagCompressed uint16 = 1 << 0
)

// Codec handles encoding/decoding of snapshot documents
type Codec struct {
	compress  bool
	compLevel int
}

// NewCodec creates a new codec
func NewCodec(compress bool) *Codec {
	return &Codec{
		compress:  compress,
		compLevel: gzip.BestSpeed,
	}
}

// Encode serializes v behind a header tagged with magic. Map keys are
// sorted so equal documents encode to equal bytes.
func (c *Codec) Encode(magic string, v any) ([]byte, error) {
	if len(magic) != 4 {
		return nil, fmt.Errorf("invalid magic %q", magic)
	}

	var body bytes.Buffer
	enc := msgpack.NewEncoder(&body)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	data := body.Bytes()

	var flags uint16
	if c.compress {
		compressed, err := c.compressData(data)
		if err != nil {
			return nil, err
		}
		if len(compressed) < len(data) {
			data = compressed
			flags |= FlagCompressed
		}
	}

	header := Header{
		Version:  FormatVersion,
		Flags:    flags,
		DataLen:  uint64(len(data)),
		Checksum: c.checksum(data),
	}
	copy(header.Magic[:], magic)

	buf := new(bytes.Buffer)
	buf.Grow(headerSize + len(data))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	if _, err := buf.Write(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode verifies raw against magic and unpacks it into v. Every
// structural failure wraps core.ErrSnapshotCorrupt.
func (c *Codec) Decode(magic string, raw []byte, v any) error {
	if len(raw) < headerSize {
		return fmt.Errorf("%w: data too short", core.ErrSnapshotCorrupt)
	}

	buf := bytes.NewReader(raw)
	var header Header
	if err := binary.Read(buf, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("%w: %v", core.ErrSnapshotCorrupt, err)
	}

	if string(header.Magic[:]) != magic {
		return fmt.Errorf("%w: invalid magic bytes %q", core.ErrSnapshotCorrupt, header.Magic[:])
	}
	if header.Version > FormatVersion {
		return fmt.Errorf("%w: unsupported format version %d", core.ErrSnapshotCorrupt, header.Version)
	}
	if header.DataLen != uint64(buf.Len()) {
		return fmt.Errorf("%w: length mismatch", core.ErrSnapshotCorrupt)
	}

	data := make([]byte, header.DataLen)
	if _, err := io.ReadFull(buf, data); err != nil {
		return fmt.Errorf("%w: %v", core.ErrSnapshotCorrupt, err)
	}
	if c.checksum(data) != header.Checksum {
		return fmt.Errorf("%w: checksum mismatch", core.ErrSnapshotCorrupt)
	}

	if header.Flags&FlagCompressed != 0 {
		decompressed, err := c.decompressData(data)
		if err != nil {
			return fmt.Errorf("%w: %v", core.ErrSnapshotCorrupt, err)
		}
		data = decompressed
	}

	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", core.ErrSnapshotCorrupt, err)
	}
	return nil
}

// compressData compresses using gzip
func (c *Codec) compressData(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, c.compLevel)
	if err != nil {
		return nil, err
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

// decompressData decompresses gzip data
func (c *Codec) decompressData(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// checksum calculates a simple checksum
func (c *Codec) checksum(data []byte) uint32 {
	var sum uint32 = 0
	for i := 0; i < len(data); i++ {
		sum = sum*31 + uint32(data[i])
	}
	return sum
}
