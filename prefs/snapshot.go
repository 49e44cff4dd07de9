package prefs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/arloliu/cpref/codec"
	"github.com/arloliu/cpref/compress"
	"github.com/arloliu/cpref/format"
	"github.com/arloliu/cpref/internal/hash"
	"github.com/arloliu/cpref/internal/pool"
)

// Snapshot layout, all integers little-endian:
//
//	0   magic        "CPRF"
//	4   version      uint8
//	5   compression  uint8  (format.CompressionType of the payload)
//	6   user codec   uint8, uint8 param
//	8   item codec   uint8, uint8 param
//	10  reserved     uint16
//	12  users        uint32
//	16  items        uint32
//	20  preferences  uint64
//	28  raw size     uint64 (payload before compression)
//	36  stored size  uint64 (payload as written)
//	44  checksum     uint64 (xxHash64 of the raw payload)
//	52  payload
//
// The raw payload holds, for every user row then every item row, the uvarint row
// length followed, for non-empty rows, by the uvarint block size and the block.
const (
	snapshotMagic      = "CPRF"
	snapshotVersion    = 1
	snapshotHeaderSize = 52
)

type snapshotHeader struct {
	compression format.CompressionType
	userCodec   codec.Descriptor
	itemCodec   codec.Descriptor
	numUsers    uint32
	numItems    uint32
	preferences uint64
	rawSize     uint64
	storedSize  uint64
	checksum    uint64
}

func (h *snapshotHeader) marshal() []byte {
	b := make([]byte, 0, snapshotHeaderSize)
	b = append(b, snapshotMagic...)
	b = append(b, snapshotVersion, byte(h.compression))
	b = append(b, byte(h.userCodec.Type), byte(h.userCodec.Param))
	b = append(b, byte(h.itemCodec.Type), byte(h.itemCodec.Param))
	b = binary.LittleEndian.AppendUint16(b, 0)
	b = binary.LittleEndian.AppendUint32(b, h.numUsers)
	b = binary.LittleEndian.AppendUint32(b, h.numItems)
	b = binary.LittleEndian.AppendUint64(b, h.preferences)
	b = binary.LittleEndian.AppendUint64(b, h.rawSize)
	b = binary.LittleEndian.AppendUint64(b, h.storedSize)
	b = binary.LittleEndian.AppendUint64(b, h.checksum)

	return b
}

func (h *snapshotHeader) unmarshal(b []byte) error {
	if len(b) < snapshotHeaderSize || string(b[:4]) != snapshotMagic {
		return fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	if b[4] != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, b[4])
	}

	h.compression = format.CompressionType(b[5])
	h.userCodec = codec.Descriptor{Type: format.CodecType(b[6]), Param: int(b[7])}
	h.itemCodec = codec.Descriptor{Type: format.CodecType(b[8]), Param: int(b[9])}
	h.numUsers = binary.LittleEndian.Uint32(b[12:])
	h.numItems = binary.LittleEndian.Uint32(b[16:])
	h.preferences = binary.LittleEndian.Uint64(b[20:])
	h.rawSize = binary.LittleEndian.Uint64(b[28:])
	h.storedSize = binary.LittleEndian.Uint64(b[36:])
	h.checksum = binary.LittleEndian.Uint64(b[44:])

	return nil
}

// WriteTo writes a binary snapshot of the container to w.
//
// Blocks are written as stored, so loading a snapshot does not recompress
// anything. The payload is compressed with the algorithm chosen by
// WithSnapshotCompression when the container was built or loaded.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	start := time.Now()

	raw := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(raw)
	appendViewPayload(raw, &c.users)
	appendViewPayload(raw, &c.items)

	alg, err := compress.New(c.snapshotCompression)
	if err != nil {
		return 0, err
	}

	stored := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(stored)
	stored.B, err = alg.Compress(stored.B[:0], raw.Bytes())
	if err != nil {
		return 0, fmt.Errorf("prefs: compress snapshot: %w", err)
	}

	header := snapshotHeader{
		compression: alg.Type(),
		userCodec:   c.users.codec.Descriptor(),
		itemCodec:   c.items.codec.Descriptor(),
		numUsers:    uint32(c.NumUsers()),
		numItems:    uint32(c.NumItems()),
		preferences: uint64(c.NumPreferences()),
		rawSize:     uint64(raw.Len()),
		storedSize:  uint64(stored.Len()),
		checksum:    hash.Checksum(raw.Bytes()),
	}

	n, err := w.Write(header.marshal())
	written := int64(n)
	if err != nil {
		return written, fmt.Errorf("prefs: write snapshot header: %w", err)
	}
	m, err := stored.WriteTo(w)
	written += m
	if err != nil {
		return written, fmt.Errorf("prefs: write snapshot payload: %w", err)
	}

	c.logger.Debug("snapshot written",
		"compression", alg.Type().String(),
		"raw_bytes", raw.Len(),
		"stored_bytes", stored.Len(),
		"duration", time.Since(start),
	)

	return written, nil
}

func appendViewPayload(bb *pool.ByteBuffer, v *view) {
	for row, n := range v.lengths {
		bb.B = binary.AppendUvarint(bb.B, uint64(n))
		if n == 0 {
			continue
		}
		block := v.blocks[row]
		bb.B = binary.AppendUvarint(bb.B, uint64(len(block)))
		_, _ = bb.Write(block)
	}
}

// ReadSnapshot loads a container written by WriteTo.
//
// Codecs are recreated from the descriptors in the header; WithCodecOptions
// passes extra options to them. A payload that fails its checksum yields
// ErrChecksumMismatch; anything else that does not parse yields ErrInvalidSnapshot.
func ReadSnapshot(r io.Reader, opts ...Option) (*Container, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	headerBytes := make([]byte, snapshotHeaderSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrInvalidSnapshot, err)
	}
	var header snapshotHeader
	if err := header.unmarshal(headerBytes); err != nil {
		return nil, err
	}

	alg, err := compress.New(header.compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	userCodec, err := codec.FromDescriptor(header.userCodec, cfg.codecOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: user codec: %w", ErrInvalidSnapshot, err)
	}
	itemCodec, err := codec.FromDescriptor(header.itemCodec, cfg.codecOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: item codec: %w", ErrInvalidSnapshot, err)
	}

	var stored bytes.Buffer
	if _, err := io.Copy(&stored, io.LimitReader(r, int64(header.storedSize))); err != nil {
		return nil, fmt.Errorf("prefs: read snapshot payload: %w", err)
	}
	if uint64(stored.Len()) != header.storedSize {
		return nil, fmt.Errorf("%w: payload truncated at %d of %d bytes", ErrInvalidSnapshot, stored.Len(), header.storedSize)
	}

	if header.rawSize > math.MaxInt32 {
		return nil, fmt.Errorf("%w: raw payload size %d", ErrInvalidSnapshot, header.rawSize)
	}
	raw, err := alg.Decompress(nil, stored.Bytes(), int(header.rawSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if hash.Checksum(raw) != header.checksum {
		return nil, ErrChecksumMismatch
	}

	p := payloadReader{data: raw}
	users := view{kind: UserView, codec: userCodec}
	items := view{kind: ItemView, codec: itemCodec}
	if err := p.readView(&users, int(header.numUsers)); err != nil {
		return nil, err
	}
	if err := p.readView(&items, int(header.numItems)); err != nil {
		return nil, err
	}
	if p.pos != len(raw) {
		return nil, fmt.Errorf("%w: %d trailing payload bytes", ErrInvalidSnapshot, len(raw)-p.pos)
	}

	users.finish()
	items.finish()
	if uint64(users.total) != header.preferences || uint64(items.total) != header.preferences {
		return nil, fmt.Errorf("%w: header announces %d preferences, views hold %d and %d",
			ErrInvalidSnapshot, header.preferences, users.total, items.total)
	}

	cfg.logger.Debug("snapshot read",
		"compression", header.compression.String(),
		"users", header.numUsers,
		"items", header.numItems,
		"preferences", header.preferences,
		"duration", time.Since(start),
	)

	return &Container{
		users:               users,
		items:               items,
		logger:              cfg.logger,
		snapshotCompression: header.compression,
	}, nil
}

type payloadReader struct {
	data []byte
	pos  int
}

func (p *payloadReader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(p.data[p.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("%w: bad varint at payload offset %d", ErrInvalidSnapshot, p.pos)
	}
	p.pos += n

	return v, nil
}

func (p *payloadReader) readView(v *view, rows int) error {
	// every row takes at least one byte
	if rows > len(p.data)-p.pos {
		return fmt.Errorf("%w: %d %s rows announced, %d payload bytes left", ErrInvalidSnapshot, rows, v.kind, len(p.data)-p.pos)
	}
	v.lengths = make([]uint32, rows)
	v.blocks = make([]codec.Block, rows)

	for row := range rows {
		n, err := p.uvarint()
		if err != nil {
			return err
		}
		if n > 0xFFFFFFFF {
			return fmt.Errorf("%w: %s row %d length %d", ErrInvalidSnapshot, v.kind, row, n)
		}
		v.lengths[row] = uint32(n)
		if n == 0 {
			continue
		}

		size, err := p.uvarint()
		if err != nil {
			return err
		}
		if size > uint64(len(p.data)-p.pos) {
			return fmt.Errorf("%w: %s row %d block exceeds payload", ErrInvalidSnapshot, v.kind, row)
		}
		end := p.pos + int(size)
		v.blocks[row] = codec.Block(p.data[p.pos:end:end])
		p.pos = end
	}

	return nil
}
