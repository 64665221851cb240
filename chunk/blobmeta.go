package chunk

import (
	"github.com/tinylib/msgp/msgp"
)

// BlobMeta is the index record kept per stored blob, persisted inside
// the embedded BuntDB index (see store.go). Encoded by hand with the
// msgp runtime helpers rather than generated code - there is no `go
// generate` step in this build. The encoding is a six-element msgp
// array holding the fields in declaration order, with no field names.
type BlobMeta struct {
	OrigSize   int64
	DiskSize   int64
	Variant    uint8
	Owner      [32]byte
	Checksum   uint64
	Compressed bool
}

const blobMetaArity = 6

// MarshalMsg implements msgp.Marshaler.
func (m *BlobMeta) MarshalMsg(b []byte) ([]byte, error) {
	o := msgp.AppendArrayHeader(b, blobMetaArity)
	o = msgp.AppendInt64(o, m.OrigSize)
	o = msgp.AppendInt64(o, m.DiskSize)
	o = msgp.AppendUint8(o, m.Variant)
	o = msgp.AppendBytes(o, m.Owner[:])
	o = msgp.AppendUint64(o, m.Checksum)
	o = msgp.AppendBool(o, m.Compressed)
	return o, nil
}

// UnmarshalMsg implements msgp.Unmarshaler.
func (m *BlobMeta) UnmarshalMsg(bts []byte) ([]byte, error) {
	sz, bts, err := msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return bts, err
	}
	if sz != blobMetaArity {
		return bts, msgp.ArrayError{Wanted: blobMetaArity, Got: sz}
	}
	if m.OrigSize, bts, err = msgp.ReadInt64Bytes(bts); err != nil {
		return bts, err
	}
	if m.DiskSize, bts, err = msgp.ReadInt64Bytes(bts); err != nil {
		return bts, err
	}
	if m.Variant, bts, err = msgp.ReadUint8Bytes(bts); err != nil {
		return bts, err
	}
	var owner []byte
	if owner, bts, err = msgp.ReadBytesBytes(bts, nil); err != nil {
		return bts, err
	}
	copy(m.Owner[:], owner)
	if m.Checksum, bts, err = msgp.ReadUint64Bytes(bts); err != nil {
		return bts, err
	}
	if m.Compressed, bts, err = msgp.ReadBoolBytes(bts); err != nil {
		return bts, err
	}
	return bts, nil
}
