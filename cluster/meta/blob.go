package meta

// BlobVariant distinguishes immutable public content from
// owner-scoped private content.
type BlobVariant uint8

const (
	VariantPublic BlobVariant = iota
	VariantPrivate
)

func (v BlobVariant) String() string {
	if v == VariantPrivate {
		return "Private"
	}
	return "Public"
}

// BlobAddress is a content-derived 256-bit name plus its variant tag.
// Two stores agreeing on a blob agree on its address: the address is
// a pure function of the variant and its fields (spec.md §3).
type BlobAddress struct {
	Name    XorName
	Variant BlobVariant
}

func (a BlobAddress) String() string { return a.Variant.String() + ":" + a.Name.String() }

// Blob is the data object the chunk store persists.
type Blob struct {
	Contents []byte
	Variant  BlobVariant
	// Owner is set only for Private blobs.
	Owner PublicKey
}

// NewPublicBlob derives a Public blob's address from its contents alone.
func NewPublicBlob(contents []byte) Blob {
	return Blob{Contents: contents, Variant: VariantPublic}
}

// NewPrivateBlob derives a Private blob's address from contents+owner.
func NewPrivateBlob(contents []byte, owner PublicKey) Blob {
	return Blob{Contents: contents, Variant: VariantPrivate, Owner: owner}
}

func (b Blob) IsPrivate() bool { return b.Variant == VariantPrivate }

// Address computes the blob's content-derived address. It is
// deliberately recomputed rather than cached on the struct: the
// invariant the spec asks for ("two stores agreeing on a blob agree
// on its address") is easiest to keep true if there is only ever one
// code path that can produce an address.
func (b Blob) Address() BlobAddress {
	switch b.Variant {
	case VariantPrivate:
		return BlobAddress{Name: FromContent(b.Contents, b.Owner[:]).asXorName(), Variant: VariantPrivate}
	default:
		return BlobAddress{Name: FromContent(b.Contents).asXorName(), Variant: VariantPublic}
	}
}

// Name is shorthand for Address().Name, mirroring the original
// `blob.name()` call sites in the Rust source.
func (b Blob) Name() XorName { return b.Address().Name }

func (m MessageId) asXorName() XorName { return XorName(m) }
