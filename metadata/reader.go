package metadata

import "github.com/xornet-io/vault/cluster/meta"

// Reader abstracts the routing/membership substrate an elder sits on
// (spec.md §1: "membership and routing... are external collaborators").
// BlobRecords asks it for placement candidates and section identity;
// it never reaches into routing state directly.
type Reader interface {
	// OurPrefix is this elder's metadata-section prefix.
	OurPrefix() meta.Prefix

	// OurName is this elder's own name. BlobRecords does not call it.
	OurName() meta.XorName

	// NonFullAdultsClosestTo returns up to count of the adults closest
	// to target by XOR distance, excluding any name present in full
	// (spec.md §4.4.1 "non_full_adults_closest_to").
	NonFullAdultsClosestTo(target meta.XorName, full map[meta.XorName]struct{}, count int) []meta.XorName

	// Members lists every adult currently in this elder's section.
	Members() []meta.XorName
}
