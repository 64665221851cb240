package node

import (
	"encoding/hex"
	"sort"

	"github.com/xornet-io/vault/cluster/meta"
	"github.com/xornet-io/vault/cmn/config"
)

// StaticReader satisfies metadata.Reader from a fixed membership list
// loaded out of cmn/config. It stands in for the routing/membership
// collaborator spec.md §1 declares external, so a standalone process
// has something to run against; a production deployment wires its own
// Reader backed by the real routing substrate instead.
type StaticReader struct {
	prefix  meta.Prefix
	self    meta.XorName
	members []meta.XorName
}

// NewStaticReaderFromConfig parses a config.Section's hex-encoded
// names. It returns an error if any name is malformed, rather than
// silently dropping a member - a section reader with the wrong
// membership is worse than a process that refuses to start.
func NewStaticReaderFromConfig(sec config.Section) (*StaticReader, error) {
	self, err := parseName(sec.SelfHex)
	if err != nil {
		return nil, err
	}
	prefixBits, err := parseName(sec.PrefixHex)
	if err != nil {
		return nil, err
	}
	members := make([]meta.XorName, 0, len(sec.MembersHex))
	for _, m := range sec.MembersHex {
		n, err := parseName(m)
		if err != nil {
			return nil, err
		}
		members = append(members, n)
	}
	return &StaticReader{
		prefix:  meta.Prefix{Bits: prefixBits, Len: sec.PrefixLen},
		self:    self,
		members: members,
	}, nil
}

func parseName(h string) (meta.XorName, error) {
	var n meta.XorName
	if h == "" {
		return n, nil
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return n, err
	}
	copy(n[:], b)
	return n, nil
}

func (r *StaticReader) OurPrefix() meta.Prefix { return r.prefix }
func (r *StaticReader) OurName() meta.XorName  { return r.self }

func (r *StaticReader) Members() []meta.XorName {
	return append([]meta.XorName(nil), r.members...)
}

func (r *StaticReader) NonFullAdultsClosestTo(target meta.XorName, full map[meta.XorName]struct{}, count int) []meta.XorName {
	candidates := make([]meta.XorName, 0, len(r.members))
	for _, m := range r.members {
		if _, isFull := full[m]; !isFull {
			candidates = append(candidates, m)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return meta.CmpDistance(target, candidates[i], candidates[j]) < 0
	})
	if len(candidates) > count {
		candidates = candidates[:count]
	}
	return candidates
}
