package hasher

import (
	"hash"
	"sort"
	"strings"

	blake2b "github.com/minio/blake2b-simd"
	sha256 "github.com/minio/sha256-simd"
	"github.com/twmb/murmur3"
	"golang.org/x/crypto/sha3"
)

// AvailableHashers maps the user-facing algorithm names onto hash
// constructors. A nil maker means "valid name, no hashing performed".
var AvailableHashers = map[string]func() hash.Hash{
	"none":        nil,
	"sha2-256":    sha256.New,
	"sha3-512":    sha3.New512,
	"blake2b-256": blake2b.New256,
	"murmur3-128": func() hash.Hash { return murmur3.New128() },
}

// AvailableNames renders the registry keys for helptext and errors.
func AvailableNames() string {
	avail := make([]string, 0, len(AvailableHashers))
	for name := range AvailableHashers {
		avail = append(avail, "'"+name+"'")
	}
	sort.Strings(avail)
	return strings.Join(avail, ", ")
}
