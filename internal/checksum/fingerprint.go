package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
)

// Algorithm names a content fingerprint function.
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	XXH3   Algorithm = "xxh3"
)

// ParseAlgorithm validates a configured algorithm name. Empty selects SHA256.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", SHA256:
		return SHA256, nil
	case XXH3:
		return XXH3, nil
	default:
		return "", fmt.Errorf("unknown checksum algorithm %q (expected sha256 or xxh3)", name)
	}
}

// Sum fingerprints content with the algorithm.
func (a Algorithm) Sum(content []byte) string {
	switch a {
	case XXH3:
		return fmt.Sprintf("%016x", xxh3.Hash(content))
	default:
		hash := sha256.Sum256(content)
		return hex.EncodeToString(hash[:])
	}
}
