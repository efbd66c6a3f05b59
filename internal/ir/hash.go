package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests. The version suffix allows the
// algorithm to change without colliding with old digests.
const (
	DomainDocument = "regulum/document/v1"
	DomainExport   = "regulum/export/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentDigest returns a stable digest of a materialized document.
// Field order does not affect the digest.
func DocumentDigest(doc IRValue) (string, error) {
	canonical, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("DocumentDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDocument, canonical), nil
}

// ExportDigest folds a sequence of document digests into one. Order matters:
// two exports digest equal only when they emitted the same documents in the
// same order.
func ExportDigest(digests []string) string {
	h := sha256.New()
	h.Write([]byte(DomainExport))
	h.Write([]byte{0x00})
	for _, d := range digests {
		h.Write([]byte(d))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
