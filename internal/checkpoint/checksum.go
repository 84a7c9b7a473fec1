package checkpoint

import "crypto/sha256"

// computeChecksum computes the SHA-256 checksum of the data section.
func computeChecksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// validateChecksum compares a computed checksum against the stored one.
// Returns ErrChecksumMismatch if they differ.
func validateChecksum(computed, stored [32]byte) error {
	if computed != stored {
		return ErrChecksumMismatch
	}
	return nil
}
