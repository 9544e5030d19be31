// Package core implements the recompile/execute orchestrator and its
// collaborators: the source fingerprint hasher, the build-command templater,
// the compiler invocation and the binary executor.
package core

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

// hashChunkSize is the fixed read size used when streaming a file through
// the digest. Whole-file buffering is never required.
const hashChunkSize = 1024

// Fingerprint streams r through SHA-256 and returns the uppercase
// hex-encoded digest. Uppercase matches the fingerprints stored in existing
// registry documents.
func Fingerprint(r io.Reader) (string, error) {
	digest := sha256.New()
	buf := make([]byte, hashChunkSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			digest.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return strings.ToUpper(hex.EncodeToString(digest.Sum(nil))), nil
}

// FingerprintFile hashes the contents of the file at path.
func FingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Fingerprint(f)
}
