package helpers

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

func SHA256(input string) string {
	return SHA256Bytes([]byte(input))
}

func SHA256Bytes(input []byte) string {
	hash := sha256.Sum256(input)
	return hex.EncodeToString(hash[:])
}

func SHA256Reader(reader io.Reader) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, reader); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// ShortChecksum returns the first n hex characters of the SHA-256 of content, for log
// lines and generated identifiers.
func ShortChecksum(content []byte, n int) string {
	sum := SHA256Bytes(content)
	if n <= 0 || n > len(sum) {
		return sum
	}
	return sum[:n]
}
