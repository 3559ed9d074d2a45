package idgen

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// base36Digits is the alphabet used to render a hash as a short, readable
// string: digits first so low-order output tends to sort before letters.
const base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"

// EncodeBase36 renders data as a base36 string exactly length characters
// wide, zero-padding on the left if the numeric value is too small and
// keeping only the least-significant digits if it's too large.
func EncodeBase36(data []byte, length int) string {
	value := new(big.Int).SetBytes(data)
	base := big.NewInt(36)
	remainder := new(big.Int)

	digits := make([]byte, 0, length)
	for value.Sign() > 0 {
		value.DivMod(value, base, remainder)
		digits = append(digits, base36Digits[remainder.Int64()])
	}

	var out strings.Builder
	for i := len(digits) - 1; i >= 0; i-- {
		out.WriteByte(digits[i])
	}

	encoded := out.String()
	switch {
	case len(encoded) < length:
		encoded = strings.Repeat("0", length-len(encoded)) + encoded
	case len(encoded) > length:
		encoded = encoded[len(encoded)-length:]
	}
	return encoded
}

// hashByteWidth maps a desired base36 output length to how many SHA-256
// bytes feed the encoder. Wider requested lengths need more entropy to
// avoid always zero-padding; values outside 3-8 fall back to 3 bytes.
func hashByteWidth(length int) int {
	switch length {
	case 3:
		return 2
	case 4:
		return 3
	case 5, 6:
		return 4
	case 7, 8:
		return 5
	default:
		return 3
	}
}

// GenerateHashID derives a stable, content-addressed ID from an entity's
// defining fields plus its creation timestamp: "prefix-xxxxxx". Two calls
// with identical inputs (including nonce) always produce the same ID,
// which is what makes export/import round-trips through a fresh database
// land on different IDs only because the timestamp or nonce differs, not
// because the scheme is random.
func GenerateHashID(prefix, title, detail, actor string, createdAt time.Time, length, nonce int) string {
	content := fmt.Sprintf("%s|%s|%s|%d|%d", title, detail, actor, createdAt.UnixNano(), nonce)
	sum := sha256.Sum256([]byte(content))
	short := EncodeBase36(sum[:hashByteWidth(length)], length)
	return fmt.Sprintf("%s-%s", prefix, short)
}
