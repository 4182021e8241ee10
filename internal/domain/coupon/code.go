package coupon

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	codeAlphabet     = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeRandomLength = 6
	codePrefixMax    = 12
)

// GenerateCode builds a globally unique, human-copyable coupon code:
// an item-derived prefix, a random block and a time-derived disambiguator,
// e.g. BURGER-K4PQ2M-SX3F9A. Ambiguous characters (0/O, 1/I) are excluded
// from the random block. Uniqueness is ultimately enforced by the unique
// index on discount_coupons.code.
func GenerateCode(itemSlug string) (string, error) {
	prefix := strings.ToUpper(strings.ReplaceAll(itemSlug, "-", ""))
	if prefix == "" {
		prefix = "REWARD"
	}
	if len(prefix) > codePrefixMax {
		prefix = prefix[:codePrefixMax]
	}

	buf := make([]byte, codeRandomLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("coupon code randomness: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}

	stamp := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))

	return fmt.Sprintf("%s-%s-%s", prefix, string(buf), stamp), nil
}
