// Package airesponsecache implements the fingerprint-keyed completion cache
// (spec §4.2): TTL expiry, safe concurrent access, and single-flight
// de-duplication of concurrent misses for the same fingerprint.
package airesponsecache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
)

// fingerprintInput is the canonical set of fields the fingerprint is
// derived from; json.Marshal on a struct with fixed field order gives us
// the "keys lexicographically sorted" canonical encoding spec §4.2 asks
// for without needing a generic canonicalizer.
type fingerprintInput struct {
	MaxTokens   int     `json:"max_tokens"`
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
}

// Fingerprint computes the cache key for (prompt, model, max_tokens,
// temperature). The digest algorithm is not observable per spec §4.2; MD5
// is used here purely as a fast, fixed-size, non-cryptographic digest.
func Fingerprint(prompt, model string, maxTokens int, temperature float64) string {
	// Field names are already in lexicographic order (MaxTokens, Model,
	// Prompt, Temperature) so encoding/json's fixed struct-field order
	// doubles as the canonical ordering spec §4.2 requires.
	b, _ := json.Marshal(fingerprintInput{
		MaxTokens:   maxTokens,
		Model:       model,
		Prompt:      prompt,
		Temperature: temperature,
	})
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
