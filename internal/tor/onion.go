package tor

import (
	"encoding/base32"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Onion address constants.
const (
	// OnionV3Length is the length of a v3 onion address without the
	// ".onion" suffix: 56 characters of base32-encoded data.
	OnionV3Length = 56

	// OnionV3TotalLength is the total length including the ".onion" suffix.
	OnionV3TotalLength = 62

	// OnionV3Version is the version byte for v3 onion addresses.
	OnionV3Version = 0x03

	// OnionSuffix is the common suffix for all onion addresses.
	OnionSuffix = ".onion"
)

// onionV3Pattern matches v3 onion addresses. Base32 uses lowercase a-z
// and digits 2-7.
var onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)

// onionV2Pattern matches the deprecated 16-character v2 format. We detect
// these only to report them as dead links.
var onionV2Pattern = regexp.MustCompile(`^[a-z2-7]{16}\.onion$`)

// onionV3ContentPattern matches v3 addresses within larger text, used
// when scraping raw engine result pages.
var onionV3ContentPattern = regexp.MustCompile(`[a-z2-7]{56}\.onion`)

// checksumPrefix is the prefix in the v3 checksum calculation, from the
// Tor rendezvous specification.
var checksumPrefix = []byte(".onion checksum")

// IsValidV3Address checks if the given address is a valid v3 onion
// address, verifying both format and checksum.
//
// Design decision: We perform full checksum validation rather than just
// pattern matching. Search engines index plenty of mistyped and corrupted
// onion addresses, and checksum verification is exactly how Tor itself
// decides whether an address is usable.
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)

	if !onionV3Pattern.MatchString(address) {
		return false
	}

	onionPart := strings.TrimSuffix(address, OnionSuffix)

	// The Tor spec uses standard base32 encoding (RFC 4648).
	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(onionPart))
	if err != nil {
		return false
	}

	// 32 bytes ed25519 public key + 2 bytes checksum + 1 byte version.
	if len(decoded) != 35 {
		return false
	}

	pubkey := decoded[:32]
	checksum := decoded[32:34]
	version := decoded[34]

	if version != OnionV3Version {
		return false
	}

	expectedChecksum := computeV3Checksum(pubkey, version)

	return checksum[0] == expectedChecksum[0] && checksum[1] == expectedChecksum[1]
}

// computeV3Checksum computes the first 2 bytes of
// SHA3-256(".onion checksum" || pubkey || version).
func computeV3Checksum(pubkey []byte, version byte) []byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, version)

	hash := sha3.Sum256(data)

	return hash[:2]
}

// IsV2Address checks if the given address matches the v2 onion address
// format. V2 addresses were deprecated in October 2021 and no longer work
// on the Tor network; detecting them lets results report dead links
// instead of silently dropping them.
func IsV2Address(address string) bool {
	return onionV2Pattern.MatchString(strings.ToLower(address))
}

// ExtractV3Addresses finds all v3 onion addresses in the given text and
// returns them deduplicated. The darkweb searcher falls back to this when
// an engine's result markup cannot be parsed structurally.
func ExtractV3Addresses(content string) []string {
	content = strings.ToLower(content)
	matches := onionV3ContentPattern.FindAllString(content, -1)

	seen := make(map[string]bool)
	var result []string

	for _, match := range matches {
		if !seen[match] {
			seen[match] = true
			result = append(result, match)
		}
	}

	return result
}

// NormalizeAddress normalizes an onion address to lowercase with the
// ".onion" suffix and validates it.
//
// It handles the variations that appear in engine result links: uppercase
// letters, a missing ".onion" suffix, surrounding whitespace, URL schemes,
// and trailing paths or query strings.
func NormalizeAddress(address string) (string, error) {
	address = strings.ToLower(strings.TrimSpace(address))

	address = strings.TrimPrefix(address, "https://")
	address = strings.TrimPrefix(address, "http://")

	if idx := strings.IndexAny(address, "/?#"); idx != -1 {
		address = address[:idx]
	}

	if !strings.HasSuffix(address, OnionSuffix) {
		address = address + OnionSuffix
	}

	if !IsValidV3Address(address) {
		if IsV2Address(address) {
			return "", ErrV2AddressDeprecated
		}
		return "", ErrInvalidOnionAddress
	}

	return address, nil
}
