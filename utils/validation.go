package utils

import (
	"encoding/hex"
	"fmt"
	"net/url"
)

// ValidateLightningPubkey checks a node identity key: 33 compressed-key bytes
// hex encoded, starting with 02 or 03.
func ValidateLightningPubkey(pubkey string) error {
	if len(pubkey) != 66 {
		return fmt.Errorf("invalid pubkey: length must be 66 characters")
	}
	if pubkey[0] != '0' || (pubkey[1] != '2' && pubkey[1] != '3') {
		return fmt.Errorf("invalid pubkey: must start with 02 or 03")
	}
	if _, err := hex.DecodeString(pubkey); err != nil {
		return fmt.Errorf("invalid pubkey: %w", err)
	}
	return nil
}

func ValidateHTTPURL(urlStr string) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("URL must start with https:// or http://")
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
