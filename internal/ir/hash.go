package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// algorithm to change without colliding with stored digests.
const (
	DomainScenario = "tlbench/scenario/v1"
	DomainChecks   = "tlbench/checks/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ScenarioHash fingerprints a scenario definition. Two scenario files that
// describe the same model, phases and expectations hash identically
// regardless of file format or key order.
func ScenarioHash(scenario Object) (string, error) {
	canonical, err := Marshal(scenario)
	if err != nil {
		return "", fmt.Errorf("ScenarioHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainScenario, canonical), nil
}

// ChecksDigest fingerprints an ordered list of check records. Replaying the
// same scenario against the same model must reproduce the digest.
func ChecksDigest(checks Array) (string, error) {
	canonical, err := Marshal(checks)
	if err != nil {
		return "", fmt.Errorf("ChecksDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainChecks, canonical), nil
}

// MustScenarioHash is like ScenarioHash but panics on error.
// Use only in tests with known-good input.
func MustScenarioHash(scenario Object) string {
	h, err := ScenarioHash(scenario)
	if err != nil {
		panic(err)
	}
	return h
}
