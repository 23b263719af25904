package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainResult = "sqlcheck/result/v1"
	DomainSpec   = "sqlcheck/spec/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ResultID computes the content-addressed ID of one expression result
// within a run. The same run, expression and seq always yield the same ID,
// which makes result writes idempotent.
func ResultID(runID, exprName string, seq int64) (string, error) {
	obj := IRObject{
		"run_id":    IRString(runID),
		"expr_name": IRString(exprName),
		"seq":       IRInt(seq),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ResultID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}

// SpecHash fingerprints a set of compiled expressions, keyed by name with
// their rendered SQL as value. Order of the map does not matter.
func SpecHash(exprs map[string]string) (string, error) {
	canonical, err := MarshalCanonical(exprs)
	if err != nil {
		return "", fmt.Errorf("SpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSpec, canonical), nil
}
