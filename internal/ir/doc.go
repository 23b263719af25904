// Package ir provides the foundational types shared by every sqlcheck package.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Semantic types are compared by identity, never by family
//   - Literal values are a sealed set (no floats, decimals travel as strings)
//   - All JSON tags use snake_case
//   - Canonical JSON (RFC 8785) is the only encoding used for hashing
package ir
