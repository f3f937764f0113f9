// Package export writes reconstructed tables.
//
// Sinks:
//   - CSV (encoding/csv), readable back with ReadCSV
//   - JSON via bytedance/sonic, record keys in column order
//   - YAML via goccy/go-yaml, record keys in column order
//   - TOML via pelletier/go-toml/v2 as a columns array plus [[records]]
//
// WriteFile picks the format from the extension and compresses "*.gz" with
// gzip and "*.zst" with zstd (klauspost/compress).
package export
