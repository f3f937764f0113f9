// Package source loads raw stats pages for the pipeline.
//
// Two sources implement Source:
//   - HTTP fetches live pages through the rate limited client
//   - Dir reads saved pages from disk, transparently decompressing .gz and
//     .zst files (klauspost/compress)
//
// Dir.Discover walks the tree with charlievieth/fastwalk and filters
// relative paths with bmatcuk/doublestar patterns such as
// "2024/**/*.html". Router picks a source per reference so one job can mix
// URLs and saved files.
package source
