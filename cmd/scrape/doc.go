// Package main is the statscrape command line.
//
// scrape runs one job file and writes the merged table:
//
//	# Fetch the job's URLs, write CSV
//	./scrape -job iowa.yaml -out iowa.csv
//
//	# Rebuild every saved page under a directory, gzip'd JSON
//	./scrape -job iowa.yaml -dir pages -glob '2024/**/*.html' -out 2024.json.gz
//
//	# YAML to stdout with column statistics on stderr
//	./scrape -job iowa.toml -format yaml -summary
//
// Exit status is 0 when every page succeeded, 3 when some pages failed
// and 1 when the job could not run or produced nothing.
package main
