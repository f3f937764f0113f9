// Package pipeline runs scrape jobs: it loads each page of a job, extracts
// the cell stream with the job's layout, reconstructs a typed table per page
// and merges the page tables in job order.
//
// Jobs are declared in YAML (goccy/go-yaml), TOML (pelletier/go-toml/v2) or
// JSON (bytedance/sonic), picked by file extension:
//
//	name: big-ten-2024
//	schema:
//	  preset: wbb
//	layout:
//	  cells: {css: "#individual tbody td"}
//	  headers: {css: "#individual thead th"}
//	  rows: {css: "#individual tbody tr"}
//	row_policy: skip
//	pages:
//	  - url: https://example.edu/sports/wbb/stats/2024
//	    identity: [{name: team, value: Iowa}, {name: season, value: "2024"}]
//	  - file: saved/uconn-2024.html
//	    identity: [{name: team, value: UConn}, {name: season, value: "2024"}]
//
// Pages are processed by a bounded worker pool. A failing page is reported
// in the Result with the stage it failed at and never stops the others.
package pipeline
