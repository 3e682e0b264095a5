// Command genmock writes a sample receiving tree for demos and manual
// testing of the ingestion service. The tree mixes valid daily, weekly,
// and issue-pinned files with a few files that should be skipped or
// rejected, so every classification path is exercised.
//
// Usage:
//
//	go run ./cmd/genmock -out ./data/receiving
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

type mockFile struct {
	path string
	body string
}

const validHeader = "geo_id,val,se,sample_size,missing_value,missing_stderr,missing_sample_size\n"

var files = []mockFile{
	{
		// Valid daily state file.
		path: "ght/20200408_state_rawsearch.csv",
		body: validHeader +
			"ca,1.1,0.1,301,0,0,0\n" +
			"tx,1.2,0.2,302,0,0,0\n" +
			"fl,NA,,303,1,5,0\n",
	},
	{
		// Valid weekly county file with one bad geo_id row.
		path: "fb_survey/weekly_202015_county_cli.csv",
		body: validHeader +
			"06001,2.5,0.3,120,0,0,0\n" +
			"1234,2.6,0.3,121,0,0,0\n" +
			"48201,2.7,0.4,122,0,0,0\n",
	},
	{
		// Valid issue-pinned file: issue and lag come from the
		// directory, not the scan time.
		path: "issue_20200408/ght/20200408_nation_rawsearch.csv",
		body: validHeader +
			"us,3.14,0.05,10000,0,0,0\n",
	},
	{
		// Header missing required columns: rejected whole-file.
		path: "bad_header/20200408_state_sig.csv",
		body: "geo_id,val\nca,1.0\n",
	},
	{
		// Insane day: recognized shape, rejected at classification.
		path: "bad_day/22222222_state_sig.csv",
		body: validHeader + "ca,1.0,0.1,10,0,0,0\n",
	},
	{
		// Not a candidate: ignored silently.
		path: "notes/README.md",
		body: "not a signal file\n",
	},
}

func main() {
	out := flag.String("out", "data/receiving", "directory to write the sample tree into")
	flag.Parse()

	for _, f := range files {
		dest := filepath.Join(*out, filepath.FromSlash(f.path))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(dest, []byte(f.body), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(dest)
	}
	fmt.Printf("wrote %d files under %s\n", len(files), *out)
}
