// Command validate performs an offline dry run over a receiving tree: it
// classifies every path, checks each candidate file's header, and
// validates every data row, reporting rejections without publishing or
// archiving anything.
//
// Usage:
//
//	go run ./cmd/validate -dir /common/covidcast/receiving [-as-of 20200408]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/xavier-xia-99/delphi-epidata/internal/domain"
	"github.com/xavier-xia-99/delphi-epidata/internal/importer"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "", "receiving directory to validate")
	asOfArg := flag.String("as-of", "", "issue date for files without an issue directory (YYYYMMDD, default today)")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	asOf := time.Now().UTC()
	if *asOfArg != "" {
		day, err := strconv.Atoi(*asOfArg)
		if err != nil || !domain.IsSaneDay(day) {
			fmt.Fprintf(os.Stderr, "FATAL: -as-of must be a sane YYYYMMDD date\n")
			os.Exit(1)
		}
		asOf = domain.DayToTime(day)
	}

	os.Exit(run(*dir, asOf))
}

func run(dir string, asOf time.Time) int {
	fmt.Println("=== Signal CSV Dry-Run Validation ===")
	fmt.Println()

	scanner := importer.Scanner{Root: dir, Clock: clockwork.NewFakeClockAt(asOf)}
	files, err := scanner.Discover(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: scan %s: %v\n", dir, err)
		return 1
	}

	paths := &phase{name: "Phase 1: Path classification"}
	headers := &phase{name: "Phase 2: Header validation"}
	rows := &phase{name: "Phase 3: Row validation"}

	var candidates, skipped, acceptedRows, rejectedRows int
	for _, c := range files {
		switch {
		case c.Reason == importer.ReasonNotCandidate:
			skipped++
		case !c.Accepted():
			paths.errorf("%s: %s", c.Path, c.Reason)
		default:
			candidates++
			a, r := validateFile(headers, rows, c)
			acceptedRows += a
			rejectedRows += r
		}
	}

	fmt.Println()
	allPassed := true
	for _, p := range []*phase{paths, headers, rows} {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-36s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Paths: %d candidate files, %d non-candidates skipped\n", candidates, skipped)
	fmt.Printf("Rows:  %d accepted, %d rejected\n", acceptedRows, rejectedRows)

	for _, p := range []*phase{paths, headers, rows} {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateFile streams one candidate file and records rejections. Returns
// (accepted, rejected) row counts.
func validateFile(headers, rows *phase, c importer.Classification) (int, int) {
	loader, err := importer.OpenCSV(c.Path, c.Details.GeoType)
	if err != nil {
		if errors.Is(err, importer.ErrInvalidHeader) {
			headers.errorf("%v", err)
		} else {
			headers.errorf("%s: %v", c.Path, err)
		}
		return 0, 0
	}
	defer loader.Close()

	accepted, rejected := 0, 0
	for line := 2; ; line++ { // line 1 is the header
		_, failedField, err := loader.Next()
		if err == io.EOF {
			return accepted, rejected
		}
		if err != nil {
			headers.errorf("%s: read failed at line %d: %v", c.Path, line, err)
			return accepted, rejected
		}
		if failedField != "" {
			rejected++
			rows.errorf("%s line %d: invalid %s", c.Path, line, failedField)
			continue
		}
		accepted++
	}
}
