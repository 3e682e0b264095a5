package importer

import (
	"context"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/xavier-xia-99/delphi-epidata/internal/domain"
)

// Scanner walks a receiving directory and classifies everything it finds.
// The clock supplies "today" for default issue dates; tests inject a fake.
type Scanner struct {
	Root  string
	Clock clockwork.Clock
}

// Discover walks the tree once and returns a classification per file. A
// directory named issue_<day> with an insane day yields one
// ReasonInvalidIssueDir classification and its subtree is not entered.
// Only real filesystem failures return an error.
func (s Scanner) Discover(ctx context.Context) ([]Classification, error) {
	asOf := s.Clock.Now()
	var out []Classification

	err := filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if m := issueDirRe.FindStringSubmatch(strings.ToLower(d.Name())); m != nil {
				day, _ := strconv.Atoi(m[1])
				if !domain.IsSaneDay(day) {
					out = append(out, Classification{Path: path, Reason: ReasonInvalidIssueDir})
					return fs.SkipDir
				}
			}
			return nil
		}
		out = append(out, ClassifyPath(path, asOf))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
