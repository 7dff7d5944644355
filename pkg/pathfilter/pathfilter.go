package pathfilter

import (
	"strings"

	"github.com/armon/go-radix"
	"github.com/bmatcuk/doublestar/v3"
	"github.com/pkg/errors"
)

// Filter decides which paths are reported. A path is shown when it
// matches one of the include globs (or there are none) and has none of
// the excluded prefixes.
type Filter struct {
	includes []string
	excludes *radix.Tree
}

func New(includes, excludePrefixes []string) (*Filter, error) {
	f := &Filter{
		excludes: radix.New(),
	}

	for _, ptrn := range includes {
		ptrn = strings.TrimSpace(ptrn)
		if ptrn == "" {
			continue
		}

		if _, err := doublestar.Match(ptrn, ptrn); err != nil {
			return nil, errors.Wrapf(err, "bad include pattern %q", ptrn)
		}

		f.includes = append(f.includes, ptrn)
	}

	for _, prefix := range excludePrefixes {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			continue
		}

		f.excludes.Insert(prefix, struct{}{})
	}

	return f, nil
}

func (f *Filter) IsEmpty() bool {
	return f == nil || (len(f.includes) == 0 && f.excludes.Len() == 0)
}

func (f *Filter) Excluded(path string) bool {
	if f == nil {
		return false
	}

	_, _, found := f.excludes.LongestPrefix(path)
	return found
}

func (f *Filter) Included(path string) bool {
	if f == nil || len(f.includes) == 0 {
		return true
	}

	for _, ptrn := range f.includes {
		if matched, _ := doublestar.Match(ptrn, path); matched {
			return true
		}
	}

	return false
}

func (f *Filter) Match(path string) bool {
	return f.Included(path) && !f.Excluded(path)
}
