package classify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/abhisek/essaylens/internal/errs"
)

// Forest classifies with a random forest bundle read from disk. The bundle
// is loaded on first use, exactly once; concurrent first callers wait for
// that single load and share its result, including a load error.
type Forest struct {
	source string
	open   func() (io.ReadCloser, error)

	once   sync.Once
	bundle *Bundle
	err    error
}

// NewForest creates a Forest that loads the bundle at path on first use.
func NewForest(path string) *Forest {
	return &Forest{
		source: path,
		open:   func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// NewForestFrom creates a Forest over an arbitrary bundle source. name is
// used in error messages only.
func NewForestFrom(name string, open func() (io.ReadCloser, error)) *Forest {
	return &Forest{source: name, open: open}
}

// Bundle returns the loaded bundle, loading it if needed.
func (f *Forest) Bundle() (*Bundle, error) {
	f.once.Do(func() {
		f.bundle, f.err = f.load()
	})
	return f.bundle, f.err
}

func (f *Forest) load() (*Bundle, error) {
	rc, err := f.open()
	if err != nil {
		return nil, errs.Service("classifier", "forest load", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errs.Service("classifier", "forest load", fmt.Errorf("read %s: %w", f.source, err))
	}
	b, err := DecodeBundle(data)
	if err != nil {
		return nil, errs.Service("classifier", "forest load", fmt.Errorf("%s: %w", f.source, err))
	}
	return b, nil
}

// Classify loads the bundle on first use and returns the class with the
// highest mean leaf probability.
func (f *Forest) Classify(ctx context.Context, v Vector) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := f.Bundle()
	if err != nil {
		return "", err
	}
	label, _ := b.Predict(v)
	return label, nil
}

func (f *Forest) Backend() string { return "forest" }
