package aggregate

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// FilePattern matches the trip files inside a source directory
const FilePattern = "*.csv"

// Result is the outcome of one file task. Exactly one of Partial and Err is set.
type Result struct {
	Path    string
	Partial *Partial
	Err     error
}

// Discover lists the trip files in dir in lexical order
func Discover(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, FilePattern))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// DefaultWorkers is the worker bound used when none is configured
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}

// Dispatch aggregates every path on a pool of at most workers goroutines and
// delivers one Result per path in completion order. A failing file never
// stops the others. When fileTimeout is positive each file gets its own
// deadline and an overrun is reported as that file's error. The channel is
// closed once every task has finished.
func Dispatch(ctx context.Context, paths []string, workers int, fileTimeout time.Duration) <-chan Result {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	results := make(chan Result, workers)

	var g errgroup.Group
	g.SetLimit(workers)

	go func() {
		defer close(results)
		for _, path := range paths {
			path := path
			g.Go(func() error {
				results <- runTask(ctx, path, fileTimeout)
				return nil
			})
		}
		_ = g.Wait()
	}()

	return results
}

func runTask(ctx context.Context, path string, timeout time.Duration) (res Result) {
	res.Path = path
	defer func() {
		if r := recover(); r != nil {
			res.Partial = nil
			res.Err = fmt.Errorf("panic while aggregating %s: %v", path, r)
		}
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res.Partial, res.Err = AggregateFile(ctx, path)
	return res
}
