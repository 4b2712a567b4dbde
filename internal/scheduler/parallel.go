package scheduler

import (
	"sync"

	"github.com/VKCOM/modbuild/internal/engine"
)

// CompileMany compiles every path in paths using up to jobs concurrent
// workers. A failure does not stop the remaining compiles; once all have
// finished, the error of one of the failed compiles (if any) is returned.
// Grounded on spec.md §4.4's concurrency contract note, "if parallelism is
// added, each compiler gets its own driver instance with its own pipe
// pair" — Target's own state is mutex-guarded (see target.go) and every
// engine.BuildContext component it touches (Registry, ModuleRegistry,
// InfoStore, PathCache, DirectoryConfigCache) is independently safe for
// concurrent use, so one Target may drive many compilers at once.
func (t *Target) CompileMany(paths []string, jobs int) error {
	if jobs < 1 {
		jobs = 1
	}

	sem := make(chan struct{}, jobs)
	errs := make(chan error, len(paths))
	var wg sync.WaitGroup

	for _, p := range paths {
		p := p
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			errs <- t.Compile(p, engine.TypeUnknown, "")
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
