package dataset

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TaskGroup runs independent units of work and joins on the first error.
// The serial variant runs tasks synchronously in submission order; the
// threaded variant runs them on a bounded worker pool with unconstrained
// completion order. Callers must not depend on either.
type TaskGroup interface {
	Append(task func() error)
	Finish() error
}

type serialTaskGroup struct {
	err error
}

func newSerialTaskGroup() *serialTaskGroup {
	return &serialTaskGroup{}
}

func (g *serialTaskGroup) Append(task func() error) {
	if g.err != nil {
		return
	}
	g.err = task()
}

func (g *serialTaskGroup) Finish() error {
	return g.err
}

type threadedTaskGroup struct {
	group *errgroup.Group
}

func newThreadedTaskGroup(limit int) *threadedTaskGroup {
	g := new(errgroup.Group)
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g.SetLimit(limit)
	return &threadedTaskGroup{group: g}
}

func (g *threadedTaskGroup) Append(task func() error) {
	g.group.Go(task)
}

func (g *threadedTaskGroup) Finish() error {
	return g.group.Wait()
}
