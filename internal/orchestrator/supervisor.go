package orchestrator

import (
	"context"

	"github.com/thejerf/suture/v4"

	"github.com/playlistbridge/playlistbridge/internal/logging"
)

// oneShotService adapts a single pipeline run into a suture.Service: it
// runs fn exactly once, recovering any panic, and returns
// suture.ErrDoNotRestart either way so the supervisor never restarts it
// (spec's "a panicking sync is logged and contained, not restarted"). The
// caller observes completion via done, not via Serve's return value.
type oneShotService struct {
	name string
	fn   func(ctx context.Context)
	done chan struct{}
}

func newOneShotService(name string, fn func(ctx context.Context)) *oneShotService {
	return &oneShotService{name: name, fn: fn, done: make(chan struct{})}
}

// Serve implements suture.Service.
func (s *oneShotService) Serve(ctx context.Context) (err error) {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Str("sync", s.name).Interface("panic", r).Msg("sync pipeline panicked, contained by supervisor")
		}
		err = suture.ErrDoNotRestart
	}()
	s.fn(ctx)
	return suture.ErrDoNotRestart
}

// syncSupervisor wraps a suture.Supervisor sized for this daemon: one
// flat tree (no nested supervisors), restart intensity irrelevant since
// every service is one-shot and asks not to be restarted.
type syncSupervisor struct {
	supervisor *suture.Supervisor
}

func newSyncSupervisor(ctx context.Context) *syncSupervisor {
	sup := suture.New("playlist-syncs", suture.Spec{})
	go sup.Serve(ctx)
	return &syncSupervisor{supervisor: sup}
}

// run starts fn as a supervised one-shot service and blocks until it
// completes (or ctx is cancelled), then removes it from the tree.
func (s *syncSupervisor) run(ctx context.Context, name string, fn func(ctx context.Context)) {
	svc := newOneShotService(name, fn)
	token := s.supervisor.Add(svc)
	defer s.supervisor.Remove(token)

	select {
	case <-svc.done:
	case <-ctx.Done():
	}
}
