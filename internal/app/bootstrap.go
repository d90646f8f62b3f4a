package app

import (
	"context"
	"errors"
	"time"

	"github.com/wallgreat218-lgtm/zenvora-store/internal/config"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/logger"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/provider"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/router"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/service"
	"github.com/wallgreat218-lgtm/zenvora-store/internal/worker"
)

// BuildRunner assembles the services for the requested mode.
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		httpService := NewHTTPService(addr, engine)
		services = append(services,
			httpService,
			newBroadcastService(container),
			newSweepService(container.CheckoutService, 0),
		)
	}

	if mode == ModeAll || mode == ModeWorker {
		if cfg.Queue.Enabled {
			consumer := worker.NewConsumer(container)
			workerService, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		} else if mode == ModeWorker {
			return nil, errors.New("worker mode requires queue.enabled")
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run is the process entry point.
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}

// broadcastService runs the cart event fan-out alongside the API.
type broadcastService struct {
	container *provider.Container
}

func newBroadcastService(c *provider.Container) *broadcastService {
	return &broadcastService{container: c}
}

func (s *broadcastService) Name() string { return "broadcast" }

func (s *broadcastService) Start(ctx context.Context) error {
	if s == nil || s.container == nil || s.container.Broadcaster == nil {
		return errors.New("broadcaster not initialized")
	}
	s.container.Broadcaster.Start(ctx)
	<-ctx.Done()
	return ctx.Err()
}

func (s *broadcastService) Stop(ctx context.Context) error {
	if s == nil || s.container == nil || s.container.Broadcaster == nil {
		return nil
	}
	s.container.Broadcaster.Stop()
	return nil
}

// sweepService evicts expired checkout sessions on a timer.
type sweepService struct {
	checkout *service.CheckoutService
	interval time.Duration
}

func newSweepService(checkout *service.CheckoutService, interval time.Duration) *sweepService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &sweepService{checkout: checkout, interval: interval}
}

func (s *sweepService) Name() string { return "session_sweeper" }

func (s *sweepService) Start(ctx context.Context) error {
	if s == nil || s.checkout == nil {
		return errors.New("checkout service not initialized")
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.checkout.SweepExpired(); n > 0 {
				logger.Infow("checkout_sessions_swept", "count", n)
			}
		}
	}
}

func (s *sweepService) Stop(ctx context.Context) error { return nil }
