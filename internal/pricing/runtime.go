package pricing

import (
	"context"
	"fmt"
	"time"

	"ratequote-backend/internal/automation"
	"ratequote-backend/internal/automation/bql"
	"ratequote-backend/internal/automation/localchrome"
	"ratequote-backend/internal/components/telemetry"
	"ratequote-backend/internal/scripts"

	"github.com/redis/go-redis/v9"
)

const (
	report_runtime_gate = "runtime.gate"
)

// Runtime is a Service built from a Config together with the connections it
// holds open.
type Runtime struct {
	Service *Service
	closers []func()
}

// Close releases the executor and gate connections.
func (r Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// NewRuntime picks an executor and a session gate from cfg. Browserless is
// preferred over a chrome instance, with neither configured every quote
// fails with a configuration error.
func NewRuntime(ctx context.Context, cfg Config, tel telemetry.API) (Runtime, error) {
	var rt Runtime

	executor, closeExecutor, err := executorFor(cfg, tel)
	if err != nil {
		return Runtime{}, err
	}
	if closeExecutor != nil {
		rt.closers = append(rt.closers, closeExecutor)
	}

	gate, closeGate := gateFor(ctx, cfg.Sessions, tel)
	if closeGate != nil {
		rt.closers = append(rt.closers, closeGate)
	}

	rt.Service = NewService(
		executor,
		gate,
		Portals(cfg),
		ServiceOptions{
			Deadline: cfg.Deadline(),
			Debug:    cfg.Debug,
		},
		tel,
	)
	return rt, nil
}

// Portals returns every supported portal configured from cfg.
func Portals(cfg Config) []Portal {
	timing := scripts.DefaultTiming()
	return []Portal{
		NewLoannex(cfg.Loannex, timing),
		NewLenderPrice(cfg.LenderPrice, timing),
	}
}

func executorFor(cfg Config, tel telemetry.API) (automation.Executor, func(), error) {
	switch {
	case cfg.Browserless.Token != "":
		opts := bql.Options{
			Endpoint:          cfg.Browserless.Endpoint,
			Token:             cfg.Browserless.Token,
			Timeout:           cfg.Deadline(),
			RequestsPerSecond: cfg.Browserless.RequestsPerSecond,
		}
		if cfg.Browserless.DumpDir != "" {
			output, err := telemetry.NewDumpDir(cfg.Browserless.DumpDir, cfg.Browserless.DumpKeep)
			if err != nil {
				return nil, nil, fmt.Errorf("pricing: dump dir: %w", err)
			}
			opts.Dump = output
		}
		return bql.NewClient(opts, tel), nil, nil
	case cfg.Chrome.Enabled:
		executor := localchrome.New(localchrome.Options{
			RemoteURL: cfg.Chrome.RemoteURL,
			ExecPath:  cfg.Chrome.ExecPath,
		}, tel)
		return executor, executor.Close, nil
	}
	return nil, nil, nil
}

// gateFor falls back to an in-process gate when redis cannot be reached.
func gateFor(ctx context.Context, cfg SessionsConfig, tel telemetry.API) (automation.Gate, func()) {
	if cfg.Limit <= 0 {
		return automation.Unbounded{}, nil
	}
	wait := time.Duration(cfg.WaitSeconds) * time.Second
	if cfg.RedisAddr == "" {
		return automation.NewLocalGate(cfg.Limit, wait), nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	err := client.Ping(pingCtx).Err()
	if err != nil {
		tel.ReportBroken(report_runtime_gate, fmt.Errorf("ping %s: %w", cfg.RedisAddr, err))
		client.Close()
		return automation.NewLocalGate(cfg.Limit, wait), nil
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	closeClient := func() { client.Close() }
	return automation.NewRedisGate(client, cfg.RedisKey, cfg.Limit, ttl, tel), closeClient
}
