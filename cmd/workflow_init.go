package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/stage"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/internal/workflow"
	anthropicpkg "github.com/sells-group/outreach-cli/pkg/anthropic"
	"github.com/sells-group/outreach-cli/pkg/bland"
	"github.com/sells-group/outreach-cli/pkg/gcal"
)

// workflowEnv holds the initialized store, clients, and controller needed
// by the stage commands.
type workflowEnv struct {
	Store      store.Store
	Controller *workflow.Controller
}

// Close releases resources held by the workflow environment.
func (we *workflowEnv) Close() {
	if we.Store != nil {
		_ = we.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "outreach.db"
		}
		return store.NewSQLite(path)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initWorkflow sets up the store, API clients, executor, and controller.
// Callers should defer env.Close(). The calendar client is optional: it is
// skipped when credentials are not configured, and scheduling reports the
// missing precondition instead.
func initWorkflow(ctx context.Context) (*workflowEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)

	blandOpts := []bland.Option{}
	if cfg.Bland.BaseURL != "" {
		blandOpts = append(blandOpts, bland.WithBaseURL(cfg.Bland.BaseURL))
	}
	if cfg.Bland.RateLimit > 0 {
		blandOpts = append(blandOpts, bland.WithRateLimit(cfg.Bland.RateLimit))
	}
	blandClient := bland.NewClient(cfg.Bland.Key, blandOpts...)

	var calendarClient gcal.Client
	if cfg.Calendar.CredentialsPath != "" && cfg.Calendar.TokenPath != "" {
		ts, err := gcal.TokenSourceFromFiles(cfg.Calendar.CredentialsPath, cfg.Calendar.TokenPath)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "load calendar credentials")
		}
		calendarClient, err = gcal.NewClient(ctx, ts)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "init calendar client")
		}
	} else {
		zap.L().Info("calendar credentials not configured, scheduling disabled")
	}

	exec := stage.NewExecutor(cfg, anthropicClient, blandClient, calendarClient)
	ctrl := workflow.NewController(st, exec, cfg.Workflow)

	return &workflowEnv{Store: st, Controller: ctrl}, nil
}
