// Package core wires the parsing, aggregation and report packages into the
// operations behind each command.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/sprintboard/core/agg"
	"github.com/huangsam/sprintboard/core/report"
	"github.com/huangsam/sprintboard/core/settings"
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/internal/outwriter"
	"github.com/huangsam/sprintboard/schema"
)

// ErrNoData is returned by the report operations when nothing has been imported or configured.
var ErrNoData = errors.New("no features or iterations yet; import a TSV file with --confirm first")

// ExecutorFunc defines the function signature for executing the report commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ResolveSettings returns the settings a command works with. An explicit settings file wins,
// then the settings store entry of the project, then the settings kept in the state file.
func ResolveSettings(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, state schema.State) (schema.Settings, error) {
	log := loggerFromContext(ctx)

	// 1. Explicit settings file
	if cfg.SettingsPath != "" {
		s, err := ReadSettingsFile(cfg.SettingsPath)
		if err != nil {
			return schema.Settings{}, err
		}
		log.Debug("settings loaded from file", "path", cfg.SettingsPath)
		return s, nil
	}

	// 2. Settings store
	if store := settingsStore(mgr); store != nil {
		data, ts, err := store.Get(cfg.Project)
		if err != nil {
			return schema.Settings{}, fmt.Errorf("failed to read settings of project %q: %w", cfg.Project, err)
		}
		if data != nil {
			s, err := settings.Import(data)
			if err != nil {
				return schema.Settings{}, fmt.Errorf("stored settings of project %q: %w", cfg.Project, err)
			}
			log.Debug("settings loaded from store", "project", cfg.Project, "timestamp", ts)
			return s, nil
		}
	}

	// 3. State file
	return state.Settings.Clone(), nil
}

// LoadWorkspace loads the state file and resolves the settings the reports run with,
// command line overrides included.
func LoadWorkspace(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.State, error) {
	state, err := LoadState(cfg.StatePath)
	if err != nil {
		return schema.State{}, err
	}
	s, err := ResolveSettings(ctx, cfg, mgr, state)
	if err != nil {
		return schema.State{}, err
	}
	state = state.WithSettings(cfg.ApplySettingsOverrides(s))

	loggerFromContext(ctx).Debug("workspace loaded",
		"state", cfg.StatePath,
		"features", len(state.Features),
		"iterations", len(state.Settings.Iterations),
		"members", len(state.Settings.Members))
	return state, nil
}

// loadReportWorkspace loads the workspace and rejects one with nothing to report on.
func loadReportWorkspace(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.State, error) {
	state, err := LoadWorkspace(ctx, cfg, mgr)
	if err != nil {
		return schema.State{}, err
	}
	if len(state.Features) == 0 && len(state.Settings.Iterations) == 0 {
		return schema.State{}, ErrNoData
	}
	return state, nil
}

// GetAggregateResults computes the per-iteration aggregates.
func GetAggregateResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.IterationAggregate, error) {
	state, err := loadReportWorkspace(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	return agg.ComputeIterationAggregates(state.Features, state.Settings), nil
}

// GetProgressResults computes the cumulative progress board.
func GetProgressResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.ProgressRow, error) {
	state, err := loadReportWorkspace(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	aggs := agg.ComputeIterationAggregates(state.Features, state.Settings)
	return report.Progress(state.Features, state.Settings, aggs), nil
}

// GetVelocityResults computes the team velocity, the member velocity over
// cfg.From..cfg.To and the features whose points cannot be counted up to cfg.To.
func GetVelocityResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.VelocityReport, error) {
	state, err := loadReportWorkspace(ctx, cfg, mgr)
	if err != nil {
		return schema.VelocityReport{}, err
	}
	members := report.MemberVelocity(state.Features, state.Settings, cfg.From, cfg.To)
	return schema.VelocityReport{
		Team:         report.TeamVelocity(state.Features, state.Settings),
		Members:      members,
		PointsIssues: report.StoryPointErrors(agg.ValidFeatures(state.Features, state.Settings), members.To),
	}, nil
}

// GetSummaryResults computes the project summary.
func GetSummaryResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.ProjectSummary, error) {
	state, err := loadReportWorkspace(ctx, cfg, mgr)
	if err != nil {
		return schema.ProjectSummary{}, err
	}
	return report.Summary(state.Features, state.Settings), nil
}

// GetFeatureResults returns the features matching cfg.Filter.
func GetFeatureResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.Feature, error) {
	state, err := loadReportWorkspace(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}
	return report.FilterFeatures(state.Features, cfg.Filter), nil
}

// ExecuteAggregate prints the per-iteration aggregates.
func ExecuteAggregate(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	aggs, err := GetAggregateResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteAggregates(aggs, cfg)
}

// ExecuteProgress prints the cumulative progress board.
func ExecuteProgress(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	rows, err := GetProgressResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteProgress(rows, cfg)
}

// ExecuteVelocity prints the team and member velocity views.
func ExecuteVelocity(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, err := GetVelocityResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if len(result.PointsIssues) > 0 {
		loggerFromContext(ctx).Warn("features without story points", "count", len(result.PointsIssues))
	}
	return outwriter.NewOutWriter().WriteVelocity(result, cfg)
}

// ExecuteSummary prints the project summary.
func ExecuteSummary(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	summary, err := GetSummaryResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteSummary(summary, cfg)
}

// ExecuteFeatures prints the filtered feature table.
func ExecuteFeatures(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	features, err := GetFeatureResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteFeatures(features, cfg)
}

// settingsStore returns the configured settings store, or nil.
func settingsStore(mgr contract.StoreManager) contract.SettingsStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetSettingsStore()
}

// historyStore returns the configured history store, or nil.
func historyStore(mgr contract.StoreManager) contract.HistoryStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetHistoryStore()
}
