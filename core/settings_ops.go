package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/huangsam/sprintboard/core/mapping"
	"github.com/huangsam/sprintboard/core/settings"
	"github.com/huangsam/sprintboard/internal/contract"
	"github.com/huangsam/sprintboard/schema"
)

// storeSettings upserts the settings of cfg.Project when a settings store is configured.
func storeSettings(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, s schema.Settings) error {
	store := settingsStore(mgr)
	if store == nil {
		return nil
	}
	data, err := settings.Export(s)
	if err != nil {
		return err
	}
	ts := nowFromContext(ctx).Unix()
	if err := store.Set(cfg.Project, data, ts); err != nil {
		return fmt.Errorf("failed to store settings of project %q: %w", cfg.Project, err)
	}
	loggerFromContext(ctx).Debug("settings stored", "project", cfg.Project, "timestamp", ts)
	return nil
}

// GetSettingsResults returns the resolved settings without command line overrides.
func GetSettingsResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.Settings, error) {
	state, err := LoadState(cfg.StatePath)
	if err != nil {
		return schema.Settings{}, err
	}
	return ResolveSettings(ctx, cfg, mgr, state)
}

// ExecuteSettingsExport writes the resolved settings to cfg.OutputFile or stdout.
// YAML is written for .yaml/.yml output files and JSON otherwise.
func ExecuteSettingsExport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	s, err := GetSettingsResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	var data []byte
	if isYAMLPath(cfg.OutputFile) {
		data, err = settings.ExportYAML(s)
	} else {
		data, err = settings.Export(s)
	}
	if err != nil {
		return err
	}

	if cfg.OutputFile == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(cfg.OutputFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote settings to %s\n", cfg.OutputFile)
	return nil
}

// ImportSettings replaces the settings of the state file, and of the settings store
// when one is configured, with the document at path. Nothing changes when it is invalid.
func ImportSettings(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, path string) (schema.Settings, error) {
	s, err := ReadSettingsFile(path)
	if err != nil {
		return schema.Settings{}, err
	}
	state, err := LoadState(cfg.StatePath)
	if err != nil {
		return schema.Settings{}, err
	}
	if err := SaveState(cfg.StatePath, settings.Apply(state, s)); err != nil {
		return schema.Settings{}, err
	}
	if err := storeSettings(ctx, cfg, mgr, s); err != nil {
		return schema.Settings{}, err
	}
	loggerFromContext(ctx).Info("settings imported", "path", path, "project", cfg.Project)
	return s, nil
}

// ExecuteSettingsImport imports the settings document at cfg.InputPath.
func ExecuteSettingsImport(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	s, err := ImportSettings(ctx, cfg, mgr, cfg.InputPath)
	if err != nil {
		return err
	}
	fmt.Printf("Imported settings: %d iterations, %d members\n", len(s.Iterations), len(s.Members))
	return nil
}

// ExecuteSettingsValidate checks the settings document at cfg.InputPath without applying it.
func ExecuteSettingsValidate(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	s, err := ReadSettingsFile(cfg.InputPath)
	var importErr *settings.ImportError
	if errors.As(err, &importErr) {
		for _, reason := range importErr.Reasons {
			fmt.Printf("  - %s\n", reason)
		}
	}
	if err != nil {
		return err
	}
	fmt.Printf("Settings are valid: %d iterations, %d members, includePRinDone=%t\n", len(s.Iterations), len(s.Members), s.IncludePRInDone)
	return nil
}

// SetIterations replaces the iterations of the current settings with the
// tab-separated iteration lines in text. Dates without a year use the context's reference time.
func SetIterations(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, text string) ([]schema.Iteration, error) {
	iterations, err := settings.ParseIterations(text, nowFromContext(ctx))
	if err != nil {
		return nil, err
	}
	state, err := LoadState(cfg.StatePath)
	if err != nil {
		return nil, err
	}
	s, err := ResolveSettings(ctx, cfg, mgr, state)
	if err != nil {
		return nil, err
	}
	s.Iterations = iterations
	if err := SaveState(cfg.StatePath, settings.Apply(state, s)); err != nil {
		return nil, err
	}
	if err := storeSettings(ctx, cfg, mgr, s); err != nil {
		return nil, err
	}
	return iterations, nil
}

// ExecuteSettingsIterations sets the iterations from the text file at cfg.InputPath.
func ExecuteSettingsIterations(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	text, err := ReadInput(cfg.InputPath)
	if err != nil {
		return err
	}
	iterations, err := SetIterations(ctx, cfg, mgr, text)
	if err != nil {
		return err
	}
	if len(iterations) > 0 {
		fmt.Println(settings.FormatIterations(iterations))
	}
	fmt.Printf("Saved %d iterations\n", len(iterations))
	return nil
}

// ErrStatusMappingIncomplete is returned when an internal status has no source value.
var ErrStatusMappingIncomplete = errors.New("every internal status needs a source value")

// StatusMappingForm is the editable view of the status mappings: one default
// source per internal status plus any additional sources.
type StatusMappingForm struct {
	Defaults   map[schema.InternalStatus]string `json:"defaults"`
	Additional []mapping.AdditionalMapping      `json:"additional"`
	Ready      bool                             `json:"ready"`
}

// GetStatusMappingResults returns the current status mappings as an editing form.
// Without saved mappings every internal status maps from itself.
func GetStatusMappingResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (StatusMappingForm, error) {
	s, err := GetSettingsResults(ctx, cfg, mgr)
	if err != nil {
		return StatusMappingForm{}, err
	}
	if len(s.StatusMappings) == 0 {
		defaults := mapping.DefaultStatusSources()
		return StatusMappingForm{Defaults: defaults, Ready: mapping.CanProceedStatus(defaults)}, nil
	}
	defaults, additional := mapping.SplitStatusMappings(s.StatusMappings)
	return StatusMappingForm{Defaults: defaults, Additional: additional, Ready: mapping.CanProceedStatus(defaults)}, nil
}

// SetStatusMappings replaces the status mappings with "source<TAB>status" lines.
// The first source of a status is its default and later ones are additional.
// Nothing is saved unless every internal status has a source.
func SetStatusMappings(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, text string) (StatusMappingForm, error) {
	defaults := make(map[schema.InternalStatus]string, len(schema.AllInternalStatuses))
	var additional []mapping.AdditionalMapping
	for i, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		source, raw, ok := strings.Cut(line, "\t")
		source = strings.TrimSpace(source)
		status := schema.InternalStatus(strings.TrimSpace(raw))
		if !ok || source == "" {
			return StatusMappingForm{}, fmt.Errorf("line %d: expected a source value, a tab and an internal status", i+1)
		}
		if !slices.Contains(schema.AllInternalStatuses, status) {
			return StatusMappingForm{}, fmt.Errorf("line %d: unknown internal status %q", i+1, status)
		}
		if _, taken := defaults[status]; !taken {
			defaults[status] = source
			continue
		}
		additional = append(additional, mapping.AdditionalMapping{Source: source, Status: status})
	}
	if !mapping.CanProceedStatus(defaults) {
		var missing []string
		for _, st := range schema.AllInternalStatuses {
			if defaults[st] == "" {
				missing = append(missing, string(st))
			}
		}
		return StatusMappingForm{}, fmt.Errorf("%w: %s", ErrStatusMappingIncomplete, strings.Join(missing, ", "))
	}

	state, err := LoadState(cfg.StatePath)
	if err != nil {
		return StatusMappingForm{}, err
	}
	s, err := ResolveSettings(ctx, cfg, mgr, state)
	if err != nil {
		return StatusMappingForm{}, err
	}
	s.StatusMappings = mapping.BuildStatusMappings(defaults, additional)
	if err := SaveState(cfg.StatePath, settings.Apply(state, s)); err != nil {
		return StatusMappingForm{}, err
	}
	if err := storeSettings(ctx, cfg, mgr, s); err != nil {
		return StatusMappingForm{}, err
	}
	return StatusMappingForm{Defaults: defaults, Additional: additional, Ready: true}, nil
}

// ExecuteSettingsStatusMapping prints the status mappings, first replacing them
// with the lines of cfg.InputPath when one is given.
func ExecuteSettingsStatusMapping(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	var (
		form StatusMappingForm
		err  error
	)
	if cfg.InputPath != "" {
		text, readErr := ReadInput(cfg.InputPath)
		if readErr != nil {
			return readErr
		}
		form, err = SetStatusMappings(ctx, cfg, mgr, text)
	} else {
		form, err = GetStatusMappingResults(ctx, cfg, mgr)
	}
	if err != nil {
		return err
	}

	for _, st := range schema.AllInternalStatuses {
		fmt.Printf("%s\t%s\n", form.Defaults[st], st)
	}
	for _, a := range form.Additional {
		fmt.Printf("%s\t%s\t(additional)\n", a.Source, a.Status)
	}
	if !form.Ready {
		fmt.Println("Not every internal status has a source value")
	}
	return nil
}
