package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ak/sba/internal/domain/brewing"
	"github.com/ak/sba/internal/domain/models"
	"github.com/ak/sba/internal/domain/repositories"
	"github.com/ak/sba/internal/pkg/export"
	"github.com/ak/sba/internal/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BrewDuration is the length of one aerated brew
const BrewDuration = 24 * time.Hour

// Recipe export formats
const (
	FormatText = "text"
	FormatCSV  = "csv"
)

// BrewService drives the saved brew session: inputs, recipe, advice,
// presets, timer and draft logs
type BrewService interface {
	Inputs(ctx context.Context) (*models.BrewInputs, error)
	SaveInputs(ctx context.Context, in models.BrewInputs) (*models.BrewInputs, error)
	ChangeStage(ctx context.Context, stage models.Stage) (*models.BrewInputs, error)
	UpdateCarbs(ctx context.Context, patch models.CarbsPatch) (*models.BrewInputs, error)
	Recipe(ctx context.Context) (*BrewRecipe, error)
	Advice(ctx context.Context) (*models.BrewAdvice, error)
	ListPresets(ctx context.Context) ([]models.BrewPreset, error)
	SavePreset(ctx context.Context, name string) (*models.BrewPreset, error)
	ApplyPreset(ctx context.Context, id string) (*models.BrewInputs, error)
	DeletePreset(ctx context.Context, id string) error
	StartTimer(ctx context.Context) (*models.TimerStatus, error)
	ResetTimer(ctx context.Context) (*models.TimerStatus, error)
	Timer(ctx context.Context) (*models.TimerStatus, error)
	SaveDraftLog(ctx context.Context) (*models.LogEntry, error)
	ExportRecipe(ctx context.Context, format string) ([]byte, string, error)
	RecipeQRCode(ctx context.Context, size int) ([]byte, error)
}

// BrewRecipe is the recipe built from the saved inputs
type BrewRecipe struct {
	Inputs models.BrewInputs   `json:"inputs"`
	Items  []models.RecipeItem `json:"items"`
	Text   string              `json:"text"`
}

type brewService struct {
	settings      repositories.DocumentStore
	inventory     InventoryService
	logs          LogService
	defaultRegion string
	logger        *logger.Logger
	now           func() time.Time
}

// NewBrewService creates a new brew service
func NewBrewService(
	settings repositories.DocumentStore,
	inventory InventoryService,
	logs LogService,
	defaultRegion string,
	log *logger.Logger,
) BrewService {
	return &brewService{
		settings:      settings,
		inventory:     inventory,
		logs:          logs,
		defaultRegion: defaultRegion,
		logger:        log.WithComponent("brew"),
		now:           time.Now,
	}
}

// DefaultBrewInputs is a 20 L late-flower brew with aloe and the
// late-flower carbohydrate seed
func DefaultBrewInputs() models.BrewInputs {
	in := models.BrewInputs{
		Stage:          models.StageLateFlower,
		VolumeLiters:   20,
		AloePercent:    5,
		YuccaAvailable: false,
		AloeAvailable:  true,
		IncludeCarbs:   models.Bool(true),
	}
	seedCarbs(&in)
	return in
}

func seedCarbs(in *models.BrewInputs) {
	def, ok := brewing.StageCarbDefaults(in.Stage)
	if !ok {
		return
	}
	in.CarbsUnit = def.Unit
	in.CarbsDosePerL = models.Float64(def.Dose)
	in.CarbsSourceKey = def.SourceKey
	in.CarbsSource = def.SourceLabel
}

// migrateInputs fills the carbohydrate unit and source key of inputs
// saved before those fields existed, inferring both from the label
func migrateInputs(in *models.BrewInputs) {
	label := strings.ToLower(in.CarbsSource)
	if in.CarbsUnit == "" {
		in.CarbsUnit = models.CarbUnitMl
		if strings.Contains(label, "millet") || strings.Contains(label, "oat") {
			in.CarbsUnit = models.CarbUnitG
		}
	}
	if in.CarbsSourceKey == "" {
		switch {
		case strings.Contains(label, "millet"):
			in.CarbsSourceKey = models.CarbSourceMillet
		case strings.Contains(label, "oat"):
			in.CarbsSourceKey = models.CarbSourceOat
		case strings.Contains(label, "molasses"):
			in.CarbsSourceKey = models.CarbSourceMolasses
		default:
			in.CarbsSourceKey = models.CarbSourceOther
		}
	}
}

// carbBounds returns the dose range and fallback for a carbohydrate unit
func carbBounds(unit models.CarbUnit) (lo, hi, fallback float64) {
	if unit == models.CarbUnitG {
		return 2, 10, 5
	}
	return 1, 5, 2
}

func clampCarbDose(unit models.CarbUnit, dose *float64) *float64 {
	lo, hi, fallback := carbBounds(unit)
	v := fallback
	if dose != nil && !math.IsNaN(*dose) {
		v = *dose
	}
	return models.Float64(math.Min(hi, math.Max(lo, v)))
}

func validateInputs(in *models.BrewInputs) error {
	if !in.Stage.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidInputs, brewing.ErrUnknownStage)
	}
	if in.VolumeLiters <= 0 || math.IsNaN(in.VolumeLiters) || math.IsInf(in.VolumeLiters, 0) {
		return fmt.Errorf("%w: volume must be a positive number of liters", ErrInvalidInputs)
	}
	if in.AloePercent < 0 || in.AloePercent > 100 || math.IsNaN(in.AloePercent) {
		return fmt.Errorf("%w: aloe percent must be between 0 and 100", ErrInvalidInputs)
	}
	if in.CarbsUnit != "" && !in.CarbsUnit.Valid() {
		return fmt.Errorf("%w: carbohydrate unit must be ml or g", ErrInvalidInputs)
	}
	if in.CarbsSourceKey != "" && !in.CarbsSourceKey.Valid() {
		return fmt.Errorf("%w: unknown carbohydrate source %q", ErrInvalidInputs, in.CarbsSourceKey)
	}
	return nil
}

func (s *brewService) Inputs(ctx context.Context) (*models.BrewInputs, error) {
	doc, err := s.settings.Get(ctx, models.DocBrewInputs)
	if err != nil {
		return nil, fmt.Errorf("failed to load brew inputs: %w", err)
	}
	in := DefaultBrewInputs()
	if doc == nil {
		return &in, nil
	}

	// Saved fields override defaults; carbohydrate unit and key are
	// re-inferred when the saved document predates them.
	in.CarbsUnit = ""
	in.CarbsSourceKey = ""
	if err := json.Unmarshal(doc.Body, &in); err != nil {
		s.logger.Warn("Saved brew inputs unreadable, using defaults", zap.Error(err))
		in = DefaultBrewInputs()
		return &in, nil
	}
	migrateInputs(&in)
	return &in, nil
}

func (s *brewService) SaveInputs(ctx context.Context, in models.BrewInputs) (*models.BrewInputs, error) {
	if err := validateInputs(&in); err != nil {
		return nil, err
	}
	in.Region = strings.TrimSpace(in.Region)
	if in.CarbsUnit == "" && in.CarbsSourceKey == "" && in.CarbsSource == "" && in.CarbsDosePerL == nil {
		seedCarbs(&in)
	}
	migrateInputs(&in)
	if in.CarbsDosePerL != nil {
		in.CarbsDosePerL = clampCarbDose(in.CarbsUnit, in.CarbsDosePerL)
	}
	if err := s.save(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *brewService) ChangeStage(ctx context.Context, stage models.Stage) (*models.BrewInputs, error) {
	if !stage.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInputs, brewing.ErrUnknownStage)
	}
	in, err := s.Inputs(ctx)
	if err != nil {
		return nil, err
	}
	in.Stage = stage
	if !in.CarbTouched && in.CarbsIncluded() {
		seedCarbs(in)
	}
	if err := s.save(ctx, in); err != nil {
		return nil, err
	}
	s.logger.Debug("Stage changed", zap.String("stage", string(stage)), zap.Bool("carb_touched", in.CarbTouched))
	return in, nil
}

func (s *brewService) UpdateCarbs(ctx context.Context, patch models.CarbsPatch) (*models.BrewInputs, error) {
	if patch.Unit != nil && !patch.Unit.Valid() {
		return nil, fmt.Errorf("%w: carbohydrate unit must be ml or g", ErrInvalidInputs)
	}
	if patch.SourceKey != nil && !patch.SourceKey.Valid() {
		return nil, fmt.Errorf("%w: unknown carbohydrate source %q", ErrInvalidInputs, *patch.SourceKey)
	}

	in, err := s.Inputs(ctx)
	if err != nil {
		return nil, err
	}

	if patch.IncludeCarbs != nil {
		in.IncludeCarbs = models.Bool(*patch.IncludeCarbs)
		if *patch.IncludeCarbs {
			if !in.CarbTouched {
				seedCarbs(in)
			}
		} else {
			in.CarbTouched = true
		}
	}

	if patch.SourceKey != nil {
		in.CarbTouched = true
		key := *patch.SourceKey
		in.CarbsSourceKey = key
		switch key {
		case models.CarbSourceMillet:
			in.CarbsSource, in.CarbsUnit = "Pearl millet flour", models.CarbUnitG
		case models.CarbSourceOat:
			in.CarbsSource, in.CarbsUnit = "Oat flour", models.CarbUnitG
		case models.CarbSourceMolasses:
			in.CarbsSource, in.CarbsUnit = "Molasses", models.CarbUnitMl
		case models.CarbSourceOther:
			in.CarbsSource, in.CarbsUnit = "", models.CarbUnitG
		}
		in.CarbsDosePerL = clampCarbDose(in.CarbsUnit, in.CarbsDosePerL)
	}

	if patch.Unit != nil {
		in.CarbTouched = true
		in.CarbsUnit = *patch.Unit
		in.CarbsDosePerL = clampCarbDose(in.CarbsUnit, in.CarbsDosePerL)
	}

	if patch.DosePerL != nil {
		in.CarbTouched = true
		in.CarbsDosePerL = clampCarbDose(in.CarbsUnit, patch.DosePerL)
	}

	if patch.Source != nil {
		in.CarbTouched = true
		in.CarbsSource = strings.TrimSpace(*patch.Source)
	}

	if err := s.save(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *brewService) recipeContext(ctx context.Context, in *models.BrewInputs) (models.RecipeContext, error) {
	onHand, err := s.inventory.OnHand(ctx)
	if err != nil {
		return models.RecipeContext{}, err
	}
	return models.RecipeContext{
		Stage:          in.Stage,
		VolumeLiters:   in.VolumeLiters,
		AloePercent:    in.AloePercent,
		YuccaAvailable: in.YuccaAvailable,
		AloeAvailable:  in.AloeAvailable,
		OnHand:         onHand,
		IncludeCarbs:   models.Bool(in.CarbsIncluded()),
		CarbsPerL:      in.CarbsDosePerL,
		CarbsSource:    in.CarbsSource,
		CarbsUnit:      in.CarbsUnit,
		CarbsSourceKey: in.CarbsSourceKey,
	}, nil
}

func (s *brewService) Recipe(ctx context.Context) (*BrewRecipe, error) {
	in, err := s.Inputs(ctx)
	if err != nil {
		return nil, err
	}
	rc, err := s.recipeContext(ctx, in)
	if err != nil {
		return nil, err
	}
	items := brewing.BuildStageRecipe(rc)
	return &BrewRecipe{
		Inputs: *in,
		Items:  items,
		Text:   export.RecipeText(recipeHeader(in), items),
	}, nil
}

func recipeHeader(in *models.BrewInputs) export.RecipeHeader {
	return export.RecipeHeader{Stage: in.Stage, VolumeLiters: in.VolumeLiters, AloePercent: in.AloePercent}
}

func (s *brewService) Advice(ctx context.Context) (*models.BrewAdvice, error) {
	in, err := s.Inputs(ctx)
	if err != nil {
		return nil, err
	}
	onHand, err := s.inventory.OnHand(ctx)
	if err != nil {
		return nil, err
	}
	region := in.Region
	if strings.TrimSpace(region) == "" {
		region = s.defaultRegion
	}
	return &models.BrewAdvice{
		Surfactant:   brewing.SurfactantAdvice(in.YuccaAvailable, region, onHand),
		Biostimulant: brewing.BiostimulantAdvice(in.AloeAvailable),
		AloeWarning:  brewing.AloeWarningFor(in.AloePercent),
	}, nil
}

func (s *brewService) loadPresets(ctx context.Context) (*models.BrewPresets, error) {
	presets, err := repositories.GetDoc[models.BrewPresets](ctx, s.settings, models.DocBrewPresets)
	if err != nil {
		return nil, err
	}
	if presets == nil {
		presets = &models.BrewPresets{}
	}
	if presets.Items == nil {
		presets.Items = []models.BrewPreset{}
	}
	return presets, nil
}

func (s *brewService) ListPresets(ctx context.Context) ([]models.BrewPreset, error) {
	presets, err := s.loadPresets(ctx)
	if err != nil {
		return nil, err
	}
	return presets.Items, nil
}

func (s *brewService) SavePreset(ctx context.Context, name string) (*models.BrewPreset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPresetNameRequired
	}
	in, err := s.Inputs(ctx)
	if err != nil {
		return nil, err
	}
	presets, err := s.loadPresets(ctx)
	if err != nil {
		return nil, err
	}

	preset := models.BrewPreset{
		ID:        uuid.NewString(),
		Name:      name,
		Inputs:    *in,
		CreatedAt: s.now().UTC(),
	}
	presets.Items = append([]models.BrewPreset{preset}, presets.Items...)

	if err := repositories.UpsertDoc(ctx, s.settings, models.DocBrewPresets, presets); err != nil {
		return nil, fmt.Errorf("failed to save preset: %w", err)
	}
	s.logger.Info("Preset saved", zap.String("id", preset.ID), zap.String("name", name))
	return &preset, nil
}

// ApplyPreset restores the preset inputs. The carbohydrate settings it
// carries are marked as manual so later stage changes keep them.
func (s *brewService) ApplyPreset(ctx context.Context, id string) (*models.BrewInputs, error) {
	presets, err := s.loadPresets(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range presets.Items {
		if p.ID != id {
			continue
		}
		in := p.Inputs
		migrateInputs(&in)
		in.CarbTouched = true
		if err := s.save(ctx, &in); err != nil {
			return nil, err
		}
		return &in, nil
	}
	return nil, ErrPresetNotFound
}

func (s *brewService) DeletePreset(ctx context.Context, id string) error {
	presets, err := s.loadPresets(ctx)
	if err != nil {
		return err
	}
	kept := presets.Items[:0]
	found := false
	for _, p := range presets.Items {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return ErrPresetNotFound
	}
	presets.Items = kept
	if err := repositories.UpsertDoc(ctx, s.settings, models.DocBrewPresets, presets); err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	return nil
}

func (s *brewService) StartTimer(ctx context.Context) (*models.TimerStatus, error) {
	started := s.now().UTC()
	if err := repositories.UpsertDoc(ctx, s.settings, models.DocBrewTimer, models.BrewTimer{StartedAt: &started}); err != nil {
		return nil, fmt.Errorf("failed to start timer: %w", err)
	}
	s.logger.Info("Brew timer started", zap.Time("started_at", started))
	status := timerStatus(&started, s.now())
	return &status, nil
}

func (s *brewService) ResetTimer(ctx context.Context) (*models.TimerStatus, error) {
	if err := repositories.UpsertDoc(ctx, s.settings, models.DocBrewTimer, models.BrewTimer{}); err != nil {
		return nil, fmt.Errorf("failed to reset timer: %w", err)
	}
	status := timerStatus(nil, s.now())
	return &status, nil
}

func (s *brewService) Timer(ctx context.Context) (*models.TimerStatus, error) {
	timer, err := repositories.GetDoc[models.BrewTimer](ctx, s.settings, models.DocBrewTimer)
	if err != nil {
		return nil, err
	}
	var started *time.Time
	if timer != nil {
		started = timer.StartedAt
	}
	status := timerStatus(started, s.now())
	return &status, nil
}

func timerStatus(started *time.Time, now time.Time) models.TimerStatus {
	var elapsed time.Duration
	if started != nil {
		elapsed = max(0, now.Sub(*started))
	}
	remaining := max(0, BrewDuration-elapsed)
	return models.TimerStatus{
		Running:          started != nil,
		StartedAt:        started,
		Elapsed:          formatHMS(elapsed),
		Remaining:        formatHMS(remaining),
		ElapsedSeconds:   int64(elapsed / time.Second),
		RemainingSeconds: int64(remaining / time.Second),
	}
}

// formatHMS renders d as HH:MM:SS, truncating sub-second precision
func formatHMS(d time.Duration) string {
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func (s *brewService) SaveDraftLog(ctx context.Context) (*models.LogEntry, error) {
	recipe, err := s.Recipe(ctx)
	if err != nil {
		return nil, err
	}
	in := recipe.Inputs

	note := fmt.Sprintf("Brew %s, %s L", in.Stage, export.Number(in.VolumeLiters))
	if in.CarbsIncluded() {
		unit := in.CarbsUnit
		if unit == "" {
			unit = models.CarbUnitMl
		}
		label := in.CarbsSource
		if label == "" {
			label = "Molasses"
		}
		_, _, fallback := carbBounds(unit)
		dose := fallback
		if in.CarbsDosePerL != nil {
			dose = *in.CarbsDosePerL
		}
		note += fmt.Sprintf(", carbs %s @ %s %s/L", label, export.Number(dose), unit)
	}

	draft := models.LogEntry{
		ID:        models.DocDraftLog,
		Date:      s.now().Format(DateLayout),
		BatchNote: note,
		Outcomes:  strings.Join(export.RecipeLines(recipe.Items), "\n"),
	}
	if err := s.logs.SaveDraft(ctx, draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *brewService) ExportRecipe(ctx context.Context, format string) ([]byte, string, error) {
	recipe, err := s.Recipe(ctx)
	if err != nil {
		return nil, "", err
	}
	switch strings.ToLower(format) {
	case "", FormatText:
		return []byte(recipe.Text), export.ContentTypeText, nil
	case FormatCSV:
		out, err := export.RecipeCSV(recipe.Items)
		if err != nil {
			return nil, "", err
		}
		return out, export.ContentTypeCSV, nil
	}
	return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func (s *brewService) RecipeQRCode(ctx context.Context, size int) ([]byte, error) {
	recipe, err := s.Recipe(ctx)
	if err != nil {
		return nil, err
	}
	return export.QRCode(recipe.Text, size)
}

func (s *brewService) save(ctx context.Context, in *models.BrewInputs) error {
	if err := repositories.UpsertDoc(ctx, s.settings, models.DocBrewInputs, in); err != nil {
		return fmt.Errorf("failed to save brew inputs: %w", err)
	}
	return nil
}
