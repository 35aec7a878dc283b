package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/Conceptual-Machines/magda-trapbeat/internal/config"
	"github.com/Conceptual-Machines/magda-trapbeat/internal/logger"
	"github.com/Conceptual-Machines/magda-trapbeat/internal/metrics"
	"github.com/Conceptual-Machines/magda-trapbeat/internal/presets"
	"github.com/Conceptual-Machines/magda-trapbeat/internal/trapbeat"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBPM       = 140.0
	defaultCompases  = 4
	defaultTonicMidi = 54 // F#3
	defaultMode      = trapbeat.ModeMinor
)

var (
	// ErrInvalidRequest wraps every validation failure of a generate request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnknownPreset is returned when a request names a preset that is not in the catalog
	ErrUnknownPreset = errors.New("unknown preset")
)

// BeatRequest is the public generate request. Unset fields fall back to the preset,
// then to service defaults. Shape rules live in the binding tags; limits that depend on
// config are checked in Resolve.
type BeatRequest struct {
	Preset          string   `json:"preset"`
	BPM             *float64 `json:"bpm" binding:"omitempty,gt=0,lte=300"`
	Compases        *int     `json:"compases" binding:"omitempty,min=1"`
	TonicMidi       *int     `json:"tonic_midi" binding:"omitempty,min=0,max=127"`
	Tonic           string   `json:"tonic" binding:"excluded_with=TonicMidi"`
	Mode            string   `json:"mode" binding:"omitempty,oneof=minor harmonic phrygianDom"`
	Swing           *float64 `json:"swing"`
	Seed            *uint32  `json:"seed"`
	MelodyRange     []int    `json:"melody_range" binding:"omitempty,len=2,dive,min=0,max=127"`
	DarknessCeiling *float64 `json:"darkness_ceiling" binding:"omitempty,gte=0"`
	Variations      int      `json:"variations" binding:"min=0"`
}

// PatternStats summarises one generated pattern
type PatternStats struct {
	TonicName     string  `json:"tonic_name"`
	MelodyNotes   int     `json:"melody_notes"`
	HatNotes      int     `json:"hat_notes"`
	BassNotes     int     `json:"bass_notes"`
	Glides        int     `json:"glides"`
	LengthBeats   float64 `json:"length_beats"`
	GenerationMs  int64   `json:"generation_ms"`
	DarknessDelta float64 `json:"darkness_delta"`
}

// GeneratedPattern is one variation of a generate request
type GeneratedPattern struct {
	ID      string                 `json:"id"`
	Pattern trapbeat.OutputPattern `json:"pattern"`
	Stats   PatternStats           `json:"stats"`
}

// BeatResult holds every variation of a request in variation order
type BeatResult struct {
	Preset   string             `json:"preset,omitempty"`
	Patterns []GeneratedPattern `json:"patterns"`
}

// ModeInfo describes a supported mode
type ModeInfo struct {
	Name         trapbeat.Mode `json:"name"`
	Mask         []int         `json:"mask"`
	Intervals    []int         `json:"intervals"`
	DefaultSwing float64       `json:"default_swing"`
}

// BeatGenerator produces one pattern per config
type BeatGenerator interface {
	Generate(cfg trapbeat.Config) trapbeat.OutputPattern
}

// GenerationRecorder receives one record per generated pattern
type GenerationRecorder interface {
	RecordGeneration(ctx context.Context, gen metrics.Generation)
}

type BeatService struct {
	cfg       *config.Config
	generator BeatGenerator
	catalog   *presets.Catalog
	recorder  GenerationRecorder
}

func NewBeatService(cfg *config.Config, generator BeatGenerator, catalog *presets.Catalog, recorder GenerationRecorder) *BeatService {
	return &BeatService{
		cfg:       cfg,
		generator: generator,
		catalog:   catalog,
		recorder:  recorder,
	}
}

// Generate resolves the request and generates every variation concurrently.
// Variation i uses seed+i when a seed is given.
func (s *BeatService) Generate(ctx context.Context, req BeatRequest) (*BeatResult, error) {
	base, variations, err := s.Resolve(req)
	if err != nil {
		return nil, err
	}

	patterns := make([]GeneratedPattern, variations)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < variations; i++ {
		cfg := variationConfig(base, i)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			patterns[i] = s.generateOne(gctx, cfg, req.Preset, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generation cancelled: %w", err)
	}

	return &BeatResult{Preset: req.Preset, Patterns: patterns}, nil
}

func (s *BeatService) generateOne(ctx context.Context, cfg trapbeat.Config, preset string, variation int) GeneratedPattern {
	start := time.Now()
	out := s.generator.Generate(cfg)
	duration := time.Since(start)

	id := uuid.New().String()
	stats := PatternStats{
		TonicName:     trapbeat.NoteName(out.Metadata.TonicMidi),
		MelodyNotes:   len(out.Melody.Notes),
		HatNotes:      len(out.Hats.Notes),
		BassNotes:     len(out.Bass808.Notes),
		Glides:        len(out.Bass808.Glides),
		LengthBeats:   float64(out.Metadata.Compases * 4),
		GenerationMs:  duration.Milliseconds(),
		DarknessDelta: out.Metadata.DarknessBeforeCorrection - out.Metadata.Darkness,
	}

	logger.LogBeatGeneration(ctx, string(out.Metadata.Mode), duration, out.Metadata.Darkness, logger.Fields{
		"pattern_id": id,
		"preset":     preset,
		"variation":  variation,
		"compases":   out.Metadata.Compases,
		"corrected":  out.Metadata.Corrected,
	})

	if s.recorder != nil {
		s.recorder.RecordGeneration(ctx, metrics.Generation{
			Mode:                     string(out.Metadata.Mode),
			Preset:                   preset,
			Duration:                 duration,
			Darkness:                 out.Metadata.Darkness,
			DarknessBeforeCorrection: out.Metadata.DarknessBeforeCorrection,
			Corrected:                out.Metadata.Corrected,
			Notes:                    stats.MelodyNotes + stats.HatNotes + stats.BassNotes,
			Glides:                   stats.Glides,
		})
	}

	return GeneratedPattern{ID: id, Pattern: out, Stats: stats}
}

func variationConfig(base trapbeat.Config, i int) trapbeat.Config {
	cfg := base
	if base.RandomSeed != nil {
		seed := *base.RandomSeed + uint32(i)
		cfg.RandomSeed = &seed
	}
	return cfg
}

// Resolve merges the request over its preset and the service defaults and validates the result.
// The binding tags are re-checked so callers outside the HTTP layer get the same rules.
func (s *BeatService) Resolve(req BeatRequest) (trapbeat.Config, int, error) {
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return trapbeat.Config{}, 0, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	var preset presets.Preset
	if req.Preset != "" {
		p, ok := s.catalog.Get(req.Preset)
		if !ok {
			return trapbeat.Config{}, 0, fmt.Errorf("%w: %q", ErrUnknownPreset, req.Preset)
		}
		preset = p
	}

	bpm := defaultBPM
	if preset.BPM > 0 {
		bpm = preset.BPM
	}
	if req.BPM != nil {
		bpm = *req.BPM
	}

	compases := defaultCompases
	if preset.Compases > 0 {
		compases = preset.Compases
	}
	if req.Compases != nil {
		compases = *req.Compases
	}
	if compases > s.cfg.MaxCompases {
		return invalid("compases must be between 1 and %d", s.cfg.MaxCompases)
	}

	tonic, err := resolveTonic(req, preset)
	if err != nil {
		return trapbeat.Config{}, 0, err
	}

	mode := defaultMode
	modeName := req.Mode
	if modeName == "" {
		modeName = preset.Mode
	}
	if modeName != "" {
		m, err := trapbeat.ParseMode(modeName)
		if err != nil {
			return trapbeat.Config{}, 0, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		mode = m
	}

	swing := preset.Swing
	if req.Swing != nil {
		swing = req.Swing
	}

	rangeValues := preset.MelodyRange
	if req.MelodyRange != nil {
		rangeValues = req.MelodyRange
	}
	var melodyRange *[2]int
	if len(rangeValues) == 2 {
		melodyRange = &[2]int{rangeValues[0], rangeValues[1]}
	}

	ceiling := s.cfg.DefaultDarknessCeiling
	if preset.DarknessCeiling != nil {
		ceiling = *preset.DarknessCeiling
	}
	if req.DarknessCeiling != nil {
		ceiling = *req.DarknessCeiling
	}

	variations := req.Variations
	if variations == 0 {
		variations = 1
	}
	if variations > s.cfg.MaxVariations {
		return invalid("variations must be between 1 and %d", s.cfg.MaxVariations)
	}

	return trapbeat.Config{
		BPM:             bpm,
		Compases:        compases,
		TonicMidi:       tonic,
		Mode:            mode,
		Swing:           swing,
		RandomSeed:      req.Seed,
		MelodyRange:     melodyRange,
		DarknessCeiling: &ceiling,
	}, variations, nil
}

func resolveTonic(req BeatRequest, preset presets.Preset) (int, error) {
	switch {
	case req.TonicMidi != nil:
		return *req.TonicMidi, nil
	case req.Tonic != "":
		midi, err := trapbeat.ParseNoteName(req.Tonic)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		return midi, nil
	}
	if midi, ok := preset.ResolvedTonic(); ok {
		return midi, nil
	}
	return defaultTonicMidi, nil
}

func invalid(format string, args ...any) (trapbeat.Config, int, error) {
	return trapbeat.Config{}, 0, fmt.Errorf("%w: "+format, append([]any{ErrInvalidRequest}, args...)...)
}

// Modes lists the supported modes in a stable order
func (s *BeatService) Modes() []ModeInfo {
	modes := trapbeat.Modes()
	scale := trapbeat.NewScaleService()
	out := make([]ModeInfo, 0, len(modes))
	for _, mode := range modes {
		out = append(out, ModeInfo{
			Name:         mode,
			Mask:         scale.Mask(0, mode).Ints(),
			Intervals:    mode.Intervals(),
			DefaultSwing: trapbeat.DefaultSwing(mode),
		})
	}
	return out
}

// Presets lists the preset catalog sorted by name
func (s *BeatService) Presets() []presets.Preset {
	return s.catalog.List()
}

// PresetCount returns the number of presets in the catalog
func (s *BeatService) PresetCount() int {
	return s.catalog.Len()
}

// SelfCheck generates a seeded one-bar pattern and verifies every track came back.
func (s *BeatService) SelfCheck() error {
	seed := uint32(1)
	out := s.generator.Generate(trapbeat.Config{
		BPM:        defaultBPM,
		Compases:   1,
		TonicMidi:  defaultTonicMidi,
		Mode:       defaultMode,
		RandomSeed: &seed,
	})
	switch {
	case len(out.Chords) != 1:
		return fmt.Errorf("self-check: expected 1 chord, got %d", len(out.Chords))
	case len(out.Melody.Notes) == 0:
		return errors.New("self-check: empty melody")
	case len(out.Hats.Notes) == 0:
		return errors.New("self-check: empty hats")
	case len(out.Bass808.Notes) == 0:
		return errors.New("self-check: empty bass")
	}
	return nil
}
