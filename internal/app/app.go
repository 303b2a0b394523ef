package app

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/config/loader"
	"github.com/dshills/inkwell/internal/engine"
	"github.com/dshills/inkwell/internal/engine/content"
	"github.com/dshills/inkwell/internal/engine/style"
	"github.com/dshills/inkwell/internal/event/events"
)

// Application replays scripts against fresh surfaces built from its
// configuration.
type Application struct {
	cfg        *config.Config
	configPath string
	logger     *zap.Logger
	fs         loader.FileSystem
	extra      []engine.Option
}

// Option configures an Application.
type Option func(*Application)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *Application) {
		if cfg != nil {
			a.cfg = cfg
		}
	}
}

// WithConfigPath sets the config file that watch mode reloads on change.
func WithConfigPath(path string) Option {
	return func(a *Application) {
		a.configPath = path
	}
}

// WithLogger sets the logger passed to every surface.
func WithLogger(l *zap.Logger) Option {
	return func(a *Application) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithFS sets the file system scripts are read from.
func WithFS(fsys loader.FileSystem) Option {
	return func(a *Application) {
		if fsys != nil {
			a.fs = fsys
		}
	}
}

// WithSurfaceOptions appends engine options applied after the config.
func WithSurfaceOptions(opts ...engine.Option) Option {
	return func(a *Application) {
		a.extra = append(a.extra, opts...)
	}
}

// New creates an Application.
func New(opts ...Option) *Application {
	a := &Application{
		cfg:    config.Default(),
		logger: zap.NewNop(),
		fs:     loader.DefaultFS(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the active configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Report is the outcome of a replay.
type Report struct {
	Session  string           `json:"session"`
	Document content.Document `json:"document"`
	Text     string           `json:"text"`
	Style    style.Map        `json:"style,omitempty"`
	Steps    []StepResult     `json:"steps"`

	// Event counts observed on the surface's bus.
	Changes      int64 `json:"changes"`
	StyleChanges int64 `json:"style_changes"`
	Layouts      int64 `json:"layouts"`

	// Expected is the script's expected text; Matched compares it to Text.
	Expected *string `json:"expected,omitempty"`
	Matched  bool    `json:"matched"`
}

// Failed reports whether a step failed or the expectation did not hold.
func (r *Report) Failed() bool {
	if r.Expected != nil && !r.Matched {
		return true
	}
	for _, s := range r.Steps {
		if s.Error != "" {
			return true
		}
	}
	return false
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index     int    `json:"index"`
	Kind      string `json:"kind"`
	Input     string `json:"input,omitempty"`
	Prevented bool   `json:"prevented"`
	Error     string `json:"error,omitempty"`
}

// Replay runs s against a new surface. Command failures are recorded in
// the report and leave the document as it was; replay continues with the
// next step.
func (a *Application) Replay(s *Script) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	opts := a.cfg.SurfaceOptions()
	opts = append(opts, engine.WithLogger(a.logger))
	if s.Document != nil {
		opts = append(opts, engine.WithDocument(*s.Document))
	}
	opts = append(opts, a.extra...)

	surface, err := engine.New(opts...)
	if err != nil {
		return nil, err
	}

	var changes, styleChanges, layouts atomic.Int64
	if _, err := surface.OnChange(func(events.Change) { changes.Add(1) }); err != nil {
		surface.Close()
		return nil, err
	}
	if _, err := surface.OnStyleChange(func(events.StyleChange) { styleChanges.Add(1) }); err != nil {
		surface.Close()
		return nil, err
	}
	if _, err := surface.OnNeedsLayout(func(events.NeedsLayout) { layouts.Add(1) }); err != nil {
		surface.Close()
		return nil, err
	}

	report := &Report{Session: surface.ID(), Expected: s.Expect}
	for i, st := range s.Steps {
		res, err := a.step(surface, i, st)
		if errors.Is(err, engine.ErrClosed) {
			return nil, err
		}
		if err != nil {
			res.Error = err.Error()
			a.logger.Warn("step failed",
				zap.Int("step", i),
				zap.String("kind", res.Kind),
				zap.Error(err),
			)
		}
		report.Steps = append(report.Steps, res)
	}

	report.Document = surface.Document()
	report.Text = surface.Text()
	report.Style = surface.CurrentStyle().Map()
	if len(report.Style) == 0 {
		report.Style = nil
	}

	// Close delivers a pending debounced change.
	if err := surface.Close(); err != nil {
		return nil, err
	}
	report.Changes = changes.Load()
	report.StyleChanges = styleChanges.Load()
	report.Layouts = layouts.Load()
	if s.Expect != nil {
		report.Matched = report.Text == *s.Expect
	}
	return report, nil
}

func (a *Application) step(surface *engine.Surface, i int, st Step) (StepResult, error) {
	kind, err := st.Kind()
	res := StepResult{Index: i, Kind: kind}
	if err != nil {
		return res, err
	}

	switch kind {
	case KindInput:
		ev := st.InputEvent()
		res.Input = ev.Type.String()
		r, err := surface.HandleInput(ev)
		res.Prevented = r.Prevented
		return res, err
	case KindSelect:
		return res, surface.SelectRange(st.Select[0], st.Select[1])
	case KindSelectAll:
		return res, surface.SelectAll()
	case KindStyles:
		return res, surface.ApplyStyles(st.Styles)
	case KindFocus:
		return res, surface.Focus()
	case KindBlur:
		return res, surface.Blur()
	}
	return res, ErrInvalidStep
}

// ReplayFile loads the script at path and replays it.
func (a *Application) ReplayFile(path string) (*Report, error) {
	s, err := LoadScript(a.fs, path)
	if err != nil {
		return nil, err
	}
	return a.Replay(s)
}
