package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/corpusdedup/internal/config"
	"github.com/nao1215/corpusdedup/internal/model"
)

// ErrUnknownLanguage is returned for a language code lingua does not know.
var ErrUnknownLanguage = errors.New("unknown ISO 639-1 language code")

// ErrUnknownForm is returned for an unsupported Unicode normalization form.
var ErrUnknownForm = errors.New("unknown unicode normalization form")

// ErrUnknownExtractMode is returned for an unsupported HTML extraction mode.
var ErrUnknownExtractMode = errors.New("unknown html extraction mode")

// HTMLExtractStep replaces the markup of HTML inputs with their text.
// Documents whose path does not have an HTML extension pass unchanged.
type HTMLExtractStep struct {
	// readability keeps only the main article instead of all visible text.
	readability bool

	logger *slog.Logger
}

// HTMLExtractStepOption configures an HTMLExtractStep.
type HTMLExtractStepOption func(*HTMLExtractStep)

// WithReadability switches to main-content extraction.
func WithReadability(enabled bool) HTMLExtractStepOption {
	return func(s *HTMLExtractStep) {
		s.readability = enabled
	}
}

// WithHTMLLogger sets a custom logger for the step.
func WithHTMLLogger(logger *slog.Logger) HTMLExtractStepOption {
	return func(s *HTMLExtractStep) {
		s.logger = logger
	}
}

// NewHTMLExtractStep creates a new HTML extraction step.
func NewHTMLExtractStep(opts ...HTMLExtractStepOption) *HTMLExtractStep {
	s := &HTMLExtractStep{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *HTMLExtractStep) Name() string {
	return "html_extract"
}

// Do executes the HTML extraction step.
func (s *HTMLExtractStep) Do(_ context.Context, doc *model.Document) error {
	if !isHTMLPath(doc.Path) {
		return nil
	}

	var (
		text string
		err  error
	)
	if s.readability {
		text, err = ExtractArticle(doc.Text, doc.Path)
	} else {
		text, err = ExtractText(strings.NewReader(doc.Text))
	}
	if err != nil {
		return err
	}

	s.logger.Debug("extracted html",
		"id", doc.ID,
		"html", doc.Text,
		"text", text,
	)
	doc.Text = text
	return nil
}

// NormalizeStep applies a Unicode normalization form to the text.
type NormalizeStep struct {
	form norm.Form
	name string
}

// NewNormalizeStep creates a normalization step for NFC, NFD, NFKC or NFKD.
func NewNormalizeStep(form string) (*NormalizeStep, error) {
	name := strings.ToUpper(form)
	var f norm.Form
	switch name {
	case "NFC":
		f = norm.NFC
	case "NFD":
		f = norm.NFD
	case "NFKC":
		f = norm.NFKC
	case "NFKD":
		f = norm.NFKD
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownForm, form)
	}
	return &NormalizeStep{form: f, name: name}, nil
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Form returns the normalization form name.
func (s *NormalizeStep) Form() string {
	return s.name
}

// Do executes the normalization step.
func (s *NormalizeStep) Do(_ context.Context, doc *model.Document) error {
	doc.Text = s.form.String(doc.Text)
	return nil
}

// defaultMinLetters is the fewest letters a text needs to be classified.
const defaultMinLetters = 20

// detectionSampleRunes bounds how much text is handed to the detector.
const detectionSampleRunes = 2000

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build()
	})
	return detector
}

// LanguageFilterStep drops documents written in a language outside the
// allowed set. Texts too short to classify, or that the detector cannot
// decide on, are kept.
type LanguageFilterStep struct {
	allowed    map[lingua.IsoCode639_1]bool
	minLetters int
	logger     *slog.Logger
}

// LanguageFilterStepOption configures a LanguageFilterStep.
type LanguageFilterStepOption func(*LanguageFilterStep)

// WithMinLetters sets the fewest letters needed before detection runs.
func WithMinLetters(n int) LanguageFilterStepOption {
	return func(s *LanguageFilterStep) {
		if n > 0 {
			s.minLetters = n
		}
	}
}

// WithLanguageLogger sets a custom logger for the step.
func WithLanguageLogger(logger *slog.Logger) LanguageFilterStepOption {
	return func(s *LanguageFilterStep) {
		s.logger = logger
	}
}

// NewLanguageFilterStep creates a filter keeping the given ISO 639-1 codes.
func NewLanguageFilterStep(codes []string, opts ...LanguageFilterStepOption) (*LanguageFilterStep, error) {
	s := &LanguageFilterStep{
		allowed:    make(map[lingua.IsoCode639_1]bool, len(codes)),
		minLetters: defaultMinLetters,
		logger:     slog.Default(),
	}
	for _, code := range codes {
		iso := lingua.GetIsoCode639_1FromValue(strings.ToUpper(strings.TrimSpace(code)))
		if iso == lingua.UnknownIsoCode639_1 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
		}
		s.allowed[iso] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns the step name.
func (s *LanguageFilterStep) Name() string {
	return "language_filter"
}

// Do executes the language filter step.
func (s *LanguageFilterStep) Do(_ context.Context, doc *model.Document) error {
	sample, letters := languageSample(doc.Text)
	if letters < s.minLetters {
		return nil
	}

	language, ok := getDetector().DetectLanguageOf(sample)
	if !ok {
		return nil
	}

	iso := language.IsoCode639_1()
	if s.allowed[iso] {
		return nil
	}
	return fmt.Errorf("%w: detected language %s", ErrDrop, strings.ToLower(iso.String()))
}

// languageSample returns the leading part of text and its letter count.
func languageSample(text string) (string, int) {
	letters, runes, end := 0, 0, len(text)
	for i, r := range text {
		if runes == detectionSampleRunes {
			end = i
			break
		}
		runes++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return text[:end], letters
}

// TransformStep adapts an external text -> text collaborator, such as a
// PII masker, into a Step.
type TransformStep struct {
	name string
	fn   func(string) (string, error)
}

// NewTransformStep creates a step that replaces the text with fn(text).
func NewTransformStep(name string, fn func(string) (string, error)) *TransformStep {
	return &TransformStep{name: name, fn: fn}
}

// Name returns the step name.
func (s *TransformStep) Name() string {
	return s.name
}

// Do executes the transform.
func (s *TransformStep) Do(_ context.Context, doc *model.Document) error {
	text, err := s.fn(doc.Text)
	if err != nil {
		return err
	}
	doc.Text = text
	return nil
}

// FilterStep adapts an external text -> bool collaborator, such as a
// quality or toxicity classifier, into a Step. Documents for which keep
// returns false are dropped.
type FilterStep struct {
	name string
	keep func(string) bool
}

// NewFilterStep creates a filter step.
func NewFilterStep(name string, keep func(string) bool) *FilterStep {
	return &FilterStep{name: name, keep: keep}
}

// Name returns the step name.
func (s *FilterStep) Name() string {
	return s.name
}

// Do executes the filter.
func (s *FilterStep) Do(_ context.Context, doc *model.Document) error {
	if s.keep(doc.Text) {
		return nil
	}
	return fmt.Errorf("%w by %s", ErrDrop, s.name)
}

// DefaultPipeline creates the preprocessing pipeline configured by cfg:
// HTML extraction, then normalization, then language filtering. Disabled
// stages are left out, so the pipeline may be empty. Steps are stateless
// and the returned pipeline is safe to share between goroutines.
func DefaultPipeline(cfg *config.Config, pipelineOpts ...Option) (*Pipeline, error) {
	p := New(pipelineOpts...)

	switch cfg.ExtractHTML {
	case "", config.ExtractOff:
	case config.ExtractFull:
		p.AddStep(NewHTMLExtractStep(WithHTMLLogger(p.logger)))
	case config.ExtractReadability:
		p.AddStep(NewHTMLExtractStep(WithReadability(true), WithHTMLLogger(p.logger)))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtractMode, cfg.ExtractHTML)
	}

	if cfg.UnicodeForm != "" {
		step, err := NewNormalizeStep(cfg.UnicodeForm)
		if err != nil {
			return nil, err
		}
		p.AddStep(step)
	}

	if len(cfg.Languages) > 0 {
		step, err := NewLanguageFilterStep(cfg.Languages, WithLanguageLogger(p.logger))
		if err != nil {
			return nil, err
		}
		p.AddStep(step)
	}

	return p, nil
}
