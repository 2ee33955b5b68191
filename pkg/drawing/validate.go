package drawing

import (
	"fmt"
	"math"

	"github.com/plantsight/drawcheck/pkg/errors"
)

// Validate checks the document for malformed records. It is the only
// place the engine fails fast: every finding beyond record shape is a
// report entry, not an error. The first offending field is reported as
// a ValidationError with an index path such as "tags[2].confidence".
func (d *Document) Validate() error {
	for i, e := range d.Entities {
		if err := e.validate(fmt.Sprintf("entities[%d]", i)); err != nil {
			return err
		}
	}
	for i, t := range d.Tags {
		if err := t.validate(fmt.Sprintf("tags[%d]", i)); err != nil {
			return err
		}
	}
	for i, s := range d.Symbols {
		if err := s.validate(fmt.Sprintf("symbols[%d]", i)); err != nil {
			return err
		}
	}
	for i, in := range d.Instruments {
		if err := in.validate(fmt.Sprintf("instruments[%d]", i)); err != nil {
			return err
		}
	}
	for i, l := range d.Lines {
		if err := l.validate(fmt.Sprintf("lines[%d]", i)); err != nil {
			return err
		}
	}
	for i, f := range d.Fragments {
		if err := f.validate(fmt.Sprintf("fragments[%d]", i)); err != nil {
			return err
		}
	}
	return nil
}

func (e Entity) validate(path string) error {
	if e.ID == "" {
		return errors.NewValidationError(path+".id", e.ID, "entity id is required")
	}
	switch e.Kind {
	case EntityKindBlock:
		if e.Name == "" {
			return errors.NewValidationError(path+".name", e.Name, "block entity requires a name")
		}
	case EntityKindText, EntityKindAnnotation:
		if e.Text == "" {
			return errors.NewValidationError(path+".text", e.Text, "text entity requires text content")
		}
	default:
		return errors.NewValidationError(path+".kind", string(e.Kind), "kind must be block, text or annotation")
	}
	return validateGeometry(path+".geometry", e.Geometry, false)
}

func (t Tag) validate(path string) error {
	if t.RawText == "" {
		return errors.NewValidationError(path+".rawText", t.RawText, "tag text is required")
	}
	if err := validateConfidence(path+".confidence", t.Confidence); err != nil {
		return err
	}
	switch t.Source {
	case SourceOCR, SourceEmbeddedText, SourceAttribute, "":
	default:
		return errors.NewValidationError(path+".source", string(t.Source), "source must be ocr, embedded_text or attribute")
	}
	return validateGeometry(path+".geometry", t.Geometry, true)
}

func (s Symbol) validate(path string) error {
	if s.ID == "" {
		return errors.NewValidationError(path+".id", s.ID, "symbol id is required")
	}
	if err := validateConfidence(path+".confidence", s.Confidence); err != nil {
		return err
	}
	if err := validateGeometry(path+".geometry", s.Geometry, false); err != nil {
		return err
	}
	for i, et := range s.Template.ExpectedTags {
		etPath := fmt.Sprintf("%s.template.expectedTags[%d]", path, i)
		if et.Pattern == "" {
			return errors.NewValidationError(etPath+".pattern", et.Pattern, "expected-tag pattern is required")
		}
		if et.Proximity <= 0 {
			return errors.NewValidationError(etPath+".proximity", et.Proximity, "proximity must be positive")
		}
	}
	return nil
}

func (in Instrument) validate(path string) error {
	if in.Tag == "" {
		return errors.NewValidationError(path+".tag", in.Tag, "instrument tag is required")
	}
	for i, c := range in.Required {
		switch c {
		case ConnectionProcess, ConnectionSignal, ConnectionPower:
		default:
			return errors.NewValidationError(
				fmt.Sprintf("%s.required[%d]", path, i), string(c),
				"connection class must be process, signal or power")
		}
	}
	return validateGeometry(path+".geometry", in.Geometry, false)
}

func (l Line) validate(path string) error {
	switch l.Class {
	case ConnectionProcess, ConnectionSignal, ConnectionPower:
	default:
		return errors.NewValidationError(path+".class", string(l.Class), "connection class must be process, signal or power")
	}
	if len(l.Endpoints) == 0 {
		return errors.NewValidationError(path+".endpoints", nil, "line requires at least one endpoint")
	}
	for i, p := range l.Endpoints {
		if !finite(p.X) || !finite(p.Y) {
			return errors.NewValidationError(
				fmt.Sprintf("%s.endpoints[%d]", path, i), p,
				"endpoint coordinates must be finite")
		}
	}
	return nil
}

func (f Fragment) validate(path string) error {
	if f.Text == "" {
		return errors.NewValidationError(path+".text", f.Text, "fragment text is required")
	}
	if err := validateConfidence(path+".confidence", f.Confidence); err != nil {
		return err
	}
	return validateGeometry(path+".geometry", f.Geometry, true)
}

func validateGeometry(path string, g Geometry, requireExtent bool) error {
	if !finite(g.X) {
		return errors.NewValidationError(path+".x", g.X, "coordinate must be finite")
	}
	if !finite(g.Y) {
		return errors.NewValidationError(path+".y", g.Y, "coordinate must be finite")
	}
	if g.Width < 0 || !finite(g.Width) {
		return errors.NewValidationError(path+".width", g.Width, "width must be a non-negative finite number")
	}
	if g.Height < 0 || !finite(g.Height) {
		return errors.NewValidationError(path+".height", g.Height, "height must be a non-negative finite number")
	}
	if requireExtent && (g.Width == 0 || g.Height == 0) {
		return errors.NewValidationError(path+".width", g.Width, "width and height are required")
	}
	return nil
}

func validateConfidence(path string, c float64) error {
	if c < 0 || c > 1 || !finite(c) {
		return errors.NewValidationError(path, c, "confidence must be within [0,1]")
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
