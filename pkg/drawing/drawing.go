// Package drawing defines the records the reconciliation engine
// consumes: authoritative entities taken from the source drawing,
// externally extracted tags and symbol detections, topology records,
// and OCR text fragments. All records are immutable per analysis run.
package drawing

// EntityKind discriminates the authoritative entity variants.
type EntityKind string

const (
	// EntityKindBlock is a vector block reference (an inserted symbol).
	EntityKindBlock EntityKind = "block"
	// EntityKindText is a free-standing text element.
	EntityKindText EntityKind = "text"
	// EntityKindAnnotation is a leader or dimension annotation.
	EntityKindAnnotation EntityKind = "annotation"
)

// Entity is a vector or text element taken directly from the source
// drawing. It is the ground truth side of every comparison.
type Entity struct {
	ID       string     `json:"id" yaml:"id"`
	Kind     EntityKind `json:"kind" yaml:"kind"`
	Name     string     `json:"name,omitempty" yaml:"name,omitempty"` // block name, blocks only
	Text     string     `json:"text,omitempty" yaml:"text,omitempty"` // text/annotation content
	Layer    string     `json:"layer" yaml:"layer"`
	Geometry Geometry   `json:"geometry" yaml:"geometry"`
}

// Label returns the textual identity of the entity: the block name for
// blocks, the content for text and annotations.
func (e Entity) Label() string {
	switch e.Kind {
	case EntityKindBlock:
		return e.Name
	case EntityKindText, EntityKindAnnotation:
		return e.Text
	default:
		return ""
	}
}

// TagSource identifies which extraction path produced a tag.
type TagSource string

const (
	// SourceOCR marks tags read from raster text by OCR.
	SourceOCR TagSource = "ocr"
	// SourceEmbeddedText marks tags lifted from vector text entities.
	SourceEmbeddedText TagSource = "embedded_text"
	// SourceAttribute marks tags read from block attributes.
	SourceAttribute TagSource = "attribute"
)

// Tag is a text token produced by an external recognition process,
// with the confidence that process declared for it.
type Tag struct {
	RawText    string    `json:"rawText" yaml:"rawText"`
	Confidence float64   `json:"confidence" yaml:"confidence"`
	Geometry   Geometry  `json:"geometry" yaml:"geometry"`
	Source     TagSource `json:"source" yaml:"source"`
}

// RelativePosition constrains where an expected tag may sit relative to
// a detected symbol.
type RelativePosition string

const (
	// PositionAny accepts a tag anywhere within the proximity radius.
	PositionAny RelativePosition = "any"
	// PositionAbove requires the tag center above the symbol center.
	PositionAbove RelativePosition = "above"
	// PositionBelow requires the tag center below the symbol center.
	PositionBelow RelativePosition = "below"
	// PositionLeft requires the tag center left of the symbol center.
	PositionLeft RelativePosition = "left"
	// PositionRight requires the tag center right of the symbol center.
	PositionRight RelativePosition = "right"
)

// ExpectedTag is one tag profile a symbol template declares: a pattern
// the tag text must match, the radius to search, and where the tag
// should sit.
type ExpectedTag struct {
	Pattern          string           `json:"pattern" yaml:"pattern"`
	Proximity        float64          `json:"proximity" yaml:"proximity"`
	RelativePosition RelativePosition `json:"relativePosition,omitempty" yaml:"relativePosition,omitempty"`
}

// SymbolTemplate describes the template a detection was matched
// against: its equipment category, the key points the template defines,
// and the tag profiles a real instance is expected to carry.
type SymbolTemplate struct {
	Category     string        `json:"category" yaml:"category"`
	KeyPoints    []Point       `json:"keyPoints,omitempty" yaml:"keyPoints,omitempty"`
	ExpectedTags []ExpectedTag `json:"expectedTags" yaml:"expectedTags"`
}

// Symbol is a template-matched symbol detection.
type Symbol struct {
	ID         string         `json:"id" yaml:"id"`
	Confidence float64        `json:"confidence" yaml:"confidence"`
	Geometry   Geometry       `json:"geometry" yaml:"geometry"`
	Template   SymbolTemplate `json:"template" yaml:"template"`
}

// ConnectionClass is one of the connection kinds an instrument needs.
type ConnectionClass string

const (
	// ConnectionProcess is a process (piping) connection.
	ConnectionProcess ConnectionClass = "process"
	// ConnectionSignal is an instrument signal connection.
	ConnectionSignal ConnectionClass = "signal"
	// ConnectionPower is an electrical power connection.
	ConnectionPower ConnectionClass = "power"
)

// Instrument is an instrument bubble with the connections it claims.
// Required overrides the default profile for the instrument type when
// non-empty.
type Instrument struct {
	Tag      string            `json:"tag" yaml:"tag"`
	Type     string            `json:"type" yaml:"type"` // ISA letter code, e.g. FT, PIC
	Geometry Geometry          `json:"geometry" yaml:"geometry"`
	Required []ConnectionClass `json:"required,omitempty" yaml:"required,omitempty"`
}

// Equipment is a piece of major equipment with its connection points.
type Equipment struct {
	Tag              string   `json:"tag" yaml:"tag"`
	Geometry         Geometry `json:"geometry" yaml:"geometry"`
	ConnectionPoints []Point  `json:"connectionPoints,omitempty" yaml:"connectionPoints,omitempty"`
}

// Line is a process, signal or power run with its endpoints.
type Line struct {
	ID        string          `json:"id" yaml:"id"`
	Class     ConnectionClass `json:"class" yaml:"class"`
	Endpoints []Point         `json:"endpoints" yaml:"endpoints"`
}

// Fragment is a single OCR token with placement and font metrics,
// consumed by the material/rating assembler.
type Fragment struct {
	Text       string   `json:"text" yaml:"text"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	Geometry   Geometry `json:"geometry" yaml:"geometry"`
	FontSize   float64  `json:"fontSize" yaml:"fontSize"`
	Layer      string   `json:"layer" yaml:"layer"`
}

// Layer carries the drawing-standard defaults declared for a layer.
type Layer struct {
	Name            string `json:"name" yaml:"name"`
	DefaultMaterial string `json:"defaultMaterial,omitempty" yaml:"defaultMaterial,omitempty"`
	DefaultRating   string `json:"defaultRating,omitempty" yaml:"defaultRating,omitempty"`
}

// Document is everything extracted for one drawing. It is the single
// input of an analysis run and is never mutated by the engine.
type Document struct {
	Entities    []Entity     `json:"entities" yaml:"entities"`
	Tags        []Tag        `json:"tags" yaml:"tags"`
	Symbols     []Symbol     `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Instruments []Instrument `json:"instruments,omitempty" yaml:"instruments,omitempty"`
	Equipment   []Equipment  `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	Lines       []Line       `json:"lines,omitempty" yaml:"lines,omitempty"`
	Fragments   []Fragment   `json:"fragments,omitempty" yaml:"fragments,omitempty"`
	Layers      []Layer      `json:"layers,omitempty" yaml:"layers,omitempty"`
}
