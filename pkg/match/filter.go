package match

import (
	"strings"

	"github.com/plantsight/drawcheck/pkg/drawing"
	"github.com/plantsight/drawcheck/pkg/normalize"
)

// classifyFloor is the minimum parse confidence for a text entity to
// count as equipment-relevant.
const classifyFloor = 0.3

// equipmentKeywords mark block names that represent tagged equipment.
var equipmentKeywords = []string{
	"PUMP", "VALVE", "TANK", "VESSEL", "DRUM", "COMPRESSOR",
	"EXCHANGER", "FILTER", "MOTOR", "INSTRUMENT",
}

// equipmentLayers are layer names that carry equipment regardless of
// entity content.
var equipmentLayers = map[string]bool{
	"EQUIPMENT":     true,
	"EQUIP":         true,
	"P&ID-EQUIP":    true,
	"INSTRUMENTS":   true,
	"INSTRUMENT":    true,
	"PROCESS-EQUIP": true,
}

// categoryKeywords connect tag categories back to block naming
// conventions for the no-text similarity heuristic.
var categoryKeywords = map[normalize.Category][]string{
	normalize.CategoryPump:       {"PUMP"},
	normalize.CategoryValve:      {"VALVE", "XV", "MOV"},
	normalize.CategoryVessel:     {"VESSEL", "TANK", "DRUM"},
	normalize.CategoryInstrument: {"INSTRUMENT", "TRANSMITTER", "GAUGE"},
}

// unit is one logical piece of tagged equipment to match. A block and
// the text callout sitting on it collapse into a single unit so the
// pair is matched (and counted) once, with the callout text as label.
type unit struct {
	primary drawing.Entity
	label   string // empty for blocks with no attached callout
	anchor  drawing.Geometry
	members []drawing.Entity
}

// filterEntities keeps the equipment-relevant subset: blocks named for
// equipment, text that classifies to a known category, and anything on
// a known equipment layer.
func (m *Matcher) filterEntities(entities []drawing.Entity) []drawing.Entity {
	var out []drawing.Entity
	for _, e := range entities {
		if equipmentLayers[strings.ToUpper(e.Layer)] {
			out = append(out, e)
			continue
		}
		switch e.Kind {
		case drawing.EntityKindBlock:
			name := strings.ToUpper(e.Name)
			for _, kw := range equipmentKeywords {
				if strings.Contains(name, kw) {
					out = append(out, e)
					break
				}
			}
		case drawing.EntityKindText, drawing.EntityKindAnnotation:
			parsed := m.normalizer.Parse(e.Text)
			if parsed.Valid() && parsed.Confidence > classifyFloor {
				out = append(out, e)
			}
		}
	}
	return out
}

// buildUnits groups filtered entities into equipment units. Each text
// or annotation entity attaches to the nearest block within the
// proximity threshold; the closest callout becomes the block's label.
// Blocks without a callout and callouts without a block stand alone.
func (m *Matcher) buildUnits(filtered []drawing.Entity) []unit {
	var blocks, texts []drawing.Entity
	for _, e := range filtered {
		if e.Kind == drawing.EntityKindBlock {
			blocks = append(blocks, e)
		} else {
			texts = append(texts, e)
		}
	}

	// closest callout per block, discovery order breaking ties
	attached := make([]int, len(texts)) // index into blocks, -1 when standalone
	labelFor := make(map[int]int)       // block index -> text index of its label
	for ti, txt := range texts {
		attached[ti] = -1
		bestDist := m.config.ProximityThreshold
		for bi, blk := range blocks {
			if d := txt.Geometry.Distance(blk.Geometry); d <= bestDist {
				bestDist = d
				attached[ti] = bi
			}
		}
		if bi := attached[ti]; bi != -1 {
			if cur, ok := labelFor[bi]; !ok ||
				texts[cur].Geometry.Distance(blocks[bi].Geometry) > bestDist {
				labelFor[bi] = ti
			}
		}
	}

	var units []unit
	isLabel := make(map[int]bool, len(labelFor))
	for bi, blk := range blocks {
		u := unit{primary: blk, anchor: blk.Geometry, members: []drawing.Entity{blk}}
		if ti, ok := labelFor[bi]; ok {
			txt := texts[ti]
			isLabel[ti] = true
			u.primary = txt
			u.label = m.normalizer.Parse(txt.Text).Normalized
			u.anchor = txt.Geometry
			u.members = append(u.members, txt)
		}
		units = append(units, u)
	}
	for ti, txt := range texts {
		if isLabel[ti] {
			continue
		}
		units = append(units, unit{
			primary: txt,
			label:   m.normalizer.Parse(txt.Text).Normalized,
			anchor:  txt.Geometry,
			members: []drawing.Entity{txt},
		})
	}
	return units
}
