package report

import (
	"encoding/json"
	"io"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/boxcloud/pkg/decompose"
	"github.com/chazu/boxcloud/pkg/shape"
)

// Document is the JSON form of a Result.
type Document struct {
	Source   string     `json:"source,omitempty"`
	Kind     shape.Kind `json:"kind"`
	CellSize float64    `json:"cell_size"`
	Origin   [3]float64 `json:"origin"`
	Dims     [3]int     `json:"dims"`
	Count    int        `json:"count"`
	Boxes    []BoxEntry `json:"boxes"`
	Stats    *Stats     `json:"stats,omitempty"`
}

// BoxEntry pairs a box in cell units with its world-space corners.
type BoxEntry struct {
	Cells decompose.Box `json:"cells"`
	Min   [3]float64    `json:"min"`
	Max   [3]float64    `json:"max"`
}

// NewDocument converts r, attaching statistics when withStats is set.
func NewDocument(r *Result, withStats bool) Document {
	doc := Document{
		Source:   r.Source,
		Kind:     r.Kind,
		CellSize: r.Frame.CellSize,
		Origin:   vec(r.Frame.World(0, 0, 0)),
		Dims:     r.Dims,
		Count:    len(r.Boxes),
		Boxes:    make([]BoxEntry, len(r.Boxes)),
	}
	for i, b := range r.Boxes {
		a := b.World(r.Frame)
		doc.Boxes[i] = BoxEntry{Cells: b, Min: vec(a.Min), Max: vec(a.Max)}
	}
	if withStats {
		s := Compute(r.Boxes)
		doc.Stats = &s
	}
	return doc
}

// WriteJSON writes r as an indented Document.
func WriteJSON(w io.Writer, r *Result, withStats bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(r, withStats))
}

func vec(v mgl64.Vec3) [3]float64 {
	return [3]float64{v.X(), v.Y(), v.Z()}
}
