package pipeline

import "image"

// StageInspector receives intermediate images. Implementations must not
// modify img.
type StageInspector interface {
	Inspect(stage string, img image.Image)
}

// StageInspectorFunc adapts a function to StageInspector.
type StageInspectorFunc func(stage string, img image.Image)

func (f StageInspectorFunc) Inspect(stage string, img image.Image) {
	f(stage, img)
}

// Stage names handed to inspectors.
const (
	StageInput       = "input"
	StageResized     = "resized"
	StageThresholded = "thresholded"
	StageInverted    = "inverted"
	StageReinverted  = "reinverted"
	StageTransparent = "transparent"
	StageCut         = "cut"
	StageCropped     = "cropped"
	StageComposite   = "composite"
)

// processLevels is the display level a stage needs to be shown; a stage is
// shown when DisplayLevel is strictly greater.
var processLevels = map[string]int{
	StageResized:     3,
	StageThresholded: 2,
	StageInverted:    2,
	"closed":         1,
	"thinned":        1,
	"thickened":      0,
	StageReinverted:  1,
	StageTransparent: 0,
}

var embedLevels = map[string]int{
	StageResized:     3,
	StageInverted:    1,
	StageTransparent: 1,
	StageReinverted:  1,
	StageInput:       0,
	StageCut:         0,
	StageCropped:     0,
	StageComposite:   0,
}

type stageRecorder struct {
	level     int
	levels    map[string]int
	inspector StageInspector
}

func (r stageRecorder) record(stage string, img image.Image) {
	if r.inspector == nil {
		return
	}
	need, ok := r.levels[stage]
	if !ok || r.level <= need {
		return
	}
	r.inspector.Inspect(stage, img)
}
