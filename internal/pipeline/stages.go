package pipeline

import "github.com/killallgit/guidepack/internal/guidepack"

// Stage names one step of the render pipeline
type Stage string

const (
	StageNormalize  Stage = "normalize"
	StageFeatures   Stage = "features"
	StageGuide      Stage = "guide"
	StageMask       Stage = "mask"
	StageValidate   Stage = "validate"
	StageBackground Stage = "background"
	StageComposite  Stage = "composite"
	StageMux        Stage = "mux"
)

// Stages lists every stage in dependency order
var Stages = []Stage{
	StageNormalize,
	StageFeatures,
	StageGuide,
	StageMask,
	StageValidate,
	StageBackground,
	StageComposite,
	StageMux,
}

// Inputs returns the artifacts a stage reads. The mux video input depends
// on Params and is resolved by the stage itself.
func (s Stage) Inputs() []string {
	switch s {
	case StageFeatures:
		return []string{guidepack.AudioFile}
	case StageGuide, StageMask:
		return []string{guidepack.AudioFile, guidepack.FeaturesFile}
	case StageValidate:
		return []string{guidepack.MaskFile, guidepack.GuideFile}
	case StageBackground:
		return []string{guidepack.FeaturesFile}
	case StageComposite:
		return []string{guidepack.BackgroundFile, guidepack.GuideFile, guidepack.MaskFile}
	case StageMux:
		return []string{guidepack.AudioFile}
	default:
		return nil
	}
}

// Output returns the artifact a stage writes, or "" for validate.
func (s Stage) Output() string {
	switch s {
	case StageNormalize:
		return guidepack.AudioFile
	case StageFeatures:
		return guidepack.FeaturesFile
	case StageGuide:
		return guidepack.GuideFile
	case StageMask:
		return guidepack.MaskFile
	case StageBackground:
		return guidepack.BackgroundFile
	case StageComposite:
		return guidepack.CompositeFile
	case StageMux:
		return guidepack.FinalFile
	default:
		return ""
	}
}

// ParseStage maps a route segment to a Stage
func ParseStage(name string) (Stage, bool) {
	for _, s := range Stages {
		if string(s) == name {
			return s, true
		}
	}
	return "", false
}
