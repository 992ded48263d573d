package guidepack

// Canonical artifact file names inside a guidepack directory.
const (
	AudioFile      = "audio.wav"
	MetaFile       = "meta.json"
	FeaturesFile   = "features.json"
	GuideFile      = "guide.mp4"
	MaskFile       = "mask.mp4"
	BackgroundFile = "bg_blender.mp4"
	CompositeFile  = "composited.mp4"
	FinalFile      = "final.mp4"
)

// Artifacts lists every declared artifact in the order the pipeline produces them.
var Artifacts = []string{
	AudioFile,
	MetaFile,
	FeaturesFile,
	GuideFile,
	MaskFile,
	BackgroundFile,
	CompositeFile,
	FinalFile,
}

// IsArtifact reports whether name is one of the declared artifact names.
func IsArtifact(name string) bool {
	for _, a := range Artifacts {
		if a == name {
			return true
		}
	}
	return false
}

// ContentType returns the MIME type an artifact is served with.
func ContentType(name string) string {
	switch name {
	case AudioFile:
		return "audio/wav"
	case MetaFile, FeaturesFile:
		return "application/json"
	default:
		return "video/mp4"
	}
}
