package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/guidepack/internal/pipeline"
)

func TestRenderCommandArgs(t *testing.T) {
	renderCmd := findCommand(t, "render")
	t.Cleanup(func() { _ = renderCmd.Flags().Set("guidepack", "") })

	tests := []struct {
		name string
		args []string
	}{
		{"neither source nor id", []string{"render"}},
		{"both source and id", []string{"render", "song.mp3", "--guidepack", "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "either a source audio file or --guidepack")
			_ = renderCmd.Flags().Set("guidepack", "")
		})
	}
}

func TestRenderCommandFlags(t *testing.T) {
	flags := findCommand(t, "render").Flags()
	for _, name := range []string{"fps", "width", "height", "inflate", "crf", "preset", "style", "audio-offset-ms", "mux-source", "skip-validate", "no-progress", "json"} {
		assert.NotNil(t, flags.Lookup(name), "missing flag %q", name)
	}
}

func TestRenderHelpStylesAreKnown(t *testing.T) {
	known := []string{pipeline.StyleNeon, pipeline.StyleMono}
	long := findCommand(t, "render").Long

	matches := regexp.MustCompile(`--style (\w+)`).FindAllStringSubmatch(long, -1)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.Contains(t, known, m[1], "help example uses unknown style %q", m[1])
	}
}

func TestRenderProgress(t *testing.T) {
	t.Run("disabled progress only tracks the stage", func(t *testing.T) {
		rp := newRenderProgress(new(bytes.Buffer), len(pipeline.Stages), true)
		rp.observe(pipeline.Event{Stage: pipeline.StageGuide, State: pipeline.Running{}.Name()})
		assert.Equal(t, "guide running", rp.stage())
		rp.finish()
		rp.abort()
	})

	t.Run("bar counts succeeded stages", func(t *testing.T) {
		out := new(bytes.Buffer)
		rp := newRenderProgress(out, 2, false)
		rp.observe(pipeline.Event{Stage: pipeline.StageFeatures, State: pipeline.Running{}.Name()})
		rp.observe(pipeline.Event{Stage: pipeline.StageFeatures, State: pipeline.Succeeded{}.Name()})
		rp.observe(pipeline.Event{Stage: pipeline.StageGuide, State: pipeline.Failed{}.Name(), Err: errors.New("boom")})
		assert.Equal(t, int64(1), rp.bar.Current())
		rp.finish()
		assert.True(t, rp.bar.Completed())
	})
}

func TestRenderProgressToPlainFile(t *testing.T) {
	tests := []struct {
		name string
		end  func(rp *renderProgress)
	}{
		{"finish", func(rp *renderProgress) { rp.finish() }},
		{"abort", func(rp *renderProgress) { rp.abort() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := os.Create(filepath.Join(t.TempDir(), "stderr.log"))
			require.NoError(t, err)
			defer out.Close()

			rp := newRenderProgress(out, len(pipeline.Stages), false)
			rp.observe(pipeline.Event{Stage: pipeline.StageNormalize, State: pipeline.Succeeded{}.Name()})

			done := make(chan struct{})
			go func() {
				tt.end(rp)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(3 * time.Second):
				t.Fatal("progress bar did not return on a non-terminal output")
			}
		})
	}
}
