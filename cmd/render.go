package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/killallgit/guidepack/internal/pipeline"
	"github.com/killallgit/guidepack/internal/services/cleanup"
	"github.com/killallgit/guidepack/pkg/download"
)

var (
	renderReq        pipeline.Request
	renderID         string
	renderNoProgress bool
	renderJSON       bool
)

// renderCmd runs the full pipeline locally
var renderCmd = &cobra.Command{
	Use:   "render [source-audio]",
	Short: "Render a guidepack locally",
	Long: `Normalize a source audio file into a new guidepack and run every stage
through the final mux, without the API server or job queue.

The source may be an http(s) URL; it is downloaded into the staging area
first. Pass --guidepack instead of a source to re-render an existing
guidepack.

Example:
  guidepack render song.mp3
  guidepack render https://example.com/song.mp3
  guidepack render song.mp3 --style mono --width 1920 --height 1080
  guidepack render --guidepack 3f2b9c1e-8a4d-4d6e-9b1a-2c3d4e5f6a7b --mux-source guide.mp4`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	f := renderCmd.Flags()
	f.StringVar(&renderID, "guidepack", "", "existing guidepack id (skips normalize)")
	f.IntVar(&renderReq.FPS, "fps", 0, "frame rate (default from config)")
	f.IntVar(&renderReq.Width, "width", 0, "video width (default from config)")
	f.IntVar(&renderReq.Height, "height", 0, "video height (default from config)")
	f.IntVar(&renderReq.InflatePx, "inflate", 0, "mask inflation in pixels")
	f.IntVar(&renderReq.CRF, "crf", 0, "guide x264 CRF")
	f.StringVar(&renderReq.Preset, "preset", "", "guide x264 preset")
	f.StringVar(&renderReq.Style, "style", "", "background style (neon, mono)")
	f.IntVar(&renderReq.AudioOffsetMs, "audio-offset-ms", 0, "shift audio against video in the final mux")
	f.StringVar(&renderReq.MuxSource, "mux-source", "", "video muxed with audio (guide.mp4, bg_blender.mp4, composited.mp4)")
	f.BoolVar(&renderReq.SkipValidate, "skip-validate", false, "skip mask/guide validation")
	f.BoolVar(&renderNoProgress, "no-progress", false, "disable the progress bar")
	f.BoolVar(&renderJSON, "json", false, "print the render result as JSON")
}

func runRender(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (renderID == "") {
		return fmt.Errorf("pass either a source audio file or --guidepack")
	}
	if err := loadConfig(); err != nil {
		return err
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	orchestrator, err := newOrchestrator(appConfig, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	total := len(pipeline.Stages)
	if renderID != "" {
		total--
	}
	progress := newRenderProgress(cmd.ErrOrStderr(), total, renderNoProgress)

	id := renderID
	if id == "" {
		source := args[0]
		if download.IsRemote(source) {
			store := orchestrator.Store()
			fetched, err := newDownloader(appConfig, store).Fetch(ctx, source)
			if err != nil {
				progress.abort()
				return err
			}
			defer cleanup.RemoveStaged(store.StagingDir(), fetched.FilePath, logger)
			source = fetched.FilePath
		}
		meta, err := orchestrator.Normalize(ctx, source, progress.observe)
		if err != nil {
			progress.abort()
			return err
		}
		id = meta.ID
	}

	result, err := orchestrator.Run(ctx, id, renderReq, progress.observe)
	if err != nil {
		progress.abort()
		return fmt.Errorf("render of guidepack %s failed: %w", id, err)
	}
	progress.finish()

	if renderJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Guidepack: %s\nFinal:     %s\n", result.ID, result.Final)
	return nil
}

// renderProgress shows one bar that advances per finished stage
type renderProgress struct {
	mu      sync.Mutex
	current string
	p       *mpb.Progress
	bar     *mpb.Bar
}

func newRenderProgress(out io.Writer, total int, disabled bool) *renderProgress {
	rp := &renderProgress{current: "starting"}
	if disabled {
		return rp
	}
	rp.p = mpb.New(mpb.WithOutput(out), mpb.WithWidth(48), mpb.WithAutoRefresh())
	rp.bar = rp.p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Rendering: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.Any(func(decor.Statistics) string { return " " + rp.stage() }),
		),
	)
	return rp
}

func (rp *renderProgress) stage() string {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.current
}

func (rp *renderProgress) observe(e pipeline.Event) {
	rp.mu.Lock()
	rp.current = fmt.Sprintf("%s %s", e.Stage, e.State)
	rp.mu.Unlock()

	if rp.bar != nil && e.State == (pipeline.Succeeded{}).Name() {
		rp.bar.Increment()
	}
}

// finish completes the bar even when a stage such as validate was skipped
func (rp *renderProgress) finish() {
	if rp.p == nil {
		return
	}
	rp.bar.SetTotal(-1, true)
	rp.p.Wait()
}

func (rp *renderProgress) abort() {
	if rp.p == nil {
		return
	}
	rp.bar.Abort(false)
	rp.p.Wait()
}
