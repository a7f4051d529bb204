// Package compose lays captions, background clips and audio into the final
// video through an ffmpeg filter graph.
package compose

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"factreel/internal/types"
	"factreel/log"
	"factreel/pkg/util"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

type Options struct {
	Width            int
	Height           int
	Fps              int
	Crop             bool
	MusicVolume      float64
	PlaceholderColor string
	Header           string
	Style            CaptionStyle
}

// Input is everything one render consumes. Duration, when longer than the
// timeline, extends the last clip and the caption to fill it.
type Input struct {
	Segments    []types.TimingSegment
	Assets      []types.BackgroundAsset
	Single      bool
	Voiceover   string
	Music       string
	CaptionPath string
	Output      string
	Duration    float64
}

// InputError names the render input that could not be loaded.
type InputError struct {
	Input string
	Path  string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("load %s %q: %v", e.Input, e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

type Compositor struct {
	opts   Options
	probe  func(path string) (util.ClipInfo, error)
	run    func(stream *ffmpeg.Stream) error
	rng    *rand.Rand
	logger *zap.Logger
}

type Option func(*Compositor)

func WithProbe(probe func(string) (util.ClipInfo, error)) Option {
	return func(c *Compositor) { c.probe = probe }
}

func WithRunner(run func(*ffmpeg.Stream) error) Option {
	return func(c *Compositor) { c.run = run }
}

func WithRand(rng *rand.Rand) Option {
	return func(c *Compositor) { c.rng = rng }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Compositor) { c.logger = log.OrNop(l) }
}

func New(opts Options, options ...Option) *Compositor {
	c := &Compositor{
		opts:   opts,
		probe:  util.ProbeClip,
		run:    func(s *ffmpeg.Stream) error { return s.Run() },
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: zap.NewNop(),
	}
	for _, o := range options {
		o(c)
	}
	return c
}

func secs(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Build writes the caption file and returns the output stream without
// running it.
func (c *Compositor) Build(in Input) (*ffmpeg.Stream, error) {
	if len(in.Segments) == 0 {
		return nil, fmt.Errorf("nothing to render: empty timeline")
	}
	if len(in.Assets) != len(in.Segments) {
		return nil, fmt.Errorf("have %d backgrounds for %d segments", len(in.Assets), len(in.Segments))
	}
	if _, err := os.Stat(in.Voiceover); err != nil {
		return nil, &InputError{Input: "voiceover", Path: in.Voiceover, Err: err}
	}
	if in.Music != "" {
		if _, err := os.Stat(in.Music); err != nil {
			return nil, &InputError{Input: "background music", Path: in.Music, Err: err}
		}
	}

	total := in.Segments[len(in.Segments)-1].End
	if in.Duration > total {
		total = in.Duration
	}

	captions := CaptionsFor(in.Segments, in.Single, c.opts.Header, total)
	if err := WriteASSFile(in.CaptionPath, captions, c.opts.Style, c.opts.Width, c.opts.Height, c.rng); err != nil {
		return nil, &InputError{Input: "captions", Path: in.CaptionPath, Err: err}
	}

	clips := make([]*ffmpeg.Stream, len(in.Segments))
	for i, seg := range in.Segments {
		need := seg.Duration()
		if i == len(in.Segments)-1 {
			need = total - seg.Start
		}
		clips[i] = c.clip(i, in.Assets[i], need)
	}

	video := ffmpeg.Concat(clips).
		Filter("ass", ffmpeg.Args{in.CaptionPath})

	audio := ffmpeg.Input(in.Voiceover).Audio().Filter("apad", ffmpeg.Args{})
	if in.Music != "" {
		music := ffmpeg.Input(in.Music, ffmpeg.KwArgs{"stream_loop": "-1"}).Audio().
			Filter("volume", ffmpeg.Args{strconv.FormatFloat(c.opts.MusicVolume, 'f', 2, 64)})
		audio = ffmpeg.Filter([]*ffmpeg.Stream{audio, music}, "amix", ffmpeg.Args{}, ffmpeg.KwArgs{
			"inputs":             "2",
			"duration":           "first",
			"dropout_transition": "0",
		})
	}

	return ffmpeg.Output([]*ffmpeg.Stream{video, audio}, in.Output, ffmpeg.KwArgs{
		"c:v":      "libx264",
		"pix_fmt":  "yuv420p",
		"c:a":      "aac",
		"b:a":      "192k",
		"r":        strconv.Itoa(c.opts.Fps),
		"t":        secs(total),
		"movflags": "+faststart",
	}).OverWriteOutput(), nil
}

// clip prepares one segment's background. Clips that cannot be probed are
// replaced by a placeholder like any unresolved background.
func (c *Compositor) clip(index int, asset types.BackgroundAsset, need float64) *ffmpeg.Stream {
	if asset.Kind == types.AssetPlaceholder || asset.Path == "" {
		return c.placeholder(need)
	}
	info, err := c.probe(asset.Path)
	if err != nil {
		c.logger.Warn("background clip unreadable, using placeholder",
			zap.Int("segment", index), zap.String("path", asset.Path), zap.Error(err))
		return c.placeholder(need)
	}

	plan := PlanClip(info.Duration, need, c.rng)
	kw := ffmpeg.KwArgs{"t": secs(need)}
	if plan.Loop {
		kw["stream_loop"] = "-1"
	}
	if plan.Offset > 0 {
		kw["ss"] = secs(plan.Offset)
	}
	stream := ffmpeg.Input(asset.Path, kw).Video()

	if c.opts.Crop {
		crop := CenterCrop(info.Width, info.Height, c.opts.Width, c.opts.Height)
		stream = stream.Filter("crop", ffmpeg.Args{
			strconv.Itoa(crop.W), strconv.Itoa(crop.H), strconv.Itoa(crop.X), strconv.Itoa(crop.Y),
		})
	}
	return c.normalize(stream)
}

func (c *Compositor) placeholder(need float64) *ffmpeg.Stream {
	src := fmt.Sprintf("color=c=0x%s:s=%dx%d:r=%d:d=%s",
		hexColor(c.opts.PlaceholderColor, "282828"), c.opts.Width, c.opts.Height, c.opts.Fps, secs(need))
	return c.normalize(ffmpeg.Input(src, ffmpeg.KwArgs{"f": "lavfi"}))
}

// normalize brings every clip to the same size, rate and timestamps so that
// concat accepts them.
func (c *Compositor) normalize(s *ffmpeg.Stream) *ffmpeg.Stream {
	return s.
		Filter("scale", ffmpeg.Args{strconv.Itoa(c.opts.Width), strconv.Itoa(c.opts.Height)}).
		Filter("setsar", ffmpeg.Args{"1"}).
		Filter("fps", ffmpeg.Args{strconv.Itoa(c.opts.Fps)}).
		Filter("setpts", ffmpeg.Args{"PTS-STARTPTS"})
}

// Render builds the graph and runs ffmpeg. A failed run removes the partial
// output.
func (c *Compositor) Render(ctx context.Context, in Input) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stream, err := c.Build(in)
	if err != nil {
		return err
	}
	c.logger.Info("rendering video",
		zap.String("output", in.Output),
		zap.Int("segments", len(in.Segments)))
	c.logger.Debug("ffmpeg args", zap.Strings("args", stream.GetArgs()))
	if err := c.run(stream); err != nil {
		_ = os.Remove(in.Output)
		return fmt.Errorf("ffmpeg render %s: %w", in.Output, err)
	}
	return nil
}
