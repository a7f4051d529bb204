package util

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// PCMSampleRate is the rate narration is decoded at for silence analysis.
const PCMSampleRate = 16000

type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
}

// GetAudioDuration returns the container duration of a media file in seconds.
func GetAudioDuration(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}
	return ParseProbeDuration(out)
}

// ParseProbeDuration reads ffprobe JSON, preferring the format duration and
// falling back to the first audio stream.
func ParseProbeDuration(probeJSON string) (float64, error) {
	var p probeFormat
	if err := json.Unmarshal([]byte(probeJSON), &p); err != nil {
		return 0, fmt.Errorf("parse probe output: %w", err)
	}
	candidates := []string{p.Format.Duration}
	for _, s := range p.Streams {
		if s.CodecType == "audio" {
			candidates = append(candidates, s.Duration)
		}
	}
	for _, c := range candidates {
		if d, err := strconv.ParseFloat(strings.TrimSpace(c), 64); err == nil && d > 0 {
			return d, nil
		}
	}
	return 0, fmt.Errorf("no duration in probe output")
}

// DecodePCM decodes any audio file ffmpeg understands into mono signed
// 16-bit samples at sampleRate.
func DecodePCM(path string, sampleRate int) ([]int16, error) {
	if sampleRate <= 0 {
		sampleRate = PCMSampleRate
	}
	var out, stderr bytes.Buffer
	err := ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{
			"f":  "s16le",
			"ac": 1,
			"ar": sampleRate,
		}).
		WithOutput(&out).
		WithErrorOutput(&stderr).
		Run()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w: %s", path, err, lastLine(stderr.String()))
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("decode %s: no samples", path)
	}
	return ParsePCM(out.Bytes()), nil
}

// ParsePCM converts little-endian s16 bytes to samples. A trailing odd byte
// is dropped.
func ParsePCM(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return samples
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// ClipInfo is what the compositor needs to know about a background clip.
type ClipInfo struct {
	Width    int
	Height   int
	Duration float64
}

// ProbeClip reads the first video stream's size and the container duration.
func ProbeClip(path string) (ClipInfo, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return ClipInfo{}, fmt.Errorf("probe %s: %w", path, err)
	}
	return ParseProbeClip(out)
}

func ParseProbeClip(probeJSON string) (ClipInfo, error) {
	var p struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
			Duration  string `json:"duration"`
		} `json:"streams"`
	}
	if err := json.Unmarshal([]byte(probeJSON), &p); err != nil {
		return ClipInfo{}, fmt.Errorf("parse probe output: %w", err)
	}
	for _, s := range p.Streams {
		if s.CodecType != "video" || s.Width <= 0 || s.Height <= 0 {
			continue
		}
		info := ClipInfo{Width: s.Width, Height: s.Height}
		for _, c := range []string{p.Format.Duration, s.Duration} {
			if d, err := strconv.ParseFloat(strings.TrimSpace(c), 64); err == nil && d > 0 {
				info.Duration = d
				break
			}
		}
		return info, nil
	}
	return ClipInfo{}, fmt.Errorf("no video stream found")
}
