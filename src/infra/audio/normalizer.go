// Package audio prepares uploaded audio for speech recognition: decode,
// downmix to one channel and resample to the rate the recognizer expects.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// TargetSampleRate is the sample rate required by the recognition capability.
const TargetSampleRate = 16000

// Normalizer converts an input audio file into a mono 16 kHz 16-bit WAV.
type Normalizer struct {
	ffmpegPath string
}

// NewNormalizer creates a Normalizer. ffmpegPath is used to convert non-WAV
// containers; when empty only WAV input is accepted.
func NewNormalizer(ffmpegPath string) *Normalizer {
	return &Normalizer{ffmpegPath: ffmpegPath}
}

// Normalize writes the normalized audio from srcPath to dstPath.
// WAV input is decoded natively; anything else goes through ffmpeg.
func (n *Normalizer) Normalize(ctx context.Context, srcPath, dstPath string) error {
	if strings.EqualFold(filepath.Ext(srcPath), ".wav") {
		return n.normalizeWAV(srcPath, dstPath)
	}
	if n.ffmpegPath == "" {
		return fmt.Errorf("unsupported container %q and no converter configured", filepath.Ext(srcPath))
	}
	return n.convertWithFFmpeg(ctx, srcPath, dstPath)
}

func (n *Normalizer) normalizeWAV(srcPath, dstPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("failed to decode wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate < 1 {
		return fmt.Errorf("invalid wav format in %s", srcPath)
	}

	samples := toFloat(buf.Data, int(dec.BitDepth))
	mono := downmix(samples, buf.Format.NumChannels)
	resampled := resample(mono, buf.Format.SampleRate, TargetSampleRate)

	return writeWAV(dstPath, resampled)
}

// convertWithFFmpeg shells out for containers we don't decode natively.
func (n *Normalizer) convertWithFFmpeg(ctx context.Context, srcPath, dstPath string) error {
	cmd := exec.CommandContext(ctx, n.ffmpegPath,
		"-y", "-i", srcPath,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", TargetSampleRate),
		"-sample_fmt", "s16",
		"-f", "wav", dstPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		slog.Debug("ffmpeg conversion failed", "src", srcPath, "output", string(output))
		return fmt.Errorf("ffmpeg conversion failed: %w", err)
	}
	return nil
}

// toFloat converts integer PCM samples to float64 in [-1, 1].
func toFloat(data []int, bitDepth int) []float64 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))
	out := make([]float64, len(data))
	for i, s := range data {
		out[i] = float64(s) / scale
	}
	return out
}

// downmix averages interleaved channels into a single channel.
func downmix(samples []float64, channels int) []float64 {
	if channels <= 1 {
		return samples
	}
	frames := len(samples) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		out[i] = sum / float64(channels)
	}
	return out
}

// resample converts mono samples from srcRate to dstRate by linear
// interpolation. Good enough for speech recognition input.
func resample(samples []float64, srcRate, dstRate int) []float64 {
	if srcRate == dstRate || len(samples) == 0 {
		return samples
	}
	ratio := float64(srcRate) / float64(dstRate)
	outLen := len(samples) * dstRate / srcRate
	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}
	return out
}

// writeWAV encodes mono float64 samples as a 16-bit PCM WAV file.
func writeWAV(path string, samples []float64) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create staging wav: %w", err)
	}
	defer out.Close()

	enc := wav.NewEncoder(out, TargetSampleRate, 16, 1, 1)
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: TargetSampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(samples)),
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("failed to write staging wav: %w", err)
	}
	return enc.Close()
}
