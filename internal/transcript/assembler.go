// Package transcript assembles speaker-tagged transcripts from chunked
// transcription results and validates them before analysis.
//
// Long recordings are split into sequential windows so each stays under
// the transcription provider's per-request size limit. Every window is
// transcribed independently with timestamps starting at zero; Merge
// restores a single globally-ordered timeline by shifting each chunk by
// the cumulative duration of the chunks before it.
package transcript

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/callscore-ai/callscore/internal/core"
)

// AudioChunk is one sequential window of the source recording.
type AudioChunk struct {
	Index    int
	Data     []byte
	Duration float64 // seconds, known from the split plan
}

// ChunkResult is the transcription of one chunk with locally-zeroed
// segment timestamps.
type ChunkResult struct {
	Index    int
	Duration float64
	Segments []core.TranscriptSegment
}

// Transcriber converts one audio chunk into locally-timed segments.
type Transcriber interface {
	Transcribe(ctx context.Context, chunk AudioChunk) (ChunkResult, error)
}

// Split cuts audio into sequential windows of at most maxBytes each.
// Chunk durations are apportioned by byte share, which holds for the
// constant-bitrate encodings the upstream compressor produces.
func Split(audio []byte, totalDuration float64, maxBytes int) []AudioChunk {
	if len(audio) == 0 || maxBytes <= 0 {
		return nil
	}
	if len(audio) <= maxBytes {
		return []AudioChunk{{Index: 0, Data: audio, Duration: totalDuration}}
	}

	var chunks []AudioChunk
	for offset := 0; offset < len(audio); offset += maxBytes {
		end := offset + maxBytes
		if end > len(audio) {
			end = len(audio)
		}
		share := float64(end-offset) / float64(len(audio))
		chunks = append(chunks, AudioChunk{
			Index:    len(chunks),
			Data:     audio[offset:end],
			Duration: totalDuration * share,
		})
	}
	return chunks
}

// TranscribeAll transcribes every chunk in parallel and returns the
// results in chunk order. Chunks are independent; the only join point is
// the final barrier before Merge.
func TranscribeAll(ctx context.Context, t Transcriber, chunks []AudioChunk) ([]ChunkResult, error) {
	results := make([]ChunkResult, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	for _, chunk := range chunks {
		g.Go(func() error {
			result, err := t.Transcribe(ctx, chunk)
			if err != nil {
				return err
			}
			results[chunk.Index] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Merge concatenates chunk results into one globally-timed transcript.
// A segment at local time t in chunk i lands at t plus the summed
// durations of chunks 0..i-1.
func Merge(chunks []ChunkResult) []core.TranscriptSegment {
	ordered := make([]ChunkResult, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	var merged []core.TranscriptSegment
	var offset float64
	for _, chunk := range ordered {
		for _, seg := range chunk.Segments {
			merged = append(merged, core.TranscriptSegment{
				Speaker: seg.Speaker,
				Text:    seg.Text,
				Start:   seg.Start + offset,
				End:     seg.End + offset,
			})
		}
		offset += chunk.Duration
	}
	return merged
}

// Validate rejects transcripts the pipeline cannot analyze: empty input,
// inverted timestamps, out-of-order or overlapping segments. This is
// the fail-fast gate before any model call is made.
func Validate(segments []core.TranscriptSegment) error {
	if len(segments) == 0 {
		return core.ErrValidation(core.CodeEmptyTranscript, "transcript has no segments")
	}

	hasText := false
	prevStart := -1.0
	prevEnd := 0.0
	for i, seg := range segments {
		if seg.Start < 0 || seg.End < 0 {
			return core.ErrValidation(core.CodeMalformedTranscript, "negative timestamp").
				WithDetail("segment", i)
		}
		if seg.Start >= seg.End {
			return core.ErrValidation(core.CodeMalformedTranscript, "segment start must precede end").
				WithDetail("segment", i)
		}
		if seg.Start < prevStart {
			return core.ErrValidation(core.CodeMalformedTranscript, "segments out of chronological order").
				WithDetail("segment", i)
		}
		if seg.Start < prevEnd {
			return core.ErrValidation(core.CodeMalformedTranscript, "segments overlap").
				WithDetail("segment", i)
		}
		prevStart = seg.Start
		prevEnd = seg.End
		if seg.Text != "" {
			hasText = true
		}
	}

	if !hasText {
		return core.ErrValidation(core.CodeEmptyTranscript, "transcript has no utterance text")
	}
	return nil
}
