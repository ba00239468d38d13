package sim

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/milk9111/cape/cape"
)

// Frame is one recorded snapshot.
type Frame struct {
	Tick      int
	Positions []cape.Vec3
}

// Recorder keeps a trajectory of published snapshots. Attach it with
// Runner.OnTick(rec.Record).
type Recorder struct {
	// Every keeps one frame per Every ticks. Zero or one keeps all.
	Every  int
	frames []Frame
}

func (r *Recorder) Record(tick int, positions []cape.Vec3) {
	if r.Every > 1 && tick%r.Every != 0 {
		return
	}
	r.frames = append(r.frames, Frame{Tick: tick, Positions: append([]cape.Vec3(nil), positions...)})
}

func (r *Recorder) Frames() []Frame {
	return r.frames
}

func (r *Recorder) Reset() {
	r.frames = r.frames[:0]
}

// WriteCSV writes one row per segment per frame: tick,index,x,y,z.
func (r *Recorder) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"tick", "index", "x", "y", "z"}); err != nil {
		return err
	}
	row := make([]string, 5)
	for _, f := range r.frames {
		for i, p := range f.Positions {
			row[0] = strconv.Itoa(f.Tick)
			row[1] = strconv.Itoa(i)
			row[2] = strconv.FormatFloat(p.X(), 'g', -1, 64)
			row[3] = strconv.FormatFloat(p.Y(), 'g', -1, 64)
			row[4] = strconv.FormatFloat(p.Z(), 'g', -1, 64)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Diverge finds the first frame and segment where two recordings differ
// bitwise. ok is false when they are identical.
func Diverge(a, b []Frame) (tick, index int, ok bool) {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i].Tick != b[i].Tick || len(a[i].Positions) != len(b[i].Positions) {
			return a[i].Tick, -1, true
		}
		for j := range a[i].Positions {
			if a[i].Positions[j] != b[i].Positions[j] {
				return a[i].Tick, j, true
			}
		}
	}
	switch {
	case len(a) > n:
		return a[n].Tick, -1, true
	case len(b) > n:
		return b[n].Tick, -1, true
	}
	return 0, 0, false
}

// Summary describes the end state of a recording.
type Summary struct {
	Frames int
	End    cape.Vec3
	// LastDelta is the largest segment displacement between the final two
	// frames.
	LastDelta float64
	// MaxStretch is the largest pair distance over rest length seen in any
	// frame.
	MaxStretch float64
}

func (s Summary) String() string {
	return fmt.Sprintf("frames=%d end=(%.4f, %.4f, %.4f) last_delta=%.3g max_stretch=%.4f",
		s.Frames, s.End.X(), s.End.Y(), s.End.Z(), s.LastDelta, s.MaxStretch)
}

func (r *Recorder) Summarize(segmentLength float64) Summary {
	s := Summary{Frames: len(r.frames)}
	if len(r.frames) == 0 {
		return s
	}
	last := r.frames[len(r.frames)-1].Positions
	if len(last) > 0 {
		s.End = last[len(last)-1]
	}
	if len(r.frames) > 1 {
		prev := r.frames[len(r.frames)-2].Positions
		for i := range last {
			if i < len(prev) {
				s.LastDelta = math.Max(s.LastDelta, last[i].Sub(prev[i]).Len())
			}
		}
	}
	if segmentLength > 0 {
		for _, f := range r.frames {
			for i := 0; i+1 < len(f.Positions); i++ {
				s.MaxStretch = math.Max(s.MaxStretch, f.Positions[i+1].Sub(f.Positions[i]).Len()/segmentLength)
			}
		}
	}
	return s
}
