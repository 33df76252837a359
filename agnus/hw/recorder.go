package hw

import (
	"log/slog"
)

// Op is one recorded blit: the register state at Start and the size.
type Op struct {
	Regs Registers
	Size BlitSize
}

// Recorder captures every blit started through it. With a nil inner
// blitter it only records; otherwise the blit is executed by inner too.
type Recorder struct {
	ownership
	inner Blitter
	regs  Registers
	Ops   []Op
}

func NewRecorder(inner Blitter) *Recorder {
	return &Recorder{inner: inner}
}

func (r *Recorder) Own() {
	if r.inner != nil {
		r.inner.Own()
	}
	r.own()
}

func (r *Recorder) Disown() {
	r.disown()
	if r.inner != nil {
		r.inner.Disown()
	}
}

func (r *Recorder) Wait() {
	if r.inner != nil {
		r.inner.Wait()
	}
}

func (r *Recorder) Regs() *Registers {
	if r.inner != nil {
		return r.inner.Regs()
	}
	return &r.regs
}

func (r *Recorder) SetNasty(on bool) {
	if r.inner != nil {
		r.inner.SetNasty(on)
	}
}

func (r *Recorder) Start(size BlitSize) {
	r.mustOwn()
	r.Ops = append(r.Ops, Op{Regs: *r.Regs(), Size: size})
	if r.inner != nil {
		r.inner.Start(size)
	}
}

// Reset drops the recorded operations.
func (r *Recorder) Reset() {
	r.Ops = r.Ops[:0]
}

// Tracer logs every blit at debug level and forwards it to inner.
type Tracer struct {
	Blitter
	logger *slog.Logger
	count  int
}

func NewTracer(inner Blitter, logger *slog.Logger) *Tracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracer{Blitter: inner, logger: logger}
}

func (t *Tracer) Start(size BlitSize) {
	regs := t.Blitter.Regs()
	t.count++
	t.logger.Debug("blit",
		"n", t.count,
		"size", size.String(),
		"con0", regs.Con0.String(),
		"bsh", regs.Con1.ShiftB(),
		"afwm", regs.AFWM, "alwm", regs.ALWM,
		"apt", regs.APt, "bpt", regs.BPt, "cpt", regs.CPt, "dpt", regs.DPt,
		"amod", regs.AMod, "bmod", regs.BMod, "cmod", regs.CMod, "dmod", regs.DMod)
	t.Blitter.Start(size)
}

// Count returns the number of blits traced.
func (t *Tracer) Count() int {
	return t.count
}
