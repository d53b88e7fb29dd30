package app

import (
	"sync"
	"time"
)

// ProgressMode selects how the cosmetic progress estimate is produced.
type ProgressMode int

const (
	// ProgressLinear ramps a percentage from elapsed wall-clock time against
	// an assumed total duration.
	ProgressLinear ProgressMode = iota
	// ProgressStaged walks the fixed generation stages, one per interval.
	ProgressStaged
)

// GenerationStages are the staged-mode labels, in order.
var GenerationStages = []string{
	"Analyzing Vision",
	"Story Development",
	"Script Generation",
	"Final Polish",
}

// ProgressConfig tunes the simulator. The backend offers no intermediate
// progress signal, so these are display parameters, not estimates of real
// work.
type ProgressConfig struct {
	// StageInterval advances staged mode by one stage per elapsed interval.
	StageInterval time.Duration
	// StagedCap holds the displayed percent once the last stage is reached,
	// so the bar never visually completes before the real answer arrives.
	StagedCap int
	// LinearDuration is the assumed total duration for linear mode.
	LinearDuration time.Duration
	// LinearCap bounds linear mode while the call is outstanding.
	LinearCap int
	// TickEvery is the cadence of the internal driver.
	TickEvery time.Duration
	// SettleHold keeps the completed bar on screen briefly before the
	// generating flag drops.
	SettleHold time.Duration
}

// RichProgressConfig matches the staged chat experience.
func RichProgressConfig() ProgressConfig {
	return ProgressConfig{
		StageInterval:  3 * time.Second,
		StagedCap:      95,
		LinearDuration: 8 * time.Second,
		LinearCap:      90,
		TickEvery:      100 * time.Millisecond,
		SettleHold:     600 * time.Millisecond,
	}
}

// SimpleProgressConfig is the reduced profile: no staged flow, a short ramp
// that may reach its ceiling while waiting.
func SimpleProgressConfig() ProgressConfig {
	return ProgressConfig{
		StageInterval:  3 * time.Second,
		StagedCap:      95,
		LinearDuration: 2 * time.Second,
		LinearCap:      100,
		TickEvery:      50 * time.Millisecond,
		SettleHold:     300 * time.Millisecond,
	}
}

// GenerationState is the transient progress snapshot the UI renders. It
// exists only for the duration of one send.
type GenerationState struct {
	Generating bool
	Percent    int
	Stage      int // 0..len(GenerationStages)
	Staged     bool
	StageLabel string
}

// ProgressSimulator fabricates a plausible progress readout while a send is
// outstanding. The periodic driver is owned by the simulator and scoped to
// one send: Finish always cancels it, on every exit path.
type ProgressSimulator struct {
	mu      sync.Mutex
	cfg     ProgressConfig
	mode    ProgressMode
	started time.Time

	generating bool
	percent    int
	stage      int

	stop chan struct{}
}

func NewProgressSimulator(cfg ProgressConfig) *ProgressSimulator {
	return &ProgressSimulator{cfg: cfg}
}

// Start resets the simulator for a new send and launches the driver. A
// driver left over from a previous send is cancelled first; at most one runs
// at a time.
func (p *ProgressSimulator) Start(mode ProgressMode, now time.Time) {
	p.mu.Lock()
	p.cancelLocked()
	p.mode = mode
	p.started = now
	p.generating = true
	p.percent = 0
	p.stage = 0
	stop := make(chan struct{})
	p.stop = stop
	tick := p.cfg.TickEvery
	p.mu.Unlock()

	go func() {
		t := time.NewTicker(tick)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-t.C:
				p.Advance(now)
			}
		}
	}()
}

// Advance recomputes the estimate for the given instant. It is a pure
// function of elapsed time, so tests drive it directly with synthetic clocks.
func (p *ProgressSimulator) Advance(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.generating || p.stop == nil {
		return
	}

	elapsed := now.Sub(p.started)
	switch p.mode {
	case ProgressStaged:
		stage := int(elapsed / p.cfg.StageInterval)
		if stage > len(GenerationStages) {
			stage = len(GenerationStages)
		}
		p.stage = stage
		percent := stage * 100 / len(GenerationStages)
		if percent > p.cfg.StagedCap {
			percent = p.cfg.StagedCap
		}
		p.percent = percent
	default:
		percent := int(elapsed * 100 / p.cfg.LinearDuration)
		if percent > p.cfg.LinearCap {
			percent = p.cfg.LinearCap
		}
		p.percent = percent
	}
}

// Finish cancels the driver and forces the terminal display state: percent
// 100 and, in staged mode, the final stage. The generating flag stays up for
// the display hold; Idle drops it.
func (p *ProgressSimulator) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
	if !p.generating {
		return
	}
	p.percent = 100
	if p.mode == ProgressStaged {
		p.stage = len(GenerationStages)
	}
}

// Idle resets to the not-generating state. Also cancels the driver, so it is
// safe to call on teardown regardless of where the send got to.
func (p *ProgressSimulator) Idle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelLocked()
	p.generating = false
}

func (p *ProgressSimulator) cancelLocked() {
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

// Snapshot returns the state the UI should render right now.
func (p *ProgressSimulator) Snapshot() GenerationState {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := GenerationState{
		Generating: p.generating,
		Percent:    p.percent,
		Stage:      p.stage,
		Staged:     p.mode == ProgressStaged,
	}
	if st.Staged {
		i := p.stage
		if i >= len(GenerationStages) {
			i = len(GenerationStages) - 1
		}
		st.StageLabel = GenerationStages[i]
	}
	return st
}

// SettleHold reports how long the completed bar should stay on screen.
func (p *ProgressSimulator) SettleHold() time.Duration {
	return p.cfg.SettleHold
}
