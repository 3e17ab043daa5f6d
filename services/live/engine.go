// Package live holds the in-memory live-channel state machine: which
// channels exist, which channel is active, and which program on it is
// playing. Two timers keep the state honest while automatic advancement is
// enabled: a fast tick that follows wall-clock time across program
// boundaries, and a slower refetch that reconciles against fresh schedule
// data from upstream.
package live

import (
	"context"
	"log"
	"sync"
	"time"

	"streamglass/models"
	"streamglass/services/epg"
)

const (
	defaultTickInterval    = 5 * time.Second
	defaultRefetchInterval = 5 * time.Minute
)

// Options configures an Engine.
type Options struct {
	// InitialChannelID selects the starting channel when present in the
	// loaded channel list; otherwise the first channel is used.
	InitialChannelID string

	// AutoAdvance enables the tick and refetch loops.
	AutoAdvance bool

	TickInterval    time.Duration
	RefetchInterval time.Duration

	// Now is swappable in tests. Defaults to time.Now.
	Now func() time.Time
}

// Engine owns the live selection for one playlist of channel items.
type Engine struct {
	client *epg.Client
	items  []models.PlaylistItem

	initialChannelID string
	autoAdvance      bool
	tickInterval     time.Duration
	refetchInterval  time.Duration
	now              func() time.Time

	mu              sync.RWMutex
	channels        []models.Channel
	activeChannelID string
	activeProgramID string
	manual          bool // explicit program choice pinned by the user
	refreshing      bool // refetch in flight, do not start another

	runMu   sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewEngine creates an engine for the given channel items.
func NewEngine(client *epg.Client, items []models.PlaylistItem, opts Options) *Engine {
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	if opts.RefetchInterval <= 0 {
		opts.RefetchInterval = defaultRefetchInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		client:           client,
		items:            items,
		initialChannelID: opts.InitialChannelID,
		autoAdvance:      opts.AutoAdvance,
		tickInterval:     opts.TickInterval,
		refetchInterval:  opts.RefetchInterval,
		now:              opts.Now,
	}
}

// Start loads the initial channel list, selects the starting channel and
// program, and launches the advancement loops when enabled.
func (e *Engine) Start(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.running {
		return nil
	}

	e.ctx, e.cancel = context.WithCancel(ctx)

	if err := e.Refresh(e.ctx); err != nil {
		e.cancel()
		return err
	}

	e.running = true

	if e.autoAdvance {
		e.wg.Add(2)
		go e.tickLoop()
		go e.refetchLoop()
	}

	log.Printf("[live] selection engine started with %d channel(s)", len(e.items))
	return nil
}

// Stop cancels the loops and waits for them to drain.
func (e *Engine) Stop() {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if !e.running {
		return
	}

	e.cancel()
	e.wg.Wait()
	e.running = false
	log.Println("[live] selection engine stopped")
}

// Snapshot returns the current read model. Channel and Program are nil when
// nothing is selected or nothing is live.
func (e *Engine) Snapshot() models.LiveSelection {
	e.mu.RLock()
	defer e.mu.RUnlock()

	channels := make([]models.Channel, len(e.channels))
	copy(channels, e.channels)

	sel := models.LiveSelection{Channels: channels}

	ch := channelByID(channels, e.activeChannelID)
	if ch == nil {
		return sel
	}
	chCopy := *ch
	sel.Channel = &chCopy

	if e.activeProgramID != "" {
		if p, ok := ch.ProgramByID(e.activeProgramID); ok {
			sel.Program = &p
		}
	}
	return sel
}

// SetActiveChannel makes channelID the active channel. An unknown channel id
// is a silent no-op so stale UI callbacks cannot clobber a valid selection.
// When programID is given and found on the channel it is pinned and takes
// precedence over live tracking until a refetch drops it from the schedule;
// otherwise the live program for the current wall-clock time is selected.
func (e *Engine) SetActiveChannel(channelID, programID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := channelByID(e.channels, channelID)
	if ch == nil {
		return
	}

	e.activeChannelID = ch.ID

	if programID != "" {
		if _, ok := ch.ProgramByID(programID); ok {
			e.activeProgramID = programID
			e.manual = true
			return
		}
	}

	e.manual = false
	e.selectLiveProgramLocked(*ch)
}

// Refresh refetches every channel's schedule and reconciles the selection
// against the fresh data. A refresh already in flight is not restarted.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	if e.refreshing {
		e.mu.Unlock()
		return nil
	}
	e.refreshing = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.refreshing = false
		e.mu.Unlock()
	}()

	channels := e.client.GetSchedules(ctx, e.items)
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	e.channels = channels
	e.reconcileLocked()
	e.mu.Unlock()

	return nil
}

// reconcileLocked re-derives the active channel and program after the
// channel list has been replaced.
//
// The program rule is identity-preserving: if the previously selected
// program's id still exists on the active channel it stays selected, even if
// its own start or end times changed. Only when the id is gone does the
// selection fall back to deriving the live program from wall-clock time.
func (e *Engine) reconcileLocked() {
	wantID := e.activeChannelID
	if wantID == "" {
		wantID = e.initialChannelID
	}

	ch := channelByID(e.channels, wantID)
	if ch == nil && len(e.channels) > 0 {
		ch = &e.channels[0]
	}
	if ch == nil {
		e.activeChannelID = ""
		e.activeProgramID = ""
		e.manual = false
		return
	}

	e.activeChannelID = ch.ID

	if e.activeProgramID != "" {
		if _, ok := ch.ProgramByID(e.activeProgramID); ok {
			return
		}
		e.manual = false
	}

	e.selectLiveProgramLocked(*ch)
}

// selectLiveProgramLocked points the selection at the program whose window
// contains now, or clears it when nothing is live.
func (e *Engine) selectLiveProgramLocked(ch models.Channel) {
	if p, ok := ch.LiveProgramAt(e.now()); ok {
		e.activeProgramID = p.ID
	} else {
		e.activeProgramID = ""
	}
}

// tick re-derives the live program as wall-clock time crosses a program
// boundary. A manually pinned program is left alone.
func (e *Engine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.manual {
		return
	}
	if ch := channelByID(e.channels, e.activeChannelID); ch != nil {
		e.selectLiveProgramLocked(*ch)
	}
}

func (e *Engine) tickLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

func (e *Engine) refetchLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.refetchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			if err := e.Refresh(e.ctx); err != nil && e.ctx.Err() == nil {
				log.Printf("[live] schedule refetch failed: %v", err)
			}
		}
	}
}

func channelByID(channels []models.Channel, id string) *models.Channel {
	if id == "" {
		return nil
	}
	for i := range channels {
		if channels[i].ID == id {
			return &channels[i]
		}
	}
	return nil
}
