// Package dialogue routes each chat turn through greeting detection, intent
// classification and the matching handler, then commits the session.
package dialogue

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"fashion-recommender-be/internal/constant"
	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/apperr"
	"fashion-recommender-be/pkg/events"
	"fashion-recommender-be/pkg/nlu"
	"fashion-recommender-be/pkg/recommend/response"
	"fashion-recommender-be/pkg/recommend/search"
	"fashion-recommender-be/pkg/recommend/session"
	"fashion-recommender-be/pkg/similarity"
	"fashion-recommender-be/pkg/store"
)

const module = "DIALOGUE"

// Language is the slice of the NLU client the dialogue needs.
type Language interface {
	IsGreeting(ctx context.Context, text string) (bool, error)
	ClassifyIntent(ctx context.Context, text string, ic nlu.IntentContext) (*nlu.Decision, error)
	ExtractCustomerID(ctx context.Context, text string) (*nlu.CustomerIDResult, error)
	ResolveSelection(ctx context.Context, text string, shown []store.Product) (int, error)
	Compose(ctx context.Context, task nlu.Task, text string, values map[string]interface{}) (string, error)
}

type Searcher interface {
	Search(ctx context.Context, raw store.FilterSet, notify search.Notifier) (*search.Outcome, error)
}

type Catalog interface {
	FindCustomer(ctx context.Context, customerID int64) (*store.Customer, error)
	FindProduct(ctx context.Context, productID int64) (*store.Product, error)
	HistoryProducts(ctx context.Context, customerID int64) ([]int64, error)
}

type IndexSource interface {
	Current() (*similarity.Index, bool)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Config struct {
	NeighbourPool int   // Neighbours fetched from the index per similar query
	SampleSize    int   // Products shown per gallery
	Seed          int64 // Zero seeds from the clock
}

func DefaultConfig() Config {
	return Config{NeighbourPool: 10, SampleSize: response.MaxGalleryItems}
}

type Orchestrator struct {
	sessions  *session.Manager
	language  Language
	searcher  Searcher
	catalog   Catalog
	index     IndexSource
	publisher EventPublisher
	logger    logger.ILogger
	config    Config
	now       func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand

	handlers map[Intent]handlerFunc
}

type Option func(*Orchestrator)

func WithPublisher(p EventPublisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func NewOrchestrator(
	sessions *session.Manager,
	language Language,
	searcher Searcher,
	catalog Catalog,
	index IndexSource,
	cfg Config,
	log logger.ILogger,
	opts ...Option,
) *Orchestrator {
	def := DefaultConfig()
	if cfg.NeighbourPool <= 0 {
		cfg.NeighbourPool = def.NeighbourPool
	}
	if cfg.SampleSize <= 0 || cfg.SampleSize > response.MaxGalleryItems {
		cfg.SampleSize = def.SampleSize
	}

	o := &Orchestrator{
		sessions: sessions,
		language: language,
		searcher: searcher,
		catalog:  catalog,
		index:    index,
		logger:   log,
		config:   cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = o.now().UnixNano()
	}
	o.rng = rand.New(rand.NewSource(seed))

	o.handlers = map[Intent]handlerFunc{
		IntentNone:     (*Orchestrator).handleNone,
		IntentIdentify: (*Orchestrator).handleIdentify,
		IntentSearch:   (*Orchestrator).handleSearch,
		IntentDetail:   (*Orchestrator).handleDetail,
		IntentSimilar:  (*Orchestrator).handleSimilar,
		IntentReset:    (*Orchestrator).handleReset,
	}
	return o
}

// turn carries the working copy of the session through one handler. The
// stored session is only replaced when the handler returns nil.
type turn struct {
	ctx      context.Context
	session  *store.Session
	text     string
	out      []response.OutboundMessage
	events   []events.Event
	dirty    bool
	replaced bool
}

type handlerFunc func(o *Orchestrator, t *turn, d *nlu.Decision) error

func (t *turn) say(msgs ...response.OutboundMessage) {
	t.out = append(t.out, msgs...)
}

// HandleTurn processes one user message for sessionID. Turns on the same
// session run one at a time; the returned messages are never empty.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, text string) []response.OutboundMessage {
	unlock, err := o.sessions.Lock(ctx, sessionID)
	if err != nil {
		o.logger.Warn(module, "Turn abandoned while waiting for the session", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return []response.OutboundMessage{response.Text(constant.ReplyServiceDown)}
	}
	defer unlock()

	t := &turn{ctx: ctx, session: o.sessions.Get(sessionID), text: strings.TrimSpace(text)}

	if handled := o.handleCommand(t); !handled {
		if err := o.dispatch(t); err != nil {
			o.logger.Warn(module, "Turn failed", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
			t.say(response.Text(o.failureReply(err)))
			return t.out
		}
	}

	if t.dirty && !t.replaced {
		o.sessions.Save(t.session)
	}
	o.publish(ctx, t.events)

	if len(t.out) == 0 {
		t.say(response.Text(constant.ReplyOutOfDomain))
	}
	return t.out
}

func (o *Orchestrator) handleCommand(t *turn) bool {
	fields := strings.Fields(t.text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case constant.CommandStart:
		t.say(response.Text(constant.ReplyStart))
	case constant.CommandReset:
		_ = o.handleReset(t, nil)
	case constant.CommandEstado, constant.CommandStatus:
		t.say(response.Textf(constant.ReplyActiveSessions, o.sessions.Count()))
	default:
		return false
	}
	return true
}

func (o *Orchestrator) dispatch(t *turn) error {
	if t.text == "" {
		t.say(response.Text(constant.ReplyGreeting))
		return nil
	}

	greeting, err := o.language.IsGreeting(t.ctx, t.text)
	if err != nil {
		o.logger.Warn(module, "Greeting check failed, classifying anyway", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if greeting {
		t.say(response.Text(o.compose(t, nlu.TaskGreetingReply, nil, constant.ReplyGreeting)))
		return nil
	}

	decision, err := o.language.ClassifyIntent(t.ctx, t.text, intentContext(t.session))
	if err != nil {
		return err
	}

	intent := ParseIntent(decision.Action)
	o.logger.Info(module, "Dispatching turn", map[string]interface{}{
		"session_id": t.session.ID,
		"intent":     intent.String(),
		"state":      t.session.State(),
	})
	return o.handlers[intent](o, t, decision)
}

func intentContext(s *store.Session) nlu.IntentContext {
	ic := nlu.IntentContext{
		State:        s.State(),
		CustomerName: s.CustomerName,
		Filters:      s.ActiveFilters,
	}
	if s.BaseProduct != nil {
		ic.BaseProduct = s.BaseProduct.DisplayName
	}
	for _, p := range s.ShownProducts {
		ic.Shown = append(ic.Shown, p.DisplayName)
	}
	return ic
}

func (o *Orchestrator) failureReply(err error) string {
	switch {
	case errors.Is(err, apperr.ErrAmbiguous):
		return constant.ReplyNotUnderstood
	case errors.Is(err, apperr.ErrNotFound):
		return constant.ReplyNotFound
	case errors.Is(err, apperr.ErrExhausted):
		return constant.NoteNoResults
	default:
		return constant.ReplyServiceDown
	}
}

// compose asks the NLU for a sentence and falls back to fallback on any error.
func (o *Orchestrator) compose(t *turn, task nlu.Task, values map[string]interface{}, fallback string) string {
	text, err := o.language.Compose(t.ctx, task, t.text, values)
	if err != nil || strings.TrimSpace(text) == "" {
		return fallback
	}
	return strings.TrimSpace(text)
}

func (o *Orchestrator) emit(t *turn, eventType string, data map[string]interface{}) {
	data["session_id"] = t.session.ID
	t.events = append(t.events, events.New(eventType, data, o.now()))
}

func (o *Orchestrator) publish(ctx context.Context, evts []events.Event) {
	if o.publisher == nil {
		return
	}
	for _, evt := range evts {
		if err := o.publisher.Publish(ctx, evt); err != nil {
			o.logger.Warn(module, "Failed to publish event", map[string]interface{}{
				"type":  evt.EventType(),
				"error": err.Error(),
			})
		}
	}
}

// pick returns up to m distinct positions in [0, n), ascending.
func (o *Orchestrator) pick(n, m int) []int {
	if m > n {
		m = n
	}
	o.rngMu.Lock()
	perm := o.rng.Perm(n)
	o.rngMu.Unlock()

	picked := perm[:m]
	sort.Ints(picked)
	return picked
}

func (o *Orchestrator) intn(n int) int {
	o.rngMu.Lock()
	defer o.rngMu.Unlock()
	return o.rng.Intn(n)
}

func (o *Orchestrator) sampleProducts(products []store.Product) []store.Product {
	picked := o.pick(len(products), o.config.SampleSize)
	out := make([]store.Product, len(picked))
	for i, pos := range picked {
		out[i] = products[pos].Clone()
	}
	return out
}
