package graph

import (
	"errors"

	"github.com/magiclab/magicprompt/graph/emit"
)

// Session drives a single traversal of a prompt graph.
//
// It owns one Context, tracks the current stage, and is the surface a
// front-end (terminal or otherwise) steps through: Submit the current
// stage's answers, inspect Next, Advance to an eligible stage.
//
// A session belongs to one logical user session and must not be shared
// across goroutines without external locking. The underlying graph is
// immutable and may back any number of concurrent sessions.
type Session struct {
	id      string
	graph   *PromptGraph
	ctx     *Context
	current string
	step    int
	emitter emit.Emitter
	metrics *Metrics
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithID sets the session identifier carried on emitted events.
func WithID(id string) SessionOption {
	return func(s *Session) { s.id = id }
}

// WithPreset sets the context's preset label for this session.
func WithPreset(preset string) SessionOption {
	return func(s *Session) { s.ctx.Preset = preset }
}

// WithEmitter sets the observability emitter. Default: emit.NullEmitter.
func WithEmitter(e emit.Emitter) SessionOption {
	return func(s *Session) {
		if e != nil {
			s.emitter = e
		}
	}
}

// WithMetrics attaches Prometheus session metrics.
func WithMetrics(m *Metrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// NewSession creates a session positioned at the graph's entrypoint with an
// empty context.
func NewSession(g *PromptGraph, opts ...SessionOption) *Session {
	s := &Session{
		id:      "session",
		graph:   g,
		ctx:     NewContext(),
		current: g.Entrypoint(),
		emitter: emit.NewNullEmitter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Graph returns the graph this session traverses.
func (s *Session) Graph() *PromptGraph { return s.graph }

// Context returns the session's traversal context.
//
// The context is exposed for read access (summaries, condition debugging);
// mutate it only through Submit.
func (s *Session) Context() *Context { return s.ctx }

// Step returns how many advances the session has made.
func (s *Session) Step() int { return s.step }

// Current returns the stage the session is positioned on.
func (s *Session) Current() Node {
	node, _ := s.graph.Node(s.current)
	return node
}

// Next returns the stages currently reachable from the session's position,
// in edge declaration order. An empty result means the session is terminal
// for its current context.
func (s *Session) Next() []Node {
	return s.graph.NextNodes(s.current, s.ctx)
}

// Terminal reports whether no stage is currently reachable.
func (s *Session) Terminal() bool {
	return len(s.Next()) == 0
}

// Submit stores the payload as the current stage's answer.
//
// Transform failures propagate unchanged (as a TransformError) and leave the
// context untouched; resubmitting after a failure is always safe.
func (s *Session) Submit(payload map[string]string) error {
	node := s.Current()

	if err := s.ctx.StoreAnswer(node, payload); err != nil {
		var terr *TransformError
		if errors.As(err, &terr) {
			s.metrics.TransformFailed(terr.Stage, terr.Transform)
			s.emitter.Emit(emit.Event{
				SessionID: s.id,
				Step:      s.step,
				StageID:   node.ID,
				Msg:       "transform_failed",
				Meta: map[string]interface{}{
					"transform": terr.Transform,
					"error":     terr.Cause.Error(),
				},
			})
		}
		return err
	}

	s.metrics.AnswerStored(node.ID)
	s.emitter.Emit(emit.Event{
		SessionID: s.id,
		Step:      s.step,
		StageID:   node.ID,
		Msg:       "answer_stored",
		Meta: map[string]interface{}{
			"fields": len(s.ctx.Answers[node.ID]),
		},
	})
	return nil
}

// Advance moves the session to stageID.
//
// The target must be reachable right now: an edge from the current stage to
// stageID whose condition holds for the context. Advancing anywhere else is
// a GraphError with code STAGE_NOT_ELIGIBLE.
func (s *Session) Advance(stageID string) error {
	var chosen *Edge
	for _, e := range s.graph.edges {
		if e.From != s.current || e.To != stageID {
			continue
		}
		if e.When.Eval(s.ctx) {
			edge := e
			chosen = &edge
			break
		}
	}
	if chosen == nil {
		return &GraphError{
			Message: "stage " + stageID + " is not reachable from " + s.current,
			Code:    "STAGE_NOT_ELIGIBLE",
		}
	}

	from := s.current
	s.current = stageID
	s.step++

	shortcut := chosen.When != nil
	s.metrics.StageAdvanced(from, stageID, shortcut)
	s.emitter.Emit(emit.Event{
		SessionID: s.id,
		Step:      s.step,
		StageID:   stageID,
		Msg:       "stage_advanced",
		Meta: map[string]interface{}{
			"from":     from,
			"shortcut": shortcut,
		},
	})
	return nil
}

// SummaryEntry is one stage's representative value for downstream
// summarization.
type SummaryEntry struct {
	StageID string
	Layer   string
	Key     string
	Value   string
}

// Summary collects, in display order, the summary-key value of every
// answered stage that declares one.
func (s *Session) Summary() []SummaryEntry {
	var entries []SummaryEntry
	for _, node := range s.graph.Stages() {
		if node.SummaryKey == "" {
			continue
		}
		answer, ok := s.ctx.Answer(node.ID)
		if !ok {
			continue
		}
		entries = append(entries, SummaryEntry{
			StageID: node.ID,
			Layer:   node.Layer,
			Key:     node.SummaryKey,
			Value:   answer[node.SummaryKey],
		})
	}
	return entries
}

// Reset discards all answers and returns the session to the entrypoint.
// The preset label survives the reset.
func (s *Session) Reset() {
	preset := s.ctx.Preset
	s.ctx = NewContext()
	s.ctx.Preset = preset
	s.current = s.graph.Entrypoint()
	s.step = 0

	s.emitter.Emit(emit.Event{
		SessionID: s.id,
		Msg:       "session_reset",
	})
}
