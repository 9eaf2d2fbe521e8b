package domain

// SlotName identifies a single piece of structured information an agent
// gathers from conversation.
type SlotName string

// SlotKind controls how newly extracted values merge into the session.
type SlotKind string

const (
	// SlotScalar values are replaced: last non-empty answer wins.
	SlotScalar SlotKind = "scalar"
	// SlotAccumulating values collect key/value pairs across answers
	// (e.g. food -> how often it is eaten) instead of overwriting.
	SlotAccumulating SlotKind = "accumulating"
)

// Slot is one named entry of a schema. Order in the schema is the static
// priority order used when picking the next question.
type Slot struct {
	Name     SlotName
	Required bool
	Kind     SlotKind
	// Prompt is the question the agent asks when this slot is unfilled.
	Prompt string
	// Hint guides the extraction capability (expected format, units).
	Hint string
}

// SlotSchema is the static per-agent definition of what to collect.
type SlotSchema struct {
	Agent AgentID
	Slots []Slot
	// Greeting opens the dialog on the first invocation, before the first
	// question.
	Greeting string
	// MinQuestions guards against a lucky one-shot answer ending the
	// dialog prematurely.
	MinQuestions int
	// MaxQuestions is the hard cap after which the session exhausts.
	MaxQuestions int
}

// Slot returns the slot with the given name, if declared.
func (sc SlotSchema) Slot(name SlotName) (Slot, bool) {
	for _, s := range sc.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

// SlotValue is the current content of one slot.
type SlotValue struct {
	Text string `json:"text,omitempty"`
	// Pairs holds accumulated key/value metadata for accumulating slots.
	Pairs map[string]string `json:"pairs,omitempty"`
}

// Empty reports whether the slot holds no usable content.
func (v SlotValue) Empty() bool {
	return v.Text == "" && len(v.Pairs) == 0
}

// SlotValues maps slot names to their current values.
type SlotValues map[SlotName]SlotValue

// Clone returns a deep copy.
func (vs SlotValues) Clone() SlotValues {
	out := make(SlotValues, len(vs))
	for name, v := range vs {
		c := v
		c.Pairs = cloneStringMap(v.Pairs)
		out[name] = c
	}
	return out
}

// Filled reports whether the named slot holds a value.
func (vs SlotValues) Filled(name SlotName) bool {
	v, ok := vs[name]
	return ok && !v.Empty()
}

// RequiredFilled reports whether every required slot of the schema is filled.
func (sc SlotSchema) RequiredFilled(vs SlotValues) bool {
	for _, s := range sc.Slots {
		if s.Required && !vs.Filled(s.Name) {
			return false
		}
	}
	return true
}

// SlotSession is the ephemeral state of one slot-filling dialog. It lives in
// ConversationState.Session while the owning agent is active and is discarded
// once the agent produces its artifact.
type SlotSession struct {
	Agent          AgentID    `json:"agent"`
	Values         SlotValues `json:"values"`
	QuestionsAsked int        `json:"questions_asked"`
	Exhausted      bool       `json:"exhausted,omitempty"`
	// AskedPrompts records every question already posed so the engine
	// never repeats an identical one.
	AskedPrompts []string `json:"asked_prompts,omitempty"`
}

// NewSlotSession creates an empty session for the agent.
func NewSlotSession(agent AgentID) *SlotSession {
	return &SlotSession{
		Agent:  agent,
		Values: make(SlotValues),
	}
}

// Clone returns a deep copy.
func (s *SlotSession) Clone() *SlotSession {
	c := *s
	c.Values = s.Values.Clone()
	c.AskedPrompts = append([]string(nil), s.AskedPrompts...)
	return &c
}

// Asked reports whether the exact prompt was already posed in this session.
func (s *SlotSession) Asked(prompt string) bool {
	for _, p := range s.AskedPrompts {
		if p == prompt {
			return true
		}
	}
	return false
}
