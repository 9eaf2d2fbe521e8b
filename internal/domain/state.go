package domain

import "time"

// Message represents a single entry in a session's timeline (user or assistant).
type Message struct {
	ID        MessageID `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Agent     AgentID   `json:"agent,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

// UserProfile holds the attributes gathered by the health agent.
type UserProfile struct {
	Name          string        `json:"name,omitempty"`
	Age           int           `json:"age,omitempty"`
	Gender        Gender        `json:"gender,omitempty"`
	WeightKg      float64       `json:"weight_kg,omitempty"`
	HeightCm      float64       `json:"height_cm,omitempty"`
	ActivityLevel ActivityLevel `json:"activity_level,omitempty"`
	Goal          FitnessGoal   `json:"goal,omitempty"`
}

// Complete reports whether every field needed for the metric calculations is set.
func (p *UserProfile) Complete() bool {
	if p == nil {
		return false
	}
	return p.Age > 0 && p.Gender != "" && p.WeightKg > 0 && p.HeightCm > 0 &&
		p.ActivityLevel != "" && p.Goal != ""
}

// HealthMetrics are the derived values computed from a complete profile.
type HealthMetrics struct {
	BMI             float64   `json:"bmi"`
	BMICategory     string    `json:"bmi_category"`
	TDEE            float64   `json:"tdee"`
	TargetCalories  int       `json:"target_calories"`
	ProteinG        int       `json:"protein_g"`
	CarbsG          int       `json:"carbs_g"`
	FatG            int       `json:"fat_g"`
	RiskLevel       string    `json:"risk_level,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
	CalculatedAt    Timestamp `json:"calculated_at"`
}

// DietaryPreferences is the typed payload filled by the nutrition agent.
type DietaryPreferences struct {
	ProteinPreferences []string          `json:"protein_preferences,omitempty"`
	ProteinFrequency   map[string]string `json:"protein_frequency,omitempty"`
	CarbPreferences    []string          `json:"carb_preferences,omitempty"`
	CarbFrequency      map[string]string `json:"carb_frequency,omitempty"`
	FatPreferences     []string          `json:"fat_preferences,omitempty"`
	FatFrequency       map[string]string `json:"fat_frequency,omitempty"`
	Dislikes           []string          `json:"dislikes,omitempty"`
	Restrictions       []string          `json:"restrictions,omitempty"`
	Complete           bool              `json:"complete"`
}

// FitnessConstraints is the typed payload filled by the fitness agent.
type FitnessConstraints struct {
	DaysPerWeek int      `json:"days_per_week,omitempty"`
	Equipment   []string `json:"equipment,omitempty"`
	Injuries    []string `json:"injuries,omitempty"`
	Complete    bool     `json:"complete"`
}

// ConversationState is the single record threaded through every agent call.
// It is owned by the caller's session and mutated by exactly one agent per turn.
type ConversationState struct {
	SessionID SessionID `json:"session_id"`
	UserID    UserID    `json:"user_id"`

	Messages []*Message `json:"messages"`

	// ActiveAgent is set while a slot-filling session is open for that agent.
	ActiveAgent AgentID      `json:"active_agent,omitempty"`
	Session     *SlotSession `json:"slot_session,omitempty"`

	Profile            *UserProfile        `json:"profile,omitempty"`
	HealthMetrics      *HealthMetrics      `json:"health_metrics,omitempty"`
	DietaryPreferences *DietaryPreferences `json:"dietary_preferences,omitempty"`
	FitnessConstraints *FitnessConstraints `json:"fitness_constraints,omitempty"`

	Artifacts map[ArtifactKind][]*Artifact `json:"artifacts,omitempty"`

	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// NewConversationState creates an empty state for a fresh session.
func NewConversationState(sessionID SessionID, userID UserID, now time.Time) *ConversationState {
	return &ConversationState{
		SessionID: sessionID,
		UserID:    userID,
		Artifacts: make(map[ArtifactKind][]*Artifact),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendMessage adds a message to the timeline and refreshes UpdatedAt.
func (s *ConversationState) AppendMessage(msg *Message) {
	s.Messages = append(s.Messages, msg)
	s.Touch(msg.CreatedAt)
}

// Touch moves UpdatedAt forward. UpdatedAt never goes backwards.
func (s *ConversationState) Touch(now time.Time) {
	if now.After(s.UpdatedAt) {
		s.UpdatedAt = now
	}
}

// History returns up to limit most recent messages (all when limit <= 0).
func (s *ConversationState) History(limit int) []*Message {
	if limit > 0 && len(s.Messages) > limit {
		return s.Messages[len(s.Messages)-limit:]
	}
	return s.Messages
}

// BeginSlotSession opens a slot-filling session and marks the agent active.
func (s *ConversationState) BeginSlotSession(agent AgentID, now time.Time) *SlotSession {
	s.ActiveAgent = agent
	s.Session = NewSlotSession(agent)
	s.Touch(now)
	return s.Session
}

// EndSlotSession discards the slot session and clears the active agent.
func (s *ConversationState) EndSlotSession(now time.Time) {
	s.ActiveAgent = ""
	s.Session = nil
	s.Touch(now)
}

// Clone returns a deep copy of the state. Agents work on a clone so a failed
// turn leaves the original untouched.
func (s *ConversationState) Clone() *ConversationState {
	if s == nil {
		return nil
	}
	c := *s

	c.Messages = make([]*Message, len(s.Messages))
	for i, m := range s.Messages {
		mc := *m
		c.Messages[i] = &mc
	}

	if s.Session != nil {
		c.Session = s.Session.Clone()
	}
	if s.Profile != nil {
		p := *s.Profile
		c.Profile = &p
	}
	if s.HealthMetrics != nil {
		hm := *s.HealthMetrics
		hm.Recommendations = append([]string(nil), s.HealthMetrics.Recommendations...)
		c.HealthMetrics = &hm
	}
	if s.DietaryPreferences != nil {
		c.DietaryPreferences = s.DietaryPreferences.clone()
	}
	if s.FitnessConstraints != nil {
		fc := *s.FitnessConstraints
		fc.Equipment = append([]string(nil), s.FitnessConstraints.Equipment...)
		fc.Injuries = append([]string(nil), s.FitnessConstraints.Injuries...)
		c.FitnessConstraints = &fc
	}

	c.Artifacts = make(map[ArtifactKind][]*Artifact, len(s.Artifacts))
	for kind, list := range s.Artifacts {
		copied := make([]*Artifact, len(list))
		for i, a := range list {
			copied[i] = a.clone()
		}
		c.Artifacts[kind] = copied
	}
	return &c
}

func (d *DietaryPreferences) clone() *DietaryPreferences {
	c := *d
	c.ProteinPreferences = append([]string(nil), d.ProteinPreferences...)
	c.CarbPreferences = append([]string(nil), d.CarbPreferences...)
	c.FatPreferences = append([]string(nil), d.FatPreferences...)
	c.Dislikes = append([]string(nil), d.Dislikes...)
	c.Restrictions = append([]string(nil), d.Restrictions...)
	c.ProteinFrequency = cloneStringMap(d.ProteinFrequency)
	c.CarbFrequency = cloneStringMap(d.CarbFrequency)
	c.FatFrequency = cloneStringMap(d.FatFrequency)
	return &c
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Exclusions merges dislikes and restrictions into one hard-exclusion list.
func (d *DietaryPreferences) Exclusions() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.Dislikes)+len(d.Restrictions))
	out = append(out, d.Dislikes...)
	out = append(out, d.Restrictions...)
	return out
}
