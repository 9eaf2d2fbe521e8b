package domain

import "time"

// ArtifactKind identifies the domain an artifact belongs to.
type ArtifactKind string

const (
	ArtifactMealPlan      ArtifactKind = "meal_plan"
	ArtifactWorkoutPlan   ArtifactKind = "workout_plan"
	ArtifactDailySchedule ArtifactKind = "daily_schedule"
	ArtifactRecipe        ArtifactKind = "recipe"
)

// ArtifactStatus tracks an artifact's lifecycle. At most one artifact per
// kind is active at a time; activating a new one supersedes the prior.
type ArtifactStatus string

const (
	ArtifactDraft      ArtifactStatus = "draft"
	ArtifactActive     ArtifactStatus = "active"
	ArtifactSuperseded ArtifactStatus = "superseded"
)

// Artifact is a structured output produced by an agent. Exactly one of the
// payload pointers matching Kind is set.
type Artifact struct {
	Kind      ArtifactKind   `json:"kind"`
	Status    ArtifactStatus `json:"status"`
	Partial   bool           `json:"partial,omitempty"` // best-effort, produced from an exhausted session
	CreatedAt Timestamp      `json:"created_at"`

	MealPlan      *MealPlan      `json:"meal_plan,omitempty"`
	WorkoutPlan   *WorkoutPlan   `json:"workout_plan,omitempty"`
	DailySchedule *DailySchedule `json:"daily_schedule,omitempty"`
	Recipe        *Recipe        `json:"recipe,omitempty"`
}

func (a *Artifact) clone() *Artifact {
	c := *a
	if a.MealPlan != nil {
		mp := *a.MealPlan
		mp.Meals = append([]Meal(nil), a.MealPlan.Meals...)
		c.MealPlan = &mp
	}
	if a.WorkoutPlan != nil {
		wp := *a.WorkoutPlan
		wp.Workouts = append([]Workout(nil), a.WorkoutPlan.Workouts...)
		c.WorkoutPlan = &wp
	}
	if a.DailySchedule != nil {
		ds := *a.DailySchedule
		ds.MealTimes = cloneStringMap(a.DailySchedule.MealTimes)
		ds.HydrationReminders = append([]string(nil), a.DailySchedule.HydrationReminders...)
		c.DailySchedule = &ds
	}
	if a.Recipe != nil {
		r := *a.Recipe
		r.Ingredients = append([]string(nil), a.Recipe.Ingredients...)
		r.Steps = append([]string(nil), a.Recipe.Steps...)
		c.Recipe = &r
	}
	return &c
}

// PutArtifact activates the artifact, superseding any previously active one
// of the same kind.
func (s *ConversationState) PutArtifact(a *Artifact, now time.Time) {
	if s.Artifacts == nil {
		s.Artifacts = make(map[ArtifactKind][]*Artifact)
	}
	for _, prev := range s.Artifacts[a.Kind] {
		if prev.Status == ArtifactActive {
			prev.Status = ArtifactSuperseded
		}
	}
	a.Status = ArtifactActive
	a.CreatedAt = now
	s.Artifacts[a.Kind] = append(s.Artifacts[a.Kind], a)
	s.Touch(now)
}

// ActiveArtifact returns the active artifact of the given kind, or nil.
func (s *ConversationState) ActiveArtifact(kind ArtifactKind) *Artifact {
	for _, a := range s.Artifacts[kind] {
		if a.Status == ArtifactActive {
			return a
		}
	}
	return nil
}

// Meal is one entry of a daily meal plan.
type Meal struct {
	Type        string   `json:"meal_type"` // breakfast, lunch, dinner, snack
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Calories    int      `json:"calories"`
	ProteinG    int      `json:"protein_g"`
	CarbsG      int      `json:"carbs_g"`
	FatG        int      `json:"fat_g"`
	Foods       []string `json:"foods,omitempty"`
}

// MealPlan is a full day of meals with nutritional totals.
type MealPlan struct {
	Meals         []Meal `json:"meals"`
	TotalCalories int    `json:"total_calories"`
	TotalProteinG int    `json:"total_protein_g"`
	TotalCarbsG   int    `json:"total_carbs_g"`
	TotalFatG     int    `json:"total_fat_g"`
}

// Recalculate refreshes the totals from the individual meals.
func (p *MealPlan) Recalculate() {
	p.TotalCalories, p.TotalProteinG, p.TotalCarbsG, p.TotalFatG = 0, 0, 0, 0
	for _, m := range p.Meals {
		p.TotalCalories += m.Calories
		p.TotalProteinG += m.ProteinG
		p.TotalCarbsG += m.CarbsG
		p.TotalFatG += m.FatG
	}
}

// Exercise is a single movement inside a workout.
type Exercise struct {
	Name string `json:"name"`
	Sets int    `json:"sets"`
	Reps string `json:"reps"`
	Rest string `json:"rest,omitempty"`
}

// Workout is one training day.
type Workout struct {
	Day       string     `json:"day"`
	Focus     string     `json:"focus"`
	Exercises []Exercise `json:"exercises"`
}

// WorkoutPlan is a weekly training program.
type WorkoutPlan struct {
	ProgramType string    `json:"program_type"`
	DaysPerWeek int       `json:"days_per_week"`
	Workouts    []Workout `json:"workouts"`
}

// DailySchedule lays out timing recommendations for a typical day.
type DailySchedule struct {
	WakeTime           string            `json:"wake_time,omitempty"`
	SleepTime          string            `json:"sleep_time,omitempty"`
	WorkoutTime        string            `json:"workout_time,omitempty"`
	MealTimes          map[string]string `json:"meal_times,omitempty"`
	HydrationReminders []string          `json:"hydration_reminders,omitempty"`
}

// Recipe is a single dish suggestion with macros.
type Recipe struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Calories    int      `json:"calories"`
	ProteinG    int      `json:"protein_g"`
	CarbsG      int      `json:"carbs_g"`
	FatG        int      `json:"fat_g"`
}
