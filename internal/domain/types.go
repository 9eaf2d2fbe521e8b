package domain

import "time"

type SessionID string
type UserID string
type MessageID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// AgentID identifies one of the specialized agents behind the orchestrator.
type AgentID string

const (
	AgentHealth    AgentID = "health"
	AgentNutrition AgentID = "nutrition"
	AgentRecipe    AgentID = "recipe"
	AgentFitness   AgentID = "fitness"
	AgentCoach     AgentID = "coach"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityExtremelyActive  ActivityLevel = "extremely_active"
)

type FitnessGoal string

const (
	GoalLoseWeight FitnessGoal = "lose_weight"
	GoalMaintain   FitnessGoal = "maintain"
	GoalGainMuscle FitnessGoal = "gain_muscle"
)

type Timestamp = time.Time
