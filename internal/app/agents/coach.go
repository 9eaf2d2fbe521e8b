package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/fitpal-agent/internal/domain"
	"github.com/PabloGalante/fitpal-agent/internal/observability"
)

// CoachAgent lays whatever plans exist onto a daily schedule and keeps the
// user motivated. It has no prerequisites; with no plans yet it still
// produces a sensible default day.
type CoachAgent struct {
	generator domain.Generator
	replier   domain.Replier
}

func NewCoachAgent(generator domain.Generator, replier domain.Replier) *CoachAgent {
	return &CoachAgent{generator: generator, replier: replier}
}

func (a *CoachAgent) ID() domain.AgentID { return domain.AgentCoach }

func (a *CoachAgent) Prerequisites() []Prerequisite { return nil }

func (a *CoachAgent) Run(ctx context.Context, turn Turn) (string, error) {
	log := observability.LoggerFromContext(ctx).With("agent", a.ID())

	var workout *domain.WorkoutPlan
	if art := turn.State.ActiveArtifact(domain.ArtifactWorkoutPlan); art != nil {
		workout = art.WorkoutPlan
	}
	var meals *domain.MealPlan
	if art := turn.State.ActiveArtifact(domain.ArtifactMealPlan); art != nil {
		meals = art.MealPlan
	}

	schedule, err := retryGenerate(ctx, generateAttempts, func(ctx context.Context) (*domain.DailySchedule, error) {
		return a.generator.GenerateDailySchedule(ctx, turn.State.HealthMetrics, workout, meals)
	})
	if err != nil {
		log.Error("daily schedule generation failed", "error", err)
		return "", err
	}

	turn.State.PutArtifact(&domain.Artifact{
		Kind:          domain.ArtifactDailySchedule,
		DailySchedule: schedule,
	}, turn.Now)
	log.Info("daily schedule created")

	return a.coachReply(ctx, turn, schedule), nil
}

func (a *CoachAgent) coachReply(ctx context.Context, turn Turn, schedule *domain.DailySchedule) string {
	if a.replier != nil {
		prompt := fmt.Sprintf(
			"You are a supportive daily fitness coach. The user said: %q.\n"+
				"Their day: wake %s, workout %s, sleep %s.\n"+
				"Reply with a short encouraging message that walks them through the day.",
			turn.UserText, schedule.WakeTime, schedule.WorkoutTime, schedule.SleepTime,
		)
		if reply, err := a.replier.GenerateReply(ctx, prompt, turn.State.History(10)); err == nil && reply != "" {
			return reply
		}
	}
	return formatSchedule(schedule)
}

func formatSchedule(s *domain.DailySchedule) string {
	var b strings.Builder
	b.WriteString("Here's a day that fits your plans:\n")
	if s.WakeTime != "" {
		fmt.Fprintf(&b, "- Wake up: %s\n", s.WakeTime)
	}
	for _, meal := range []string{"breakfast", "lunch", "dinner", "snack"} {
		if t, ok := s.MealTimes[meal]; ok {
			fmt.Fprintf(&b, "- %s: %s\n", strings.ToUpper(meal[:1])+meal[1:], t)
		}
	}
	if s.WorkoutTime != "" {
		fmt.Fprintf(&b, "- Workout: %s\n", s.WorkoutTime)
	}
	if s.SleepTime != "" {
		fmt.Fprintf(&b, "- Lights out: %s\n", s.SleepTime)
	}
	for _, reminder := range s.HydrationReminders {
		fmt.Fprintf(&b, "- %s\n", reminder)
	}
	b.WriteString("One day at a time - you've got this.")
	return b.String()
}
