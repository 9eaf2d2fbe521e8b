package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/PabloGalante/fitpal-agent/internal/domain"
	"github.com/PabloGalante/fitpal-agent/internal/observability"
)

// RecipeAgent suggests a single dish that fits the user's preferences and
// targets. It runs no slot-filling session of its own; it relies on the
// dietary preferences the nutrition agent already gathered.
type RecipeAgent struct {
	generator domain.Generator
}

func NewRecipeAgent(generator domain.Generator) *RecipeAgent {
	return &RecipeAgent{generator: generator}
}

func (a *RecipeAgent) ID() domain.AgentID { return domain.AgentRecipe }

func (a *RecipeAgent) Prerequisites() []Prerequisite {
	return []Prerequisite{PrereqHealthMetrics, PrereqDietaryPreferences}
}

func (a *RecipeAgent) Run(ctx context.Context, turn Turn) (string, error) {
	log := observability.LoggerFromContext(ctx).With("agent", a.ID())

	if turn.State.HealthMetrics == nil || turn.State.DietaryPreferences == nil {
		return "", fmt.Errorf("%w: I need your health assessment and dietary preferences first", domain.ErrMissingPrerequisite)
	}

	prefs := *turn.State.DietaryPreferences
	exclusions := ExpandExclusions(prefs.Exclusions())
	metrics := *turn.State.HealthMetrics

	recipe, err := retryGenerate(ctx, generateAttempts, func(ctx context.Context) (*domain.Recipe, error) {
		r, err := a.generator.GenerateRecipe(ctx, metrics, prefs, exclusions)
		if err != nil {
			return nil, err
		}
		if hit := violatesExclusions(r.Ingredients, exclusions); hit != "" {
			return nil, fmt.Errorf("recipe %q contains excluded ingredient %q", r.Name, hit)
		}
		return r, nil
	})
	if err != nil {
		log.Error("recipe generation failed", "error", err)
		return "", err
	}

	turn.State.PutArtifact(&domain.Artifact{
		Kind:   domain.ArtifactRecipe,
		Recipe: recipe,
	}, turn.Now)
	log.Info("recipe created", "name", recipe.Name)

	return formatRecipe(recipe), nil
}

func formatRecipe(r *domain.Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "How about: %s\n", r.Name)
	if r.Description != "" {
		fmt.Fprintf(&b, "%s\n", r.Description)
	}
	fmt.Fprintf(&b, "%d kcal | %dg protein | %dg carbs | %dg fat\n", r.Calories, r.ProteinG, r.CarbsG, r.FatG)
	b.WriteString("\nIngredients:\n")
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&b, "- %s\n", ing)
	}
	b.WriteString("\nSteps:\n")
	for i, step := range r.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String()
}
