package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

// Gemini implements the extraction, generation and reply ports on top of
// Vertex AI (Gemini). All structured calls request JSON output and decode it
// locally; the model never drives control flow.
type Gemini struct {
	client    *genai.Client
	modelName string
}

// NewGemini creates the client. Project and location come from config.
func NewGemini(ctx context.Context, projectID, location, modelName string) (*Gemini, error) {
	if projectID == "" || location == "" {
		return nil, fmt.Errorf("project id and location must be set")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}

	return &Gemini{client: client, modelName: modelName}, nil
}

// generateJSON runs one structured-output call and decodes the response into out.
func (g *Gemini) generateJSON(ctx context.Context, system, user string, out any) error {
	temp := float32(0.3)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       &temp,
		ResponseMIMEType:  "application/json",
	}

	contents := []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)}
	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return fmt.Errorf("gemini returned empty text")
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decoding gemini response: %w", err)
	}
	return nil
}

// Extract implements domain.Extractor.
func (g *Gemini) Extract(ctx context.Context, text string, schema domain.SlotSchema, prior domain.SlotValues) (domain.SlotValues, []domain.SlotName, error) {
	var decoded map[string]json.RawMessage
	if err := g.generateJSON(ctx, extractionSystemPrompt, buildExtractionPrompt(text, schema, prior), &decoded); err != nil {
		return nil, nil, err
	}

	values := make(domain.SlotValues)
	var matched []domain.SlotName
	for _, slot := range schema.Slots {
		raw, ok := decoded[string(slot.Name)]
		if !ok {
			continue
		}
		var v domain.SlotValue
		switch slot.Kind {
		case domain.SlotAccumulating:
			if err := json.Unmarshal(raw, &v.Pairs); err != nil {
				continue
			}
		default:
			if err := json.Unmarshal(raw, &v.Text); err != nil {
				continue
			}
		}
		if v.Empty() {
			continue
		}
		values[slot.Name] = v
		matched = append(matched, slot.Name)
	}
	return values, matched, nil
}

// mealPlanDTO mirrors the JSON shape requested from the model.
type mealPlanDTO struct {
	Meals []domain.Meal `json:"meals"`
}

func (g *Gemini) GenerateMealPlan(ctx context.Context, metrics domain.HealthMetrics, prefs domain.DietaryPreferences, exclusions []string) (*domain.MealPlan, error) {
	var dto mealPlanDTO
	if err := g.generateJSON(ctx, nutritionSystemPrompt, buildMealPlanPrompt(metrics, prefs, exclusions), &dto); err != nil {
		return nil, err
	}
	plan := &domain.MealPlan{Meals: dto.Meals}
	plan.Recalculate()
	return plan, nil
}

func (g *Gemini) GenerateWorkoutPlan(ctx context.Context, profile domain.UserProfile, constraints domain.FitnessConstraints) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	if err := g.generateJSON(ctx, fitnessSystemPrompt, buildWorkoutPrompt(profile, constraints), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (g *Gemini) GenerateRecipe(ctx context.Context, metrics domain.HealthMetrics, prefs domain.DietaryPreferences, exclusions []string) (*domain.Recipe, error) {
	var recipe domain.Recipe
	if err := g.generateJSON(ctx, nutritionSystemPrompt, buildRecipePrompt(metrics, prefs, exclusions), &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (g *Gemini) GenerateDailySchedule(ctx context.Context, metrics *domain.HealthMetrics, workout *domain.WorkoutPlan, meals *domain.MealPlan) (*domain.DailySchedule, error) {
	var schedule domain.DailySchedule
	if err := g.generateJSON(ctx, coachSystemPrompt, buildSchedulePrompt(metrics, workout, meals), &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// GenerateReply implements domain.Replier for free-form assistant text.
func (g *Gemini) GenerateReply(ctx context.Context, prompt string, history []*domain.Message) (string, error) {
	var contents []*genai.Content
	for _, m := range history {
		role := genai.Role(genai.RoleUser)
		if m.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	temp := float32(0.7)
	topP := float32(0.9)
	outputTokens := int32(2048)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(replySystemPrompt, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}
