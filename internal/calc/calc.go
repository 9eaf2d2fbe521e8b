// Package calc implements the health and fitness formulas: BMI, TDEE
// (Mifflin-St Jeor) and goal-adjusted caloric/macro targets with safety caps.
package calc

import (
	"fmt"
	"math"

	"github.com/PabloGalante/fitpal-agent/internal/domain"
)

// BMI category boundaries.
const (
	bmiUnderweightMax = 18.5
	bmiNormalMax      = 25.0
	bmiOverweightMax  = 30.0
)

// Safety limits applied to caloric targets.
const (
	DefaultCalorieFloor = 1200
	DefaultMaxDeficit   = 1000
	DefaultMaxSurplus   = 500
)

var activityMultipliers = map[domain.ActivityLevel]float64{
	domain.ActivitySedentary:        1.2,
	domain.ActivityLightlyActive:    1.375,
	domain.ActivityModeratelyActive: 1.55,
	domain.ActivityVeryActive:       1.725,
	domain.ActivityExtremelyActive:  1.9,
}

// BMI returns the body-mass index rounded to one decimal plus its category.
func BMI(weightKg, heightCm float64) (float64, string, error) {
	if weightKg <= 0 {
		return 0, "", fmt.Errorf("weight must be positive, got %v", weightKg)
	}
	if heightCm <= 0 {
		return 0, "", fmt.Errorf("height must be positive, got %v", heightCm)
	}

	heightM := heightCm / 100
	bmi := weightKg / (heightM * heightM)
	bmi = math.Round(bmi*10) / 10

	var category string
	switch {
	case bmi < bmiUnderweightMax:
		category = "Underweight"
	case bmi < bmiNormalMax:
		category = "Normal weight"
	case bmi < bmiOverweightMax:
		category = "Overweight"
	default:
		category = "Obese"
	}
	return bmi, category, nil
}

// TDEE estimates total daily energy expenditure via Mifflin-St Jeor with an
// activity multiplier, rounded to the nearest calorie.
func TDEE(weightKg, heightCm float64, age int, gender domain.Gender, level domain.ActivityLevel) (float64, error) {
	if weightKg <= 0 {
		return 0, fmt.Errorf("weight must be positive, got %v", weightKg)
	}
	if heightCm <= 0 {
		return 0, fmt.Errorf("height must be positive, got %v", heightCm)
	}
	if age <= 0 {
		return 0, fmt.Errorf("age must be positive, got %d", age)
	}

	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch gender {
	case domain.GenderMale:
		bmr += 5
	case domain.GenderFemale:
		bmr -= 161
	default:
		return 0, fmt.Errorf("unknown gender %q", gender)
	}

	mult, ok := activityMultipliers[level]
	if !ok {
		return 0, fmt.Errorf("unknown activity level %q", level)
	}
	return math.Round(bmr * mult), nil
}

// Targets holds the daily caloric budget and its macro breakdown.
type Targets struct {
	TargetCalories int
	ProteinG       int
	CarbsG         int
	FatG           int
}

// CaloricTargets derives the daily budget from TDEE and goal. The deficit is
// capped at DefaultMaxDeficit, the surplus at DefaultMaxSurplus, and the
// result never drops below DefaultCalorieFloor.
func CaloricTargets(tdee float64, goal domain.FitnessGoal) (Targets, error) {
	if tdee <= 0 {
		return Targets{}, fmt.Errorf("tdee must be positive, got %v", tdee)
	}

	var target float64
	switch goal {
	case domain.GoalLoseWeight:
		deficit := math.Min(tdee*0.2, DefaultMaxDeficit)
		target = math.Max(tdee-deficit, DefaultCalorieFloor)
	case domain.GoalMaintain:
		target = tdee
	case domain.GoalGainMuscle:
		surplus := math.Min(tdee*0.15, DefaultMaxSurplus)
		target = tdee + surplus
	default:
		return Targets{}, fmt.Errorf("unknown goal %q", goal)
	}

	targetCalories := int(math.Round(target))

	var proteinPct, carbPct, fatPct float64
	switch goal {
	case domain.GoalLoseWeight:
		proteinPct, carbPct, fatPct = 0.35, 0.35, 0.30
	case domain.GoalGainMuscle:
		proteinPct, carbPct, fatPct = 0.30, 0.45, 0.25
	default: // maintain
		proteinPct, carbPct, fatPct = 0.30, 0.40, 0.30
	}

	// Protein and carbs are 4 kcal/g, fat is 9 kcal/g.
	return Targets{
		TargetCalories: targetCalories,
		ProteinG:       int(math.Round(float64(targetCalories) * proteinPct / 4)),
		CarbsG:         int(math.Round(float64(targetCalories) * carbPct / 4)),
		FatG:           int(math.Round(float64(targetCalories) * fatPct / 9)),
	}, nil
}

// Assessment summarizes risk and recommendations for a BMI category.
type Assessment struct {
	RiskLevel       string
	Recommendations []string
}

// AssessHealthStatus maps a BMI category to a risk level and general advice.
func AssessHealthStatus(category string) Assessment {
	switch category {
	case "Underweight":
		return Assessment{
			RiskLevel: "moderate",
			Recommendations: []string{
				"Consider consulting a healthcare provider about healthy weight gain",
				"Focus on nutrient-dense, calorie-rich foods",
				"Incorporate strength training to build muscle mass",
			},
		}
	case "Normal weight":
		return Assessment{
			RiskLevel: "low",
			Recommendations: []string{
				"Maintain current weight through balanced nutrition",
				"Keep up regular physical activity (150+ minutes per week)",
			},
		}
	case "Overweight":
		return Assessment{
			RiskLevel: "moderate",
			Recommendations: []string{
				"Aim for gradual weight loss (0.5-1 kg per week)",
				"Focus on whole foods and portion control",
				"Increase physical activity to at least 200 minutes per week",
			},
		}
	default: // Obese
		return Assessment{
			RiskLevel: "high",
			Recommendations: []string{
				"Consult a healthcare provider before an intensive program",
				"Start with low-impact activities such as walking or swimming",
				"Focus on sustainable lifestyle changes, not quick fixes",
			},
		}
	}
}

// MetricsFor computes the full HealthMetrics record for a complete profile.
func MetricsFor(profile domain.UserProfile, now domain.Timestamp) (*domain.HealthMetrics, error) {
	bmi, category, err := BMI(profile.WeightKg, profile.HeightCm)
	if err != nil {
		return nil, err
	}
	tdee, err := TDEE(profile.WeightKg, profile.HeightCm, profile.Age, profile.Gender, profile.ActivityLevel)
	if err != nil {
		return nil, err
	}
	targets, err := CaloricTargets(tdee, profile.Goal)
	if err != nil {
		return nil, err
	}
	assessment := AssessHealthStatus(category)

	return &domain.HealthMetrics{
		BMI:             bmi,
		BMICategory:     category,
		TDEE:            tdee,
		TargetCalories:  targets.TargetCalories,
		ProteinG:        targets.ProteinG,
		CarbsG:          targets.CarbsG,
		FatG:            targets.FatG,
		RiskLevel:       assessment.RiskLevel,
		Recommendations: assessment.Recommendations,
		CalculatedAt:    now,
	}, nil
}
