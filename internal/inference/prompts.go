package inference

// System prompts for the three estimation kinds. Each pins the exact JSON
// shape the extraction stages expect.
const (
	workoutParsePrompt = "You are a fitness expert. Parse workout descriptions and return ONLY a JSON object with this exact format:\n" +
		`{"workout_type": "string", "minutes": number, "explanation": "string"}` + "\n" +
		"If duration is not specified, estimate it based on context. Be conservative in estimates."

	foodCaloriesPrompt = "You are a nutrition expert. Estimate calories for food items and return ONLY a JSON object with this exact format:\n" +
		`{"calories": number, "explanation": "string"}` + "\n" +
		"The calories should be per serving/piece for common items, or per 100g for ingredients.\n" +
		"Be conservative in estimates. Include serving size in explanation."

	workoutRatePrompt = "You are a fitness expert. Estimate calories burned during workouts and return ONLY a JSON object with this exact format:\n" +
		`{"calories_per_minute": number, "explanation": "string"}` + "\n" +
		"Consider the person's weight and workout type. Be conservative in estimates."
)
