package weather

// WorkoutAdjustment maps the current temperature to a calorie multiplier
// and a fixed explanation. Total over any finite temperature.
func WorkoutAdjustment(info Info) (float64, string) {
	switch t := info.TemperatureC; {
	case t > 30:
		return 0.8, "hot weather (reduced calorie burn)"
	case t > 25:
		return 0.9, "warm (slightly reduced calorie burn)"
	case t >= 15:
		return 1.0, "comfortable temperature"
	case t < 5:
		return 1.2, "cold (increased calorie burn)"
	default:
		return 1.1, "cool (slightly increased calorie burn)"
	}
}
