package domain

import "time"

// Norm constants. The water norm is 30 ml per kg plus 500 ml per full half
// hour of daily activity, plus a hot-weather bonus; calories burned during
// activity are approximated at 7 kcal per minute.
const (
	waterPerKG          = 30
	waterPerHalfHour    = 500
	waterHotWeatherML   = 500
	hotWeatherThreshold = 25
	kcalPerActiveMinute = 7
	minutesPerDay       = 1440
)

// WaterNorm returns the daily water norm in ml for the profile at the given
// outside temperature. Returns 0 when weight is unknown.
func WaterNorm(p *UserProfile, temperatureC float64) float64 {
	if p == nil || p.WeightKG <= 0 {
		return 0
	}
	norm := p.WeightKG*waterPerKG + float64(p.ActivityMinutes/30)*waterPerHalfHour
	if temperatureC > hotWeatherThreshold {
		norm += waterHotWeatherML
	}
	return norm
}

// CalorieNorm returns the daily calorie target. A custom goal takes
// precedence; otherwise a Harris-Benedict style BMR plus an activity
// allowance. Returns 0 when the profile is incomplete.
func CalorieNorm(p *UserProfile) float64 {
	if p == nil || p.WeightKG <= 0 || p.HeightCM <= 0 || p.AgeYears <= 0 {
		return 0
	}
	if p.CustomCalorieGoal > 0 {
		return p.CustomCalorieGoal
	}
	return bmr(p) + float64(p.ActivityMinutes)*kcalPerActiveMinute
}

// BMRPerMinute returns the basal burn rate in kcal per minute, or 0 when the
// profile is incomplete.
func BMRPerMinute(p *UserProfile) float64 {
	if p == nil || p.WeightKG <= 0 || p.HeightCM <= 0 || p.AgeYears <= 0 {
		return 0
	}
	return bmr(p) / minutesPerDay
}

func bmr(p *UserProfile) float64 {
	return 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.AgeYears)
}

// AccrueBMR adds the basal calories burned since the last update and
// advances the update timestamp. The accrued total only increases; calling
// twice at the same instant adds nothing the second time.
func (l *DailyLog) AccrueBMR(p *UserProfile, now time.Time) {
	elapsed := now.Sub(l.LastBMRUpdate).Minutes()
	if elapsed > 0 {
		l.CalorieBurnedBMR += BMRPerMinute(p) * elapsed
	}
	l.LastBMRUpdate = now
}
