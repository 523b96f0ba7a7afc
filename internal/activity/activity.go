// Package activity models campus activity over the day.
//
// Two pure functions drive everything downstream: GlobalFactor captures
// the campus-wide schedule (arrival ramp, lunch, evening drain) and
// ZoneFactor captures how each zone category deviates from it (the
// canteen spikes at lunch while classrooms dip). Both are deterministic
// and side-effect free.
package activity

import (
	"math"
	"time"

	"github.com/Phani347-06/crowdsense-core/internal/zone"
)

// Night and Sunday baseline activity.
const baselineFactor = 0.1

// GlobalFactor returns the campus-wide activity multiplier for the
// given local time.
//
// Sundays are effectively closed and return a flat baseline. Weekdays
// follow the timetable:
//
//	06:00-08:00  ramp 0.1 -> 0.3   security and early staff
//	08:00-09:00  ramp 0.3 -> 1.0   arrival
//	09:00-12:00  1.0               morning classes
//	12:00-14:00  0.95              lunch, high movement
//	14:00-18:00  decay 0.9 -> 0.8  afternoon
//	18:00-19:00  0.25              late stay
//	19:00-20:00  0.15              closing
//	20:00-06:00  0.1               overnight
func GlobalFactor(hour, minute int, weekday time.Weekday) float64 {
	if weekday == time.Sunday {
		return baselineFactor
	}

	t := float64(hour) + float64(minute)/60.0

	switch {
	case t >= 6 && t < 8:
		progress := (t - 6) / 2
		return 0.1 + 0.2*progress
	case t >= 8 && t < 9:
		return 0.3 + 0.7*(t-8)
	case t >= 9 && t < 12:
		return 1.0
	case t >= 12 && t < 14:
		return 0.95
	case t >= 14 && t < 18:
		return 0.9 - 0.1*(t-14)/4
	case t >= 18 && t < 19:
		return 0.25
	case t >= 19 && t < 20:
		return 0.15
	default:
		return baselineFactor
	}
}

// ZoneFactor returns the category-specific activity multiplier.
//
// Social zones carry a Gaussian lunch spike centred on 13:00; study
// zones peak after lunch; academic zones track the class timetable.
// Unknown categories return 1.0 (neutral).
func ZoneFactor(category zone.Category, hour, minute int) float64 {
	t := float64(hour) + float64(minute)/60.0

	switch category {
	case zone.CategorySocial:
		switch {
		case t < 8:
			return 0.1
		case t < 11:
			return 0.4
		case t < 15:
			delta := t - 13.0
			spike := 2.5 * math.Exp(-(delta*delta)/0.5)
			return 0.5 + spike
		case t >= 18:
			return 0.05
		default:
			return 0.3
		}

	case zone.CategoryStudy:
		switch {
		case t >= 9 && t < 12:
			return 0.8
		case t >= 12 && t < 13:
			return 0.6
		case t >= 14 && t < 17:
			return 1.3
		case t >= 17 && t < 21:
			return 0.5
		default:
			return 0.2
		}

	case zone.CategoryAcademic:
		switch {
		case t >= 9 && t < 12:
			return 1.2
		case t >= 12 && t < 13:
			return 0.5
		case t >= 14 && t < 17:
			return 1.0
		case t >= 17:
			return 0.1
		default:
			return 0.1
		}
	}

	return 1.0
}
