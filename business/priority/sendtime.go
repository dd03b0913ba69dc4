package priority

import (
	"math/rand"
	"strings"
	"time"

	"brandPulse/domain"
)

// sendWindow is a segment's candidate hours and weekdays. The pick
// among candidates is uniform at random on purpose: spreading sends
// inside the window is exploration, not noise.
type sendWindow struct {
	hours    []int
	weekdays []time.Weekday
}

var allWeek = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
	time.Thursday, time.Friday, time.Saturday,
}

var workWeek = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

var sendWindows = map[string]sendWindow{
	"engaged":      {hours: []int{18, 19, 20}, weekdays: allWeek},
	"night_owl":    {hours: []int{20, 21, 22}, weekdays: allWeek},
	"professional": {hours: []int{10, 11, 14, 15}, weekdays: workWeek},
	"weekend":      {hours: []int{11, 12, 17}, weekdays: []time.Weekday{time.Saturday, time.Sunday}},
	"dormant":      {hours: []int{12, 18}, weekdays: []time.Weekday{time.Tuesday, time.Thursday, time.Saturday}},
}

var defaultWindow = sendWindow{
	hours:    []int{10, 14, 18},
	weekdays: allWeek,
}

// BestSendTime picks an hour and weekday from the segment's window and
// rolls forward from now to the next matching slot.
func BestSendTime(segment string, now time.Time) domain.SendTimeSuggestion {
	return bestSendTime(segment, now, rand.Intn)
}

func bestSendTime(segment string, now time.Time, intn func(int) int) domain.SendTimeSuggestion {
	window, ok := sendWindows[strings.ToLower(strings.TrimSpace(segment))]
	if !ok {
		window = defaultWindow
	}

	hour := window.hours[intn(len(window.hours))]
	weekday := window.weekdays[intn(len(window.weekdays))]

	sendAt := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())

	// roll forward to the chosen weekday; bounded, a week always
	// contains every weekday
	for i := 0; i < 8; i++ {
		if sendAt.Weekday() == weekday && sendAt.After(now) {
			break
		}
		sendAt = sendAt.AddDate(0, 0, 1)
	}

	return domain.SendTimeSuggestion{
		Hour:    hour,
		Weekday: weekday,
		SendAt:  sendAt,
	}
}
