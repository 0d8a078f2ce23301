package service

import "time"

// Points economy constants.
const (
	// PostReward is paid for each of the first DailyPostCap posts of a
	// calendar day.
	PostReward = 30
	// DailyPostCap is the number of posts per calendar day that still pay
	// out; posting beyond it is rejected.
	DailyPostCap = 3
	// MaxDailyReward caps the streak claim payout.
	MaxDailyReward = 70
)

// DailyReward returns the claim payout for a user whose streak before the
// claim is streak: (streak+1)*10, capped at MaxDailyReward.
func DailyReward(streak int) int {
	reward := (streak + 1) * 10
	if reward > MaxDailyReward {
		return MaxDailyReward
	}
	return reward
}

// sameCalendarDay compares by local year/month/day, not by 24h windows.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// nextCalendarDay reports whether b falls on the calendar day immediately
// after a's.
func nextCalendarDay(a, b time.Time) bool {
	return sameCalendarDay(a.AddDate(0, 0, 1), b)
}
