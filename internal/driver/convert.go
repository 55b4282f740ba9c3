package driver

// PercentToDuty converts a percentage to a duty value, clamping to [0,100].
func PercentToDuty(percent int, maxDuty uint32) uint32 {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return uint32(percent) * maxDuty / 100
}

// DutyToPercent converts a duty value to a percentage, clamping to maxDuty.
func DutyToPercent(duty, maxDuty uint32) int {
	if maxDuty == 0 {
		return 0
	}
	if duty > maxDuty {
		duty = maxDuty
	}
	return int(duty * 100 / maxDuty)
}
