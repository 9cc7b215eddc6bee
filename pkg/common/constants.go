package common

const (
	RedisStreamSignalsPersisted = "signals.persisted"

	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerAPI      = "api"

	LatencyFast = "fast"
)
