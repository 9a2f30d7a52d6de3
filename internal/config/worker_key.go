package config

type WorkerKeyStruct struct {
	NotificationQueue      string
	PersistUsageQueue      string
	PersistRedemptionQueue string
}

var WorkerKey = &WorkerKeyStruct{
	NotificationQueue:      "notification_dispatch_queue",
	PersistUsageQueue:      "persist_usage_queue",
	PersistRedemptionQueue: "persist_redemptions_queue",
}
