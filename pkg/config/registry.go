package config

// Persistent state keys (Registry)
const (
	KeySpeechRate    = "speech_rate"
	KeySpeechVoice   = "speech_voice"
	KeyDedupWindow   = "dedup_window"
	KeyDrainInterval = "drain_interval"
	KeyEarconEnabled = "earcon_enabled"
	KeyEarconVolume  = "earcon_volume"
	KeyCoarseMode    = "coarse_mode"
)
