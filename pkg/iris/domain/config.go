package domain

// A list of config keys read by the core.

const (
	// ConfigKeyLogPath file path where to save the logs
	ConfigKeyLogPath = "logPath"
	// ConfigKeyLogLevel one of debug, info, warn, error
	ConfigKeyLogLevel = "logLevel"
	// ConfigKeyLocale the locale used for every utterance, e.g. "en-US"
	ConfigKeyLocale = "locale"
	// ConfigKeyTapWindow how long (in milliseconds) to wait for another tap before a tap sequence is considered complete
	ConfigKeyTapWindow = "tapWindow"
	// ConfigKeyTapCount how many taps within the window reveal the settings instead of describing the scene
	ConfigKeyTapCount = "tapCount"
	// ConfigKeyModelTimeout the deadline (in milliseconds) of a single model call; a timed out model is skipped like
	// any other non-auth failure
	ConfigKeyModelTimeout = "modelTimeout"
	// ConfigKeyCycleTimeout the deadline (in milliseconds) of the whole analysis, across all fallback models
	ConfigKeyCycleTimeout = "cycleTimeout"
	// ConfigKeySimulationDelay the artificial delay (in milliseconds) of simulated answers
	ConfigKeySimulationDelay = "simulationDelay"
	// ConfigKeySystemPrompt overrides the built-in system prompt
	ConfigKeySystemPrompt = "systemPrompt"
	// ConfigKeySettingsPath where the provider settings are persisted; empty means "keep them in memory"
	ConfigKeySettingsPath = "settingsPath"
	// ConfigKeyFrameSource "camera" (ffmpeg) or "push" (frames are posted over HTTP)
	ConfigKeyFrameSource = "frameSource"
)
