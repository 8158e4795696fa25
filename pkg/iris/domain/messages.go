package domain

// TODO internationalize
const (
	DefaultQuery                 = "Describe what is in front of me."
	InitialLastResponse          = "Tap the screen or ask a question."
	WelcomeMessage               = "Vision Assistant ready. Tap the screen to describe what is in front of you."
	AnalyzingMessage             = "Analyzing..."
	ConfigurePromptMessage       = "Please set your API Key in settings first."
	CannotSeeMessage             = "I cannot see anything. Please check the camera."
	ApologyMessage               = "Sorry, something went wrong."
	VoiceCommandsDisabledMessage = "Voice commands are currently disabled to prevent crashes."
	SimulationModeNotice         = "Simulation Mode: Please enter your API Key in settings to see the real world."
)

// SystemPrompt is sent along with every query.
const SystemPrompt = `You are a multimodal assistant helping blind and visually impaired people in real time.
INPUT: the user holds a phone or wears a camera; you receive what the camera sees right now.
GOALS: describe clearly and concisely what is in front of the user. Help them understand their surroundings. Read any visible text. Guide the user. Safety comes first.
STYLE: short, clear sentences. Never say "as you can see". Use positions relative to the user (left, right, ahead, close, far).
SAFETY: warn about any danger clearly and first.
`
