package reaction

// Coaching prompts sent as directed messages, e.g. when a signer needs the
// remote participant to adjust their camera or pace.
const (
	FeedbackAttention      = "Please look at me"
	FeedbackWithinFrame    = "Please keep your upper body visible"
	FeedbackBackground     = "Please turn on some lights"
	FeedbackSpeakSlowly    = "Please speak slower"
	FeedbackEasierLanguage = "Please use easier language"
	FeedbackRepeat         = "Please repeat what you said"
)
