package domain

const DefaultLocale = "en-US"

// SpeechOutput the speech device shared by the whole process. A new utterance interrupts the one being played, so
// the latest message always wins and utterances never overlap.
type SpeechOutput interface {
	Speak(text, locale string)
	Stop()
}
