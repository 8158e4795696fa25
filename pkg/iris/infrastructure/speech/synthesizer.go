package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/apex/log"

	"kgeyst.com/iris/pkg/common"
)

const (
	// ConfigKeyEngine "espeak-ng", "say" or "log" (prints utterances instead of playing them)
	ConfigKeyEngine = "speechEngine"
	// ConfigKeyRate words per minute; 0 keeps the engine's default
	ConfigKeyRate = "speechRate"
)

const (
	EngineESpeak = "espeak-ng"
	EngineSay    = "say"
	EngineLog    = "log"
)

// NewSynthesizer picks the engine from the config; by default, `say` on macOS and espeak-ng elsewhere.
func NewSynthesizer(config *common.Config, logger log.Interface) Synthesizer {
	engine := config.GetStringOrDefault(ConfigKeyEngine, defaultEngine())
	rate := config.GetIntOrDefault(ConfigKeyRate, 0)
	switch engine {
	case EngineLog:
		return NewLogSynthesizer(logger)
	default:
		return NewExecSynthesizer(engine, rate)
	}
}

func defaultEngine() string {
	if runtime.GOOS == "darwin" {
		return EngineSay
	}
	return EngineESpeak
}

// ExecSynthesizer runs a text-to-speech command line tool; cancelling the context kills it, which cuts the speech
// off.
type ExecSynthesizer struct {
	engine string
	rate   int
}

func NewExecSynthesizer(engine string, rate int) *ExecSynthesizer {
	return &ExecSynthesizer{
		engine: engine,
		rate:   rate,
	}
}

func (e *ExecSynthesizer) Synthesize(ctx context.Context, text, locale string) error {
	cmd := exec.CommandContext(ctx, e.engine, buildArgs(e.engine, e.rate, text, locale)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("%s failed: %w (%s)", e.engine, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func buildArgs(engine string, rate int, text, locale string) []string {
	var args []string
	switch engine {
	case EngineSay:
		if rate > 0 {
			args = append(args, "-r", fmt.Sprint(rate))
		}
	default:
		args = append(args, "-v", voiceForLocale(locale))
		if rate > 0 {
			args = append(args, "-s", fmt.Sprint(rate))
		}
	}
	// "--" so that a text starting with a dash isn't parsed as a flag.
	return append(args, "--", text)
}

// espeak-ng names voices by lowercase language tags: "en-us", "de", etc.
func voiceForLocale(locale string) string {
	if locale == "" {
		return "en-us"
	}
	return strings.ToLower(locale)
}

// LogSynthesizer "speaks" into the log. Useful on headless machines.
type LogSynthesizer struct {
	logger log.Interface
}

func NewLogSynthesizer(logger log.Interface) *LogSynthesizer {
	return &LogSynthesizer{logger: logger}
}

func (l *LogSynthesizer) Synthesize(_ context.Context, text, locale string) error {
	l.logger.WithField("locale", locale).Info(text)
	return nil
}
