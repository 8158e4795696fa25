package api

import (
	"net/http"
	"os"

	"github.com/apex/log"
	jujuclock "github.com/juju/clock"

	"kgeyst.com/iris/pkg/common"
	"kgeyst.com/iris/pkg/iris/domain"
	"kgeyst.com/iris/pkg/iris/infrastructure/ffmpeg"
	"kgeyst.com/iris/pkg/iris/infrastructure/filesystem"
	"kgeyst.com/iris/pkg/iris/infrastructure/gemini"
	"kgeyst.com/iris/pkg/iris/infrastructure/inmemory"
	"kgeyst.com/iris/pkg/iris/infrastructure/juju"
	"kgeyst.com/iris/pkg/iris/infrastructure/logging"
	"kgeyst.com/iris/pkg/iris/infrastructure/metrics"
	"kgeyst.com/iris/pkg/iris/infrastructure/openai"
	"kgeyst.com/iris/pkg/iris/infrastructure/speech"
)

// See domain/config.go
const (
	ConfigKeyLogPath      = domain.ConfigKeyLogPath
	ConfigKeyLogLevel     = domain.ConfigKeyLogLevel
	ConfigKeySettingsPath = domain.ConfigKeySettingsPath
	ConfigKeyFrameSource  = domain.ConfigKeyFrameSource
	// ConfigKeyFrameMaxAge how long (in milliseconds) a pushed frame stays fresh
	ConfigKeyFrameMaxAge = "frameMaxAge"
)

const (
	FrameSourceCamera = "camera"
	FrameSourcePush   = "push"
)

// Environment variables which seed the provider settings when nothing is saved yet.
const (
	EnvProvider = "IRIS_PROVIDER"
	EnvAPIKey   = "IRIS_API_KEY"
)

// API is the entrypoint to Iris. It shouldn't contain any logic of its own; it glues all the components together
// and provides a public interface for domain.Orchestrator.
// This API can be used in various contexts: in an IRC chat, an HTTP server, console input/output etc.
type API interface {
	domain.CameraSwitcher
	// Trigger asks Iris to describe what the camera sees. An empty query means the default question. Returns
	// immediately: the result is spoken and reported to the listeners.
	Trigger(query string) domain.TriggerOutcome
	// Tap is a single tap on the screen: one tap describes the scene, three taps in a row open the settings.
	// Returns false if the tap was ignored (taps are ignored while the settings are open).
	Tap() bool
	ShowSettings()
	CloseSettings()
	SaveSettings(config domain.ProviderConfig) error
	Settings() (domain.ProviderConfig, error)
	ToggleListening()
	StopSpeaking()
	Status() domain.Status
	// Welcome greets the user. Call once on startup.
	Welcome()
	// AddListener must be called before the first trigger.
	AddListener(listener domain.Listener)
	// PushFrame feeds a frame from a client-side camera; returns domain.ErrFramesNotAccepted unless the frame source
	// is configured as "push".
	PushFrame(frame domain.Frame) error
	Logger() log.Interface
	// Close stops all background work.
	Close()
}

type api struct {
	*domain.Orchestrator
	domain.CameraSwitcher
	frameBuffer        *inmemory.FrameBuffer
	jobQueue           *common.JobQueue
	speechOutput       *speech.SpeechOutput
	settingsRepository *filesystem.ProviderConfigRepository
	logger             log.Interface
}

func NewAPI(config *common.Config) (API, error) {
	logger := common.NewFileLogger(
		config.GetStringOrDefault(ConfigKeyLogPath, "log.txt"),
		config.GetStringOrDefault(ConfigKeyLogLevel, "info"),
	)
	metrics.Register()
	clock := jujuclock.WallClock
	httpClient := &http.Client{}
	modelTimeout := config.GetDurationOrDefault(domain.ConfigKeyModelTimeout, domain.DefaultModelTimeout)
	geminiModels := logging.DecorateAll(gemini.NewVisionModels(config, httpClient), domain.ProviderGemini, logger)
	openaiModel := logging.NewVisionModelDecorator(openai.NewVisionModel(config, httpClient), domain.ProviderOpenAI, logger)
	analysisClient := domain.NewAnalysisClient(
		map[domain.Provider]domain.ProviderPath{
			domain.ProviderGemini: domain.NewModelFallback(geminiModels, modelTimeout, logger),
			domain.ProviderOpenAI: domain.NewSingleModel(openaiModel, modelTimeout, logger),
		},
		config.GetStringOrDefault(domain.ConfigKeySystemPrompt, domain.SystemPrompt),
		config.GetDurationOrDefault(domain.ConfigKeySimulationDelay, domain.DefaultSimulationDelay),
		clock,
		logger,
	)
	a := &api{
		jobQueue:     common.NewJobQueue(logger),
		speechOutput: speech.NewSpeechOutput(speech.NewSynthesizer(config, logger), logger),
		logger:       logger,
	}
	settingsRepository, err := a.newSettingsRepository(config)
	if err != nil {
		a.jobQueue.Stop()
		return nil, err
	}
	var frameSource domain.FrameSource
	if config.GetStringOrDefault(ConfigKeyFrameSource, FrameSourceCamera) == FrameSourcePush {
		a.frameBuffer = inmemory.NewFrameBuffer(config.GetDurationOrDefault(ConfigKeyFrameMaxAge, 0))
		frameSource = a.frameBuffer
		a.CameraSwitcher = a.frameBuffer
	} else {
		camera := ffmpeg.NewCamera(juju.NewNamedMutexAcquirer(), config, logger)
		frameSource = camera
		a.CameraSwitcher = camera
	}
	a.Orchestrator = domain.NewOrchestrator(
		frameSource,
		analysisClient,
		a.speechOutput,
		settingsRepository,
		a.jobQueue,
		clock,
		config,
		logger,
	)
	a.Orchestrator.AddListener(metrics.NewListener())
	return a, nil
}

// The settings file is optional; without it, the settings only live as long as the process.
func (a *api) newSettingsRepository(config *common.Config) (domain.ProviderConfigRepository, error) {
	seed := domain.ProviderConfig{Credential: os.Getenv(EnvAPIKey)}
	provider, err := domain.ParseProvider(os.Getenv(EnvProvider))
	if err != nil {
		a.logger.WithError(err).Warnf("ignoring %s", EnvProvider)
		provider = domain.DefaultProvider
	}
	seed.Provider = provider
	memoryRepository := inmemory.NewProviderConfigRepository(seed)
	settingsPath := config.GetString(ConfigKeySettingsPath)
	if settingsPath == "" {
		return memoryRepository, nil
	}
	fileRepository, err := filesystem.NewProviderConfigRepository(memoryRepository, settingsPath, a.logger)
	if err != nil {
		return nil, err
	}
	err = fileRepository.Watch()
	if err != nil {
		a.logger.WithError(err).Warn("settings won't be reloaded on change")
	}
	a.settingsRepository = fileRepository
	return fileRepository, nil
}

func (a *api) PushFrame(frame domain.Frame) error {
	if a.frameBuffer == nil {
		return domain.ErrFramesNotAccepted
	}
	return a.frameBuffer.PushFrame(frame)
}

func (a *api) Logger() log.Interface {
	return a.logger
}

func (a *api) Close() {
	a.Orchestrator.Close()
	a.jobQueue.Stop()
	a.speechOutput.Stop()
	if a.settingsRepository != nil {
		_ = a.settingsRepository.Close()
	}
}
