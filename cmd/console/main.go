package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"

	"kgeyst.com/iris/pkg/common"
	"kgeyst.com/iris/pkg/iris/api"
	"kgeyst.com/iris/pkg/iris/domain"
)

const help = `Commands:
  <empty line>          tap the screen (3 quick taps open the settings)
  describe [question]   describe what the camera sees
  settings | close      open/close the settings
  provider <name>       switch the provider (gemini, openai)
  key <secret>          set the API key
  cameras | camera <n>  list/switch cameras
  listen                toggle voice commands
  stop                  stop speaking
  status                show the current status
  quit`

// Prints what a sighted user would see on the screen.
type consoleListener struct {
	domain.NopListener
}

func (c *consoleListener) CycleCompleted(outcome domain.CycleOutcome, lastResponse string) {
	fmt.Printf("[%s] %s\n", outcome, lastResponse)
}

func (c *consoleListener) SettingsVisibilityChanged(visible bool) {
	if visible {
		fmt.Println("[settings] use `provider <name>` and `key <secret>`, then `close`")
	}
}

func main() {
	err := mainImpl()
	if err != nil {
		panic(err)
	}
}

func mainImpl() error {
	_ = godotenv.Load()
	config, err := common.LoadConfigOrDefault("config.yaml")
	if err != nil {
		return err
	}
	iris, err := api.NewAPI(config)
	if err != nil {
		return err
	}
	defer iris.Close()
	iris.AddListener(&consoleListener{})
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()
	fmt.Println(help)
	iris.Welcome()
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF
			break
		}
		if !handleLine(iris, strings.TrimSpace(line)) {
			break
		}
	}
	return nil
}

func handleLine(iris api.API, line string) bool {
	command, argument, _ := strings.Cut(line, " ")
	argument = strings.TrimSpace(argument)
	switch strings.ToLower(command) {
	case "":
		if !iris.Tap() {
			fmt.Println("taps are ignored while the settings are open")
		}
	case "describe":
		fmt.Println(iris.Trigger(common.CleanQuery(argument)))
	case "settings":
		iris.ShowSettings()
	case "close":
		iris.CloseSettings()
	case "provider":
		updateSettings(iris, func(config *domain.ProviderConfig) error {
			provider, err := domain.ParseProvider(argument)
			config.Provider = provider
			return err
		})
	case "key":
		updateSettings(iris, func(config *domain.ProviderConfig) error {
			config.Credential = argument
			return nil
		})
	case "cameras":
		for index, camera := range iris.Cameras() {
			marker := " "
			if index == iris.ActiveCamera() {
				marker = "*"
			}
			fmt.Printf("%s %d: %s\n", marker, index, camera)
		}
	case "camera":
		index, err := strconv.Atoi(argument)
		if err == nil {
			err = iris.SwitchCamera(index)
		}
		if err != nil {
			fmt.Println(err)
		}
	case "listen":
		iris.ToggleListening()
	case "stop":
		iris.StopSpeaking()
	case "status":
		status := iris.Status()
		fmt.Printf("state: %s, settings open: %t\n%s\n", status.State, status.SettingsVisible, status.LastResponse)
	case "quit", "exit":
		return false
	default:
		fmt.Println(help)
	}
	return true
}

// SaveSettings closes the settings; they're reopened so that the provider and the key can be set one after another.
func updateSettings(iris api.API, update func(config *domain.ProviderConfig) error) {
	config, err := iris.Settings()
	if err != nil {
		fmt.Println(err)
		return
	}
	err = update(&config)
	if err != nil {
		fmt.Println(err)
		return
	}
	wasOpen := iris.Status().SettingsVisible
	err = iris.SaveSettings(config)
	if err != nil {
		fmt.Println(err)
		return
	}
	if wasOpen {
		iris.ShowSettings()
	}
	fmt.Println("saved")
}
