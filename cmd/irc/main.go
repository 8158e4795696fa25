package main

import (
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/whyrusleeping/hellabot"

	"kgeyst.com/iris/pkg/common"
	"kgeyst.com/iris/pkg/iris/api"
	"kgeyst.com/iris/pkg/iris/domain"
)

// Posts the outcome of every cycle to whoever asked for it.
type ircListener struct {
	domain.NopListener
	mutex   sync.Mutex
	bot     *hbot.Bot
	channel string
	asker   string
}

func (l *ircListener) setAsker(asker string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.asker = asker
}

func (l *ircListener) reply(text string) {
	l.mutex.Lock()
	asker := l.asker
	l.mutex.Unlock()
	if asker != "" {
		text = asker + " " + text
	}
	l.bot.Msg(l.channel, text)
}

func (l *ircListener) CycleCompleted(_ domain.CycleOutcome, lastResponse string) {
	l.reply(lastResponse)
}

func (l *ircListener) SettingsVisibilityChanged(visible bool) {
	if visible {
		l.reply(domain.ConfigurePromptMessage)
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
	agentName := config.GetStringOrDefault("agentName", "Iris")
	roomName := config.GetStringOrDefault("roomName", "IrisRoom")
	serverName := config.GetStringOrDefault("serverName", "irc.euirc.net:6667")
	iris, err := api.NewAPI(config)
	if err != nil {
		return err
	}
	defer iris.Close()
	ircBot, err := hbot.NewBot(serverName, agentName)
	if err != nil {
		return err
	}
	listener := &ircListener{
		bot:     ircBot,
		channel: "#" + roomName,
	}
	iris.AddListener(listener)
	var trigger = hbot.Trigger{
		Condition: func(b *hbot.Bot, m *hbot.Message) bool {
			return m.Command == "PRIVMSG"
		},
		Action: func(b *hbot.Bot, m *hbot.Message) bool {
			if !strings.HasPrefix(strings.ToLower(m.Content), strings.ToLower(agentName)) {
				return false
			}
			what := strings.TrimSpace(m.Content[len(agentName):])
			if len(what) == 0 || len(m.To) == 0 || m.To[0] != '#' {
				return false
			}
			what = strings.TrimSpace(strings.TrimPrefix(what, ","))
			command, argument, _ := strings.Cut(what, " ")
			switch strings.ToLower(command) {
			case "describe":
				listener.setAsker(m.From)
				switch iris.Trigger(common.CleanQuery(argument)) {
				case domain.TriggerOutcomeIgnored:
					b.Reply(m, m.From+" busy, try again in a moment")
				case domain.TriggerOutcomeStarted:
					b.Reply(m, m.From+" "+domain.AnalyzingMessage)
				}
			case "status":
				status := iris.Status()
				b.Reply(m, m.From+" "+status.State.String()+": "+status.LastResponse)
			case "settings":
				settings, err := iris.Settings()
				if err != nil {
					b.Reply(m, m.From+" "+err.Error())
					return true
				}
				// Keys are never posted to a public channel.
				b.Reply(m, m.From+" provider: "+string(settings.Provider))
			case "camera":
				cameras := iris.Cameras()
				active := iris.ActiveCamera()
				if active >= 0 && active < len(cameras) {
					b.Reply(m, m.From+" camera: "+cameras[active])
				}
			default:
				return false
			}
			return true
		},
	}
	ircBot.AddTrigger(trigger)
	ircBot.Channels = []string{"#" + roomName}
	ircBot.Run()
	return nil
}
