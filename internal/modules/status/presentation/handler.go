package presentation

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tsubomi-dev/melobot/internal/bot"
	"github.com/tsubomi-dev/melobot/internal/modules/status/application"
)

// StatusHandler handles the /ping command.
type StatusHandler struct {
	interactor *application.StatusInteractor
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{
		interactor: application.NewStatusInteractor(),
	}
}

// Handle responds with gateway latency and uptime.
func (h *StatusHandler) Handle(
	s *discordgo.Session,
	_ *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	var latency time.Duration
	if s != nil {
		latency = s.HeartbeatLatency()
	}
	result := h.interactor.Execute(latency)

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: result.Message,
		},
	})
}
