package presentation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/tsubomi-dev/melobot/internal/bot"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/usecases"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

// maxQueueLines caps how many pending entries a /queue response lists.
const maxQueueLines = 10

// Handlers holds the command handlers for the jukebox module.
type Handlers struct {
	playback *usecases.PlaybackService
	voice    *usecases.VoiceService
}

// NewHandlers creates new Handlers.
func NewHandlers(playback *usecases.PlaybackService, voice *usecases.VoiceService) *Handlers {
	return &Handlers{
		playback: playback,
		voice:    voice,
	}
}

// HandleJoin handles the /join command.
func (h *Handlers) HandleJoin(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	channelID, err := h.voice.Join(context.Background(), ids.guildID, ids.channelID, ids.userID)
	if err != nil {
		return respondError(r, friendlyError(err))
	}
	return respondSuccess(r, fmt.Sprintf("Connected to <#%d>.", channelID))
}

// HandleLeave handles the /leave command.
func (h *Handlers) HandleLeave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	if err := h.voice.Leave(context.Background(), ids.guildID); err != nil {
		return respondError(r, friendlyError(err))
	}
	return respondSuccess(r, "Disconnected.")
}

// HandlePlay handles the /play command.
func (h *Handlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}

	result, err := h.playback.Play(context.Background(), ids.guildID, ids.channelID, ids.userID, query)
	if err != nil {
		return respondError(r, friendlyError(err))
	}
	return respondPlayQueued(r, result)
}

// HandleSkip handles the /skip command.
func (h *Handlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	result, err := h.playback.Skip(context.Background(), ids.guildID)
	if err != nil {
		return respondError(r, friendlyError(err))
	}
	return respondSkipped(r, result)
}

// HandleSkipTo handles the /skipto command.
func (h *Handlers) HandleSkipTo(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	var position int
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "position" {
			position = int(opt.IntValue())
		}
	}

	result, err := h.playback.SkipTo(context.Background(), ids.guildID, position)
	if err != nil {
		return respondError(r, friendlyError(err))
	}
	return respondSkipped(r, result)
}

// HandleQueue handles the /queue command.
func (h *Handlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	snapshot, err := h.playback.Queue(ids.guildID)
	if err != nil {
		return respondError(r, friendlyError(err))
	}
	return respondQueue(r, snapshot)
}

// HandleLoop handles the /loop command.
func (h *Handlers) HandleLoop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	var modeStr string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "mode" {
			modeStr = opt.StringValue()
		}
	}

	var newMode domain.LoopMode
	if modeStr != "" {
		newMode = domain.ParseLoopMode(modeStr)
		if err := h.playback.SetLoopMode(ids.guildID, newMode); err != nil {
			return respondError(r, friendlyError(err))
		}
	} else {
		mode, err := h.playback.CycleLoopMode(ids.guildID)
		if err != nil {
			return respondError(r, friendlyError(err))
		}
		newMode = mode
	}
	return respondLoopModeChanged(r, newMode)
}

// HandlePause handles the /pause command.
func (h *Handlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	if err := h.playback.Pause(context.Background(), ids.guildID); err != nil {
		return respondError(r, friendlyError(err))
	}
	return respondSuccess(r, "Paused playback.")
}

// HandleResume handles the /resume command.
func (h *Handlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	if err := h.playback.Resume(context.Background(), ids.guildID); err != nil {
		return respondError(r, friendlyError(err))
	}
	return respondSuccess(r, "Resumed playback.")
}

// HandleStop handles the /stop command.
func (h *Handlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ids, err := parseInteractionIDs(i)
	if err != nil {
		return respondError(r, err.Error())
	}

	if err := h.playback.Stop(context.Background(), ids.guildID); err != nil {
		return respondError(r, friendlyError(err))
	}
	return respondSuccess(r, "Stopped playback.")
}

type interactionIDs struct {
	guildID   snowflake.ID
	channelID snowflake.ID
	userID    snowflake.ID
}

func parseInteractionIDs(i *discordgo.InteractionCreate) (interactionIDs, error) {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return interactionIDs{}, errors.New("Invalid guild")
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return interactionIDs{}, errors.New("Invalid channel")
	}
	if i.Member == nil || i.Member.User == nil {
		return interactionIDs{}, errors.New("This command only works in a server")
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return interactionIDs{}, errors.New("Invalid user")
	}
	return interactionIDs{guildID: guildID, channelID: channelID, userID: userID}, nil
}

// friendlyError maps usecase sentinel errors to user-facing messages.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, usecases.ErrNotConnected):
		return "Not connected to a voice channel."
	case errors.Is(err, usecases.ErrUserNotInVoice):
		return "You need to be in a voice channel."
	case errors.Is(err, usecases.ErrNotPlaying):
		return "Nothing is playing."
	case errors.Is(err, usecases.ErrNoResults):
		return "No tracks found for that query."
	case errors.Is(err, usecases.ErrNoPlayableTracks):
		return "Could not queue any tracks."
	case errors.Is(err, usecases.ErrInvalidPosition):
		return "That queue position does not exist."
	default:
		return err.Error()
	}
}

// Response helpers.

func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
		},
	})
}

func respondSuccess(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: message,
					Color:       colorSuccess,
				},
			},
		},
	})
}

func respondPlayQueued(r bot.Responder, result *usecases.PlayResult) error {
	var description string
	switch {
	case result.PlaylistName != "":
		description = fmt.Sprintf("Queued **%d** tracks from **%s**.", result.QueuedCount, result.PlaylistName)
	case result.Started != nil:
		description = fmt.Sprintf("Queued %s.", trackLink(result.Started.Title, result.Started.URI))
	case result.Position > 0:
		description = fmt.Sprintf("Added to the queue at position **%d**.", result.Position)
	default:
		description = "Added to the queue."
	}
	return respondSuccess(r, description)
}

func respondSkipped(r bot.Responder, result *usecases.SkipResult) error {
	var sb strings.Builder
	if result.Skipped != nil {
		fmt.Fprintf(&sb, "Skipped %s.", trackLink(result.Skipped.Title, result.Skipped.URI))
	} else {
		sb.WriteString("Skipped.")
	}
	if result.Next != nil {
		fmt.Fprintf(&sb, " Now playing %s.", trackLink(result.Next.Title, result.Next.URI))
	}
	return respondSuccess(r, sb.String())
}

func respondLoopModeChanged(r bot.Responder, mode domain.LoopMode) error {
	var description string
	switch mode {
	case domain.LoopModeTrack:
		description = "Now looping the current track."
	case domain.LoopModeQueue:
		description = "Now looping the queue."
	default:
		description = "Loop disabled."
	}
	return respondSuccess(r, description)
}

func respondQueue(r bot.Responder, snapshot *usecases.QueueSnapshot) error {
	title := "Queue"
	switch snapshot.LoopMode {
	case domain.LoopModeTrack:
		title = "Queue \U0001F502"
	case domain.LoopModeQueue:
		title = "Queue \U0001F501"
	}

	embed := &discordgo.MessageEmbed{Title: title}

	pending := len(snapshot.Upcoming) + len(snapshot.Waiting)
	if snapshot.Current == nil && pending == 0 {
		embed.Description = "Queue is empty."
	} else {
		var sb strings.Builder
		if snapshot.Current != nil {
			sb.WriteString("### Now Playing\n")
			status := ""
			if snapshot.Paused {
				status = " (paused)"
			}
			fmt.Fprintf(&sb, "%s - %s%s\n",
				trackLink(snapshot.Current.Title, snapshot.Current.URI),
				snapshot.Current.Artist, status)
		}

		if pending > 0 {
			sb.WriteString("### Up Next\n")
			line := 1
			for _, track := range snapshot.Upcoming {
				if line > maxQueueLines {
					break
				}
				fmt.Fprintf(&sb, "%d\\. %s - %s\n", line, trackLink(track.Title, track.URI), track.Artist)
				line++
			}
			for _, entry := range snapshot.Waiting {
				if line > maxQueueLines {
					break
				}
				fmt.Fprintf(&sb, "%d\\. %s\n", line, entry.Locator)
				line++
			}
			if pending > maxQueueLines {
				fmt.Fprintf(&sb, "...and %d more.\n", pending-maxQueueLines)
			}
		}
		embed.Description = sb.String()
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}

func trackLink(title, uri string) string {
	if uri != "" {
		return fmt.Sprintf("[%s](%s)", title, uri)
	}
	return fmt.Sprintf("**%s**", title)
}
