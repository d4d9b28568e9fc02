package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/application/ports"
	"github.com/tsubomi-dev/melobot/internal/modules/jukebox/domain"
)

const colorError = 0xE74C3C

// Notifier posts playback announcements to Discord text channels.
type Notifier struct {
	session    *discordgo.Session
	httpClient *http.Client
}

// NewNotifier creates a Notifier for the given session.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{
		session: session,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// SendNowPlaying posts a "Now Playing" embed and returns the message ID so
// the caller can delete it when the track ends.
func (n *Notifier) SendNowPlaying(channelID snowflake.ID, track *domain.Track) (snowflake.ID, error) {
	source := track.Source()

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    "Now Playing",
			IconURL: source.IconURL(),
		},
		Title: track.Title,
		URL:   track.URI,
		Color: source.Color(),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Artist",
				Value:  track.Artist,
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text:    fmt.Sprintf("Requested by %s", track.RequestedBy.DisplayName),
			IconURL: track.RequestedBy.AvatarURL,
		},
	}
	if !track.EnqueuedAt.IsZero() {
		embed.Timestamp = track.EnqueuedAt.UTC().Format(time.RFC3339)
	}
	if !track.IsStream {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Duration",
			Value:  track.FormattedDuration(),
			Inline: true,
		})
	}
	if thumbnail := n.bestThumbnail(source, track.Identifier, track.ArtworkURL); thumbnail != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: thumbnail}
	}

	msg, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	if err != nil {
		return 0, err
	}
	return snowflake.Parse(msg.ID)
}

// DeleteMessage deletes a previously posted message.
func (n *Notifier) DeleteMessage(channelID, messageID snowflake.ID) error {
	return n.session.ChannelMessageDelete(channelID.String(), messageID.String())
}

// SendNotice posts a plain informational embed.
func (n *Notifier) SendNotice(channelID snowflake.ID, message string) error {
	embed := &discordgo.MessageEmbed{
		Description: message,
	}
	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// SendError posts an error embed.
func (n *Notifier) SendError(channelID snowflake.ID, message string) error {
	embed := &discordgo.MessageEmbed{
		Description: message,
		Color:       colorError,
	}
	_, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed)
	return err
}

// bestThumbnail picks the highest quality artwork available for the track.
func (n *Notifier) bestThumbnail(source domain.TrackSource, identifier, fallback string) string {
	switch source {
	case domain.TrackSourceYouTube:
		return n.youtubeThumbnail(identifier, fallback)
	case domain.TrackSourceTwitch:
		return n.twitchThumbnail(fallback)
	default:
		return fallback
	}
}

// youtubeThumbnail probes the known quality tiers from best to worst.
func (n *Notifier) youtubeThumbnail(videoID, fallback string) string {
	qualities := []string{"maxresdefault", "sddefault", "hqdefault", "mqdefault"}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, quality := range qualities {
		url := fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoID, quality)
		if n.urlExists(ctx, url) {
			return url
		}
	}
	return fallback
}

// twitchThumbnail swaps the default 440x248 preview for a 1280x720 one when
// the CDN has it.
func (n *Notifier) twitchThumbnail(artworkURL string) string {
	if artworkURL == "" {
		return ""
	}

	highRes := strings.Replace(artworkURL, "440x248", "1280x720", 1)
	if highRes == artworkURL {
		return artworkURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if n.urlExists(ctx, highRes) {
		return highRes
	}
	return artworkURL
}

func (n *Notifier) urlExists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)
