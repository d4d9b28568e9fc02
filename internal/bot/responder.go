package bot

import "github.com/bwmarrin/discordgo"

// Responder is the reply surface handed to command handlers. Handlers reply
// through it instead of the session so they can run against a test double.
type Responder interface {
	Respond(response *discordgo.InteractionResponse) error
}

// DiscordResponder replies to one interaction over a live session.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

// NewDiscordResponder binds a responder to the given interaction.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{session: s, interaction: i}
}

// Respond sends the response through the Discord API.
func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	return r.session.InteractionRespond(r.interaction, response)
}

// MockResponder captures the last response for assertions. Err, when set, is
// returned from Respond to exercise handler error paths.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	Err          error
}

// Respond records the response.
func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.LastResponse = response
	return m.Err
}
