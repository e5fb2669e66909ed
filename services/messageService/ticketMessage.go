package messageService

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"pickLabsEngine/models"
)

const (
	colorWon  = 0x2ecc71
	colorLost = 0xe74c3c
)

// DiscordNotifier announces ticket resolutions to a Discord channel.
// It satisfies ticketService.Notifier; failures are logged and dropped
// so a dead webhook never blocks resolution.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{session: session, channelID: channelID}
}

func (n *DiscordNotifier) TicketResolved(ticket models.ResolvedTicket) {
	embed := buildTicketEmbed(ticket)
	if _, err := n.session.ChannelMessageSendEmbed(n.channelID, embed); err != nil {
		log.WithField("ticket", ticket.TicketID).Errorf("sending resolution message: %v", err)
	}
}

func buildTicketEmbed(ticket models.ResolvedTicket) *discordgo.MessageEmbed {
	title := "🎟️ Ticket Lost"
	color := colorLost
	result := fmt.Sprintf("Risked **%.2f**", ticket.Stake)
	if ticket.Status == models.TicketWon {
		title = "💰 Ticket Won!"
		color = colorWon
		result = fmt.Sprintf("Risked **%.2f**, returned **%.2f**", ticket.Stake, ticket.Payout)
	}

	fields := make([]*discordgo.MessageEmbedField, 0, len(ticket.Picks))
	for _, pick := range ticket.Picks {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   pick.MatchupLabel,
			Value:  fmt.Sprintf("%s (%s)", pick.Selection, pick.Odds),
			Inline: false,
		})
	}

	legLabel := "Straight Bet"
	if len(ticket.Picks) > 1 {
		legLabel = fmt.Sprintf("%d-Leg Parlay", len(ticket.Picks))
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("%s | %s", legLabel, result),
		Color:       color,
		Fields:      fields,
	}
}
