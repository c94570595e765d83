// Package discord mirrors staff alerts to a Discord channel webhook.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/provider"
)

const (
	embedColor     = 0x225533
	maxEmbedFields = 25
	maxFieldValue  = 1024
)

// Notifier posts alerts through a webhook. It never needs a bot token.
type Notifier struct {
	execute func(params *discordgo.WebhookParams) error
	log     *slog.Logger
}

// NewNotifier creates a Notifier for the given webhook.
func NewNotifier(webhookID, webhookToken string, logger *slog.Logger) (*Notifier, error) {
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &Notifier{
		execute: func(params *discordgo.WebhookParams) error {
			_, err := session.WebhookExecute(webhookID, webhookToken, false, params)
			return err
		},
		log: logger.With("adapter", "discord"),
	}, nil
}

// Notify posts one alert as an embed.
func (n *Notifier) Notify(ctx context.Context, alert provider.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{toEmbed(alert, time.Now())},
	}
	if err := n.execute(params); err != nil {
		return fmt.Errorf("discord: execute webhook: %w", err)
	}

	n.log.DebugContext(ctx, "alert posted", slog.String("reference", alert.Reference))
	return nil
}

func toEmbed(alert provider.Alert, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     alert.Title,
		URL:       alert.URL,
		Color:     embedColor,
		Timestamp: now.UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: alert.Reference},
	}
	for i, f := range alert.Fields {
		if i == maxEmbedFields {
			break
		}
		value := f[1]
		if value == "" {
			value = "-"
		}
		if len(value) > maxFieldValue {
			value = value[:maxFieldValue-3] + "..."
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f[0],
			Value:  value,
			Inline: len(value) < 40,
		})
	}
	return embed
}
