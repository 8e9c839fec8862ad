package discord

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/jukebox/internal/core"
)

// registerCommands syncs slash commands for a guild with Discord:
// deletes obsolete ones, creates/updates commands whose definition has changed.
func (b *Bot) registerCommands(guildID string) error {
	appID, err := b.appID()
	if err != nil {
		return err
	}

	remote, err := b.dg.ApplicationCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("list commands: %w", err)
	}

	local := commandDefinitions(b.commands)
	cache := hashCache{dir: b.cfg.CommandCacheDir}
	hashes := cache.load(guildID)

	b.deleteObsoleteCommands(appID, guildID, remote, local, hashes)
	b.upsertChangedCommands(appID, guildID, local, hashes)

	return cache.save(guildID, hashes)
}

// commandDefinitions returns the slash definitions of every registered command.
func commandDefinitions(r *core.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range r.All() {
		sp, ok := c.(core.SlashProvider)
		if !ok {
			continue
		}
		def := sp.SlashDefinition()
		if def == nil {
			continue
		}
		if def.Type == 0 {
			def.Type = discordgo.ChatApplicationCommand
		}
		defs = append(defs, def)
	}
	return defs
}

func (b *Bot) deleteObsoleteCommands(appID, guildID string, remote, local []*discordgo.ApplicationCommand, hashes map[string]string) {
	wanted := make(map[string]struct{}, len(local))
	for _, d := range local {
		wanted[d.Name] = struct{}{}
	}

	for _, rc := range remote {
		if _, ok := wanted[rc.Name]; ok {
			continue
		}
		log.Info().Str("guild_id", guildID).Str("command", rc.Name).Msg("Deleting obsolete command")
		if err := b.dg.ApplicationCommandDelete(appID, guildID, rc.ID); err != nil {
			log.Error().Err(err).Str("guild_id", guildID).Str("command", rc.Name).Msg("Failed to delete command")
			continue
		}
		delete(hashes, rc.Name)
	}
}

// upsertChangedCommands creates or updates commands whose hash differs from the cached value.
func (b *Bot) upsertChangedCommands(appID, guildID string, defs []*discordgo.ApplicationCommand, hashes map[string]string) {
	changed := 0
	for _, d := range defs {
		h := hashCommand(d)
		if hashes[d.Name] == h {
			continue
		}
		changed++
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, d); err != nil {
			log.Error().Err(err).Str("guild_id", guildID).Str("command", d.Name).Msg("Failed to register command")
			continue
		}
		hashes[d.Name] = h
		time.Sleep(25 * time.Millisecond) // stay well under Discord's rate limit
	}
	if changed > 0 {
		log.Info().Str("guild_id", guildID).Int("changed", changed).Msg("Slash commands synced")
	}
}

// appID returns the bot's application ID, fetching from Discord if not cached in State.
func (b *Bot) appID() (string, error) {
	if u := b.dg.State.User; u != nil && u.ID != "" {
		return u.ID, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return u.ID, nil
}

// hashCache stores per-guild command hashes as <dir>/<guildID>.json.
type hashCache struct {
	dir string
}

func (c hashCache) path(guildID string) string {
	return filepath.Join(c.dir, guildID+".json")
}

func (c hashCache) load(guildID string) map[string]string {
	out := make(map[string]string)
	if data, err := os.ReadFile(c.path(guildID)); err == nil {
		_ = json.Unmarshal(data, &out)
	}
	return out
}

func (c hashCache) save(guildID string, hashes map[string]string) error {
	path := c.path(guildID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
