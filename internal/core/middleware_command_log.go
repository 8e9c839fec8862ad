package core

import (
	"github.com/rs/zerolog/log"
)

// WithCommandLogger wraps a command to log its execution
func WithCommandLogger() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				// Run the actual command first
				err := dispatch(cmd, ctx)

				// Then try to log its execution
				switch v := ctx.(type) {
				case *SlashInteractionContext:
					if v.Storage == nil || v.Event.Member == nil {
						break
					}
					user := v.Event.Member.User
					param := CommandParam(v.Event.ApplicationCommandData().Options)
					if e := LogCommand(v.Session, v.Storage, v.Event.GuildID, v.Event.ChannelID, user.ID, user.Username, cmd.Name(), param); e != nil {
						log.Warn().Err(e).Str("command", cmd.Name()).Msg("Failed to log command")
					}
				}

				if err != nil {
					log.Debug().Err(err).Str("command", cmd.Name()).Msg("Command returned error")
				}
				return err
			},
		}
	}
}
