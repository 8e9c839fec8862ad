package core

// WithGuildOnly drops interactions that do not come from a guild.
func WithGuildOnly() Middleware {
	return func(cmd Command) Command {
		return &wrappedCommand{
			Command: cmd,
			wrap: func(ctx interface{}) error {
				if v, ok := ctx.(*SlashInteractionContext); ok && v.Event.GuildID == "" {
					return nil
				}
				if v, ok := ctx.(*ComponentInteractionContext); ok && v.Event.GuildID == "" {
					return nil
				}
				return dispatch(cmd, ctx)
			},
		}
	}
}
