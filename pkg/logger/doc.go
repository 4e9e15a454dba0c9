// Package logger builds the *slog.Logger instances shared by the asset pipeline.
//
// New applies functional options on top of production defaults (JSON, INFO) and
// wraps the resulting handler so attributes stored in a context.Context, such as
// a request id, are added to every record logged with that context.
//
//	log := logger.New(
//		logger.WithEnvironment("production", "assetd"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.WarnContext(ctx, "variant encode failed",
//		logger.MediaPath(path),
//		logger.Variant("card", 260, "webp"),
//		logger.Error(err),
//	)
//
// Attribute helpers keep key names consistent across packages. Helpers that take
// an error or an optional value return an empty slog.Attr for nil input, which
// slog drops, so callers don't need nil checks.
//
// Components that accept a *slog.Logger treat nil as Discard().
package logger
