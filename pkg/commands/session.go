package commands

import (
	"context"

	"github.com/rejonpardenilla/minderal/pkg/app"
	"github.com/rejonpardenilla/minderal/pkg/commands/options"
	"github.com/rejonpardenilla/minderal/pkg/config"
	"github.com/rejonpardenilla/minderal/pkg/logging"
)

// openSession loads the config and opens the database chosen by the root
// flags. The returned func closes the session and the log file.
func openSession(ctx context.Context, do *options.DatabaseOptions, remember bool) (*app.Session, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	b := logging.New().Level(do.LogLevel)
	if do.LogFile != "" {
		b = b.ToFile(do.LogFile)
	} else {
		b = b.Pretty(true)
	}
	log, closeLog, err := b.Make()
	if err != nil {
		return nil, nil, err
	}

	opts := []app.Option{app.WithLogger(log)}
	if remember {
		opts = append(opts, app.WithRememberSelection())
	}
	s, err := app.Open(ctx, cfg, do.DB, opts...)
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}
	log.Debug().Str("db", do.DB).Str("url", s.Info().Options.URL).Msg("opened")

	return s, func() {
		if err := s.Close(); err != nil {
			log.Warn().Err(err).Msg("closing session")
		}
		_ = closeLog()
	}, nil
}
