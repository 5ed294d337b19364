package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	javaio "github.com/lujjjh/go-jdeserialize"
	"github.com/lujjjh/go-jdeserialize/internal/config"
)

// session is the state shared by every command: the effective config, the
// logger and the decoded stream.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	result *javaio.Result
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if lvl := c.GlobalString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if c.GlobalBool("no-connect") {
		cfg.ConnectInnerClasses = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.DisableStacktrace = true
	return zc.Build()
}

// openSession loads the config, installs the logger and decodes the stream
// named by the first argument ("-" reads standard input).
func openSession(c *cli.Context) (*session, error) {
	if c.NArg() != 1 {
		return nil, errors.Errorf("%s: expected exactly one FILE argument", c.Command.Name)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	javaio.SetLogger(logger)

	path := c.Args().First()
	data, err := readInput(path, cfg.MaxInputSize.Bytes())
	if err != nil {
		return nil, err
	}
	logger.Info("decoding stream", zap.String("file", path), zap.Int("size", len(data)))

	var opts []javaio.Option
	if !cfg.ConnectInnerClasses {
		opts = append(opts, javaio.WithoutMemberClassConnection())
	}
	result, err := javaio.Deserialize(data, opts...)
	if err != nil {
		return nil, errors.WithMessagef(err, "decode %s", path)
	}
	return &session{cfg: cfg, logger: logger, result: result}, nil
}

func readInput(path string, limit uint64) ([]byte, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", path)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, int64(limit)+1))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if uint64(len(data)) > limit {
		return nil, errors.Errorf("%s exceeds max_input_size of %d bytes", path, limit)
	}
	return data, nil
}
