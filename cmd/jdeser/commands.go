package main

import (
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"go.uber.org/zap"

	javaio "github.com/lujjjh/go-jdeserialize"
	"github.com/lujjjh/go-jdeserialize/internal/config"
)

var (
	cmdNormalize = cli.Command{
		Name:      "normalize",
		Usage:     "print the top-level objects as plain json or yaml",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "output, o",
				Usage: "output format, json|yaml",
			},
		},
		Action: func(c *cli.Context) error {
			s, err := openSession(c)
			if err != nil {
				return err
			}
			if o := c.String("output"); o != "" {
				s.cfg.Output = o
				if err := s.cfg.Validate(); err != nil {
					return err
				}
			}
			normalized := javaio.Normalize(s.result.Objects)
			s.logger.Debug("normalized", zap.Int("values", len(normalized)))
			out, err := render(normalized, s.cfg)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, out)
			return err
		},
	}

	cmdClasses = cli.Command{
		Name:      "classes",
		Usage:     "print the class definitions reconstructed from the stream",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			s, err := openSession(c)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(c.App.Writer, javaio.Print(s.result.Classes))
			return err
		},
	}

	cmdStats = cli.Command{
		Name:      "stats",
		Usage:     "summarize the contents of the stream",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			s, err := openSession(c)
			if err != nil {
				return err
			}
			st := collectStats(s.result)
			_, err = fmt.Fprint(c.App.Writer, st.render(newPalette(c.App.Writer, s.cfg.Color)))
			return err
		},
	}
)

func render(v any, cfg *config.Config) (string, error) {
	switch cfg.Output {
	case config.OutputYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return "", errors.Wrap(err, "marshal yaml")
		}
		return strings.TrimSuffix(string(b), "\n"), nil
	default:
		b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", strings.Repeat(" ", cfg.Indent))
		if err != nil {
			return "", errors.Wrap(err, "marshal json")
		}
		return string(b), nil
	}
}
