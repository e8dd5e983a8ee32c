// lisper runs, inspects and interactively evaluates programs of a small Lisp
// dialect.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	cli "github.com/urfave/cli/v2"

	"github.com/nukata/lisper-in-go/internal/config"
	"github.com/nukata/lisper-in-go/internal/logging"
	"github.com/nukata/lisper-in-go/lisp"
	"github.com/nukata/lisper-in-go/repl"
)

// fibb is the sample host callback scripts may call.
func fibb(n int64) int64 {
	if n < 2 {
		return n
	}
	return fibb(n-1) + fibb(n-2)
}

// newEnv constructs the environment every command evaluates in.
func newEnv(cfg *config.Config, out io.Writer) (*lisp.Env, error) {
	env := lisp.NewEnv(lisp.WithOutput(out), lisp.WithMaxDepth(cfg.MaxDepth))
	if err := env.Register("fibb", fibb); err != nil {
		return nil, errors.Wrap(err, "registering fibb")
	}
	return env, nil
}

func readSource(c *cli.Context) (string, string, error) {
	if c.NArg() != 1 {
		return "", "", errors.Errorf("expected exactly one FILE, got %d arguments", c.NArg())
	}
	name := c.Args().First()
	var b []byte
	var err error
	if name == "-" {
		b, err = io.ReadAll(c.App.Reader)
	} else {
		b, err = os.ReadFile(name)
	}
	if err != nil {
		return "", "", errors.Wrapf(err, "reading %s", name)
	}
	logging.Debugf("loaded %s (%d bytes)", name, len(b))
	return name, string(b), nil
}

type runFlags struct {
	keepGoing bool
	step      bool
	watch     cli.StringSlice
}

// runForms evaluates forms in env. With keepGoing it continues past failing
// forms and returns all their errors together.
func runForms(forms []lisp.Value, env *lisp.Env, keepGoing bool) error {
	if !keepGoing {
		_, err := lisp.Run(forms, env)
		return err
	}
	var result error
	for i, form := range forms {
		if _, err := lisp.Eval(form, env); err != nil {
			logging.Warningf("form %d failed: %s", i+1, err)
			result = multierror.Append(result, errors.Wrapf(err, "form %d %s", i+1, lisp.Str(form)))
		}
	}
	return result
}

// stepForms shows each form and the watched variables, then waits for a
// line on in before evaluating it.
func stepForms(forms []lisp.Value, env *lisp.Env, watch []string, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	stepColor := color.New(color.FgGreen)
	watchColor := color.New(color.FgBlue)
	for i, form := range forms {
		fmt.Fprintln(out, stepColor.Sprintf("%d: ", i)+lisp.Str(form))
		for _, name := range watch {
			v, ok := env.Lookup(name)
			if !ok {
				fmt.Fprintln(out, watchColor.Sprintf("%s is unbound", name))
				continue
			}
			fmt.Fprint(out, watchColor.Sprintf("%s = %s", name, spew.Sdump(v)))
		}
		if _, err := r.ReadString('\n'); err != nil && err != io.EOF {
			return errors.Wrap(err, "waiting for input")
		}
		if _, err := lisp.Eval(form, env); err != nil {
			return errors.Wrapf(err, "form %d %s", i, lisp.Str(form))
		}
	}
	return nil
}

func runCommand(cfg *config.Config) *cli.Command {
	var flags runFlags
	return &cli.Command{
		Name:      "run",
		Usage:     "Evaluate a script file, - for stdin.",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Destination: &flags.keepGoing,
				Name:        "keep-going",
				Usage:       "Continue after a failing form and report every failure at the end.",
			},
			&cli.BoolFlag{
				Destination: &flags.step,
				Name:        "step",
				Usage:       "Pause before each top-level form until Enter is pressed.",
			},
			&cli.StringSliceFlag{
				Destination: &flags.watch,
				Name:        "watch",
				Usage:       "Variables to show while stepping.",
			},
		},
		Action: func(c *cli.Context) error {
			name, src, err := readSource(c)
			if err != nil {
				return err
			}
			forms, err := lisp.Load(src)
			if err != nil {
				return errors.Wrapf(err, "loading %s", name)
			}
			env, err := newEnv(cfg, c.App.Writer)
			if err != nil {
				return err
			}
			if flags.step {
				return stepForms(forms, env, flags.watch.Value(), os.Stdin, c.App.Writer)
			}
			if err := runForms(forms, env, flags.keepGoing); err != nil {
				return errors.Wrapf(err, "running %s", name)
			}
			return nil
		},
	}
}

func replCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Start an interactive session.",
		Action: func(c *cli.Context) error {
			env, err := newEnv(cfg, c.App.Writer)
			if err != nil {
				return err
			}
			return repl.New(env, repl.Options{
				Prompt:      cfg.Prompt,
				Banner:      cfg.Banner,
				HistoryFile: cfg.HistoryFile,
				Out:         c.App.Writer,
			}).Run()
		},
	}
}

func tokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "Print the tokens of a file, one per line.",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			name, src, err := readSource(c)
			if err != nil {
				return err
			}
			tokens, err := lisp.Tokenize(src)
			if err != nil {
				return errors.Wrapf(err, "tokenizing %s", name)
			}
			for _, t := range tokens {
				fmt.Fprintln(c.App.Writer, t)
			}
			return nil
		},
	}
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Print the syntax tree of every form in a file.",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			name, src, err := readSource(c)
			if err != nil {
				return err
			}
			forms, err := lisp.Load(src)
			if err != nil {
				return errors.Wrapf(err, "parsing %s", name)
			}
			for _, f := range forms {
				if err := lisp.WriteTree(c.App.Writer, f); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func highlightCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "highlight",
		Usage:     "Print a file with syntax coloring.",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			_, src, err := readSource(c)
			if err != nil {
				return err
			}
			env, err := newEnv(cfg, io.Discard)
			if err != nil {
				return err
			}
			s := repl.New(env, repl.Options{Out: c.App.Writer})
			_, err = io.WriteString(c.App.Writer, s.Highlight(src))
			return err
		},
	}
}

func newApp() *cli.App {
	cfg := &config.Config{}
	return &cli.App{
		Name:  "lisper",
		Usage: "lisper runs and explores programs written in a small Lisp.",
		Flags: cfg.AsCliFlags(),
		Before: func(c *cli.Context) error {
			if err := cfg.ApplyFile(c.IsSet); err != nil {
				return err
			}
			color.NoColor = color.NoColor || cfg.NoColor
			logging.SetOutput(os.Stderr, cfg.Debug)
			if strings.TrimSpace(cfg.ConfigFilename) != "" {
				logging.Debugf("config from %s: %+v", cfg.ConfigFilename, *cfg)
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand(cfg),
			replCommand(cfg),
			tokensCommand(),
			parseCommand(),
			highlightCommand(cfg),
		},
	}
}

func main() {
	newApp().RunAndExitOnError()
}
