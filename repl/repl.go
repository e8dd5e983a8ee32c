// Package repl is the interactive shell of lisper: line editing and history
// through liner, completion of visible names and colored results.
package repl

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/peterh/liner"
	"github.com/pkg/errors"

	"github.com/nukata/lisper-in-go/internal/logging"
	"github.com/nukata/lisper-in-go/lisp"
)

const continuationPrompt = "... "

// Options configures a Shell.
type Options struct {
	Prompt      string
	Banner      string
	HistoryFile string // "" disables history
	Out         io.Writer
}

// Shell evaluates lines typed by the user in one persistent environment.
type Shell struct {
	env      *lisp.Env
	opts     Options
	builtins map[string]bool
}

// New constructs a Shell evaluating in env.
func New(env *lisp.Env, opts Options) *Shell {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	builtins := make(map[string]bool)
	if root := env.Global().Parent(); root != nil {
		for name := range root.Local() {
			builtins[name] = true
		}
	}
	return &Shell{env: env, opts: opts, builtins: builtins}
}

// isQuit reports whether line asks the shell to stop.
func isQuit(line string) bool {
	switch strings.TrimSpace(line) {
	case "quit", "(quit)", ":quit", ":q":
		return true
	}
	return false
}

// Eval handles one complete input and writes its result or error to the
// shell's output. It returns true when the input asks to quit.
func (s *Shell) Eval(code string) bool {
	code = strings.TrimSpace(code)
	switch {
	case code == "":
		return false
	case isQuit(code):
		return true
	case strings.HasPrefix(code, ":"):
		s.command(code)
		return false
	}
	v, err := lisp.EvalString(code, s.env)
	if err != nil {
		fmt.Fprintln(s.opts.Out, errorColor.Sprint(errors.Cause(err).Error()))
		logging.Debugf("%+v", err)
		return false
	}
	if !lisp.IsNil(v) {
		fmt.Fprintln(s.opts.Out, resultColor.Sprint(lisp.Str(v)))
	}
	return false
}

func (s *Shell) command(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":env":
		s.writeEnv(fields[1:])
	case ":tokens":
		tokens, err := lisp.Tokenize(strings.TrimSpace(strings.TrimPrefix(line, ":tokens")))
		if err != nil {
			fmt.Fprintln(s.opts.Out, errorColor.Sprint(err))
			return
		}
		for _, t := range tokens {
			fmt.Fprintln(s.opts.Out, t)
		}
	case ":tree":
		forms, err := lisp.Load(strings.TrimSpace(strings.TrimPrefix(line, ":tree")))
		if err != nil {
			fmt.Fprintln(s.opts.Out, errorColor.Sprint(err))
			return
		}
		for _, f := range forms {
			if err := lisp.WriteTree(s.opts.Out, f); err != nil {
				logging.Errorf("writing tree: %s", err)
			}
		}
	case ":help":
		fmt.Fprintln(s.opts.Out, "commands: :env [all], :tokens <src>, :tree <src>, :help, quit")
	default:
		fmt.Fprintf(s.opts.Out, "unknown command %s, type :help for help\n", fields[0])
	}
}

// writeEnv renders the user bindings, or every binding with "all", as a
// table.
func (s *Shell) writeEnv(args []string) {
	all := len(args) > 0 && args[0] == "all"
	var names []string
	for _, name := range s.env.Names() {
		if all || !s.builtins[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(s.opts.Out)
	table.SetHeader([]string{"Name", "Type", "Value"})
	table.SetAutoWrapText(false)
	for _, name := range names {
		v, err := s.env.Get(name)
		if err != nil {
			continue
		}
		value := lisp.Str(v)
		if r := []rune(value); len(r) > 60 {
			value = string(r[:57]) + "..."
		}
		table.Append([]string{name, lisp.TypeName(v), value})
	}
	table.Render()
}

// complete offers the visible names extending the last word of line.
func (s *Shell) complete(line string) []string {
	i := strings.LastIndexAny(line, " \t()'#") + 1
	prefix, word := line[:i], line[i:]
	if word == "" {
		return nil
	}
	var result []string
	for _, name := range s.env.Names() {
		if strings.HasPrefix(name, word) {
			result = append(result, prefix+name)
		}
	}
	return result
}

// incomplete reports whether err means the input stops inside a form or
// literal, so more lines should be read.
func incomplete(err error) bool {
	return lisp.IsIncomplete(err)
}

// read collects lines until they form complete input. It returns false at
// end of input.
func (s *Shell) read(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := s.opts.Prompt
		if b.Len() > 0 {
			prompt = continuationPrompt
		}
		line, err := ln.Prompt(prompt)
		if err == io.EOF {
			return "", false
		}
		if err != nil {
			// Ctrl-C drops the pending input.
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if _, err := lisp.Load(b.String()); !incomplete(err) {
			return b.String(), true
		}
	}
}

// Run reads and evaluates lines until quit or end of input.
func (s *Shell) Run() error {
	if s.opts.Banner != "" {
		fmt.Fprintln(s.opts.Out, s.opts.Banner)
	}
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(s.complete)

	if s.opts.HistoryFile != "" {
		if f, err := os.Open(s.opts.HistoryFile); err == nil {
			if _, err := ln.ReadHistory(f); err != nil {
				logging.Warningf("reading history %s: %s", s.opts.HistoryFile, err)
			}
			f.Close()
		}
	}

	for {
		code, ok := s.read(ln)
		if !ok {
			fmt.Fprintln(s.opts.Out)
			break
		}
		if strings.TrimSpace(code) != "" {
			ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		}
		if s.Eval(code) {
			break
		}
	}

	if s.opts.HistoryFile == "" {
		return nil
	}
	f, err := os.Create(s.opts.HistoryFile)
	if err != nil {
		return errors.Wrapf(err, "saving history to %s", s.opts.HistoryFile)
	}
	defer f.Close()
	if _, err := ln.WriteHistory(f); err != nil {
		return errors.Wrapf(err, "saving history to %s", s.opts.HistoryFile)
	}
	return nil
}

// Highlight colors src using the builtin names of the shell's environment.
func (s *Shell) Highlight(src string) string {
	return Highlight(src, s.builtins)
}
