package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/randalmurphal/promptbox/budget"
	"github.com/randalmurphal/promptbox/host"
	"github.com/randalmurphal/promptbox/model"
	"github.com/randalmurphal/promptbox/parser"
	"github.com/randalmurphal/promptbox/prompt"
	"github.com/randalmurphal/promptbox/template"
	"github.com/randalmurphal/promptbox/truncate"
)

// errUsage marks command-line mistakes in run's hand-parsed arguments.
var errUsage = errors.New("usage")

// runFlags are the fixed flags of the run command. Template options are
// added next to them once the template is known.
type runFlags struct {
	modelName   string
	hostName    string
	temperature float64
	maxTokens   int
	format      string
	pre         string
	post        string
	limit       int
	reserve     int
	keep        truncate.Keep
	trimArgs    []string
	priority    budget.ArrayPriority
	printPrompt bool
	verbose     bool
	dryRun      bool
	watch       bool
	extract     string
	help        bool
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.modelName, "model", "m", "", "Model to use, optionally as host/model")
	fs.StringVar(&f.hostName, "host", "", "Host serving the model")
	fs.Float64VarP(&f.temperature, "temperature", "t", 0, "Sampling temperature")
	fs.IntVar(&f.maxTokens, "max-tokens", 0, "Maximum tokens in the answer")
	fs.StringVar(&f.format, "format", "", "Answer format: json")
	fs.StringVar(&f.pre, "pre", "", "Text to put before the template")
	fs.StringVar(&f.post, "post", "", "Text to put after the template")
	fs.IntVar(&f.limit, "limit", 0, "Lower context size limit in tokens")
	fs.IntVar(&f.reserve, "reserve-output", 0, "Tokens kept free for the answer (default 256)")
	fs.Var(&f.keep, "keep", "Side kept when trimming: start or end")
	fs.StringSliceVar(&f.trimArgs, "trim-args", nil, "Template options to trim when the prompt is too long")
	fs.Var(&f.priority, "array-priority", "How array options are trimmed: first, last or equal")
	fs.BoolVar(&f.printPrompt, "print-prompt", false, "Print the prompt before sending it")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Print the prompt, the model and token counts")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Print the prompt without sending it")
	fs.BoolVar(&f.watch, "watch", false, "Run again whenever the template changes")
	fs.StringVar(&f.extract, "extract", "", "Print only part of the answer: json, yaml, code[:lang], section:<title>, list")
	fs.BoolVarP(&f.help, "help", "h", false, "Help for run")
}

// options returns the model options given on the command line.
// Flags that were not set stay unset so lower layers can fill them.
func (f *runFlags) options(fs *pflag.FlagSet) model.Options {
	opts := model.Options{
		Model:  f.modelName,
		Host:   f.hostName,
		Format: model.Format(f.format),
	}
	if fs.Changed("temperature") {
		opts.Temperature = &f.temperature
	}
	if fs.Changed("max-tokens") {
		opts.MaxTokens = &f.maxTokens
	}
	if fs.Changed("limit") {
		opts.Context.Limit = &f.limit
	}
	if fs.Changed("reserve-output") {
		opts.Context.ReserveOutput = &f.reserve
	}
	if fs.Changed("keep") {
		opts.Context.Keep = f.keep
	}
	if fs.Changed("array-priority") {
		opts.Context.ArrayPriority = f.priority
	}
	opts.Context.TrimArgs = f.trimArgs
	return opts
}

func newRunCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <template> [flags] [--<option> value ...]",
		Short: "Render a template and send it to its model",
		Long: `Render a template and send it to its model.

Each option the template declares becomes a flag: --name value. Array
options may be repeated, bool options take no value. File options read
the named file. Options listed in trim_args are shortened, and the prompt
cut, so the prompt fits the model's context window.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args)
		},
	}
}

// run parses args in two passes: the first finds the template name, the
// second parses the fixed flags together with the template's options.
func (a *app) run(cmd *cobra.Command, args []string) error {
	var probeFlags runFlags
	probe := pflag.NewFlagSet("run", pflag.ContinueOnError)
	probe.SetOutput(io.Discard)
	probe.ParseErrorsWhitelist.UnknownFlags = true
	probeFlags.register(probe)
	probe.AddFlagSet(cmd.InheritedFlags())
	if err := probe.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	a.setup(cmd.ErrOrStderr())

	if probe.NArg() == 0 {
		if probeFlags.help {
			return printRunHelp(cmd, nil)
		}
		return fmt.Errorf("%w: run needs a template name", errUsage)
	}
	name := probe.Arg(0)

	runner, err := a.newRunner()
	if err != nil {
		return err
	}
	file, err := runner.Library().Find(name)
	if err != nil {
		return err
	}

	var f runFlags
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f.register(fs)
	fs.AddFlagSet(cmd.InheritedFlags())
	templateFlags, err := newTemplateFlagSet(file, fs)
	if err != nil {
		return err
	}
	fs.AddFlagSet(templateFlags)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if f.help {
		return printRunHelp(cmd, templateFlags)
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, fs.Arg(1))
	}

	var extractor *parser.Extractor
	if f.extract != "" {
		x, err := parser.ParseExtractor(f.extract)
		if err != nil {
			return err
		}
		extractor = &x
	}

	raw, err := templateArgs(fs, file)
	if err != nil {
		return err
	}
	req := prompt.Request{
		Template: name,
		Args:     raw,
		Options:  f.options(fs),
		Pre:      f.pre,
		Post:     f.post,
	}

	out := &runOutput{
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
		runner:    runner,
		flags:     &f,
		extractor: extractor,
	}

	ctx := cmd.Context()
	err = out.once(ctx, req)
	if !f.watch {
		return err
	}
	if err != nil {
		a.logger.Error("run failed", slog.Any("error", err))
	}
	return out.watch(ctx, req, file.Name, a.logger)
}

// newTemplateFlagSet declares one flag per template option.
func newTemplateFlagSet(file *template.File, fixed *pflag.FlagSet) (*pflag.FlagSet, error) {
	fs := pflag.NewFlagSet(file.Name, pflag.ContinueOnError)
	for _, name := range file.OptionNames() {
		if fixed.Lookup(name) != nil {
			return nil, fmt.Errorf("template %s: option %s clashes with a run flag", file.Name, name)
		}

		opt := file.Options[name]
		usage := optionUsage(opt)
		switch {
		case opt.Array:
			fs.StringArray(name, nil, usage)
		case opt.Type.OrDefault() == template.TypeBool:
			fs.Bool(name, false, usage)
		default:
			fs.String(name, "", usage)
		}
	}
	return fs, nil
}

func optionUsage(opt template.Option) string {
	var b strings.Builder
	b.WriteString(opt.Description)
	var notes []string
	if t := opt.Type.OrDefault(); t != template.TypeString && t != template.TypeBool {
		notes = append(notes, string(t))
	}
	if opt.Array {
		notes = append(notes, "repeatable")
	}
	if opt.Required {
		notes = append(notes, "required")
	}
	if opt.Default != nil {
		notes = append(notes, fmt.Sprintf("default %v", opt.Default))
	}
	if len(notes) > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "(%s)", strings.Join(notes, ", "))
	}
	return b.String()
}

// templateArgs collects the raw values of the template options that were
// given on the command line.
func templateArgs(fs *pflag.FlagSet, file *template.File) (map[string][]string, error) {
	raw := make(map[string][]string)
	for _, name := range file.OptionNames() {
		if !fs.Changed(name) {
			continue
		}
		if file.Options[name].Array {
			values, err := fs.GetStringArray(name)
			if err != nil {
				return nil, err
			}
			raw[name] = values
			continue
		}
		raw[name] = []string{fs.Lookup(name).Value.String()}
	}
	return raw, nil
}

func printRunHelp(cmd *cobra.Command, templateFlags *pflag.FlagSet) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Long, cmd.UseLine())

	var f runFlags
	fixed := pflag.NewFlagSet("run", pflag.ContinueOnError)
	f.register(fixed)
	fmt.Fprintf(w, "\nFlags:\n%s", fixed.FlagUsages())

	if templateFlags != nil && templateFlags.HasFlags() {
		fmt.Fprintf(w, "\nTemplate options:\n%s", templateFlags.FlagUsages())
	}
	if inherited := cmd.InheritedFlags(); inherited.HasFlags() {
		fmt.Fprintf(w, "\nGlobal Flags:\n%s", inherited.FlagUsages())
	}
	return nil
}

// runOutput prepares, sends and prints one template invocation.
type runOutput struct {
	out       io.Writer
	errOut    io.Writer
	runner    *prompt.Runner
	flags     *runFlags
	extractor *parser.Extractor
}

func (r *runOutput) once(ctx context.Context, req prompt.Request) error {
	p, err := r.runner.Prepare(ctx, req)
	if err != nil {
		return err
	}

	f := r.flags
	if f.verbose {
		fmt.Fprintf(r.errOut, "model: %s\ncontext size: %d\nprompt tokens: %d\n", modelLabel(p), p.ContextSize, p.Tokens)
		if p.System != "" {
			fmt.Fprintf(r.errOut, "system:\n%s\n", p.System)
		}
	}

	if f.dryRun {
		fmt.Fprintln(r.out, p.Prompt)
		return nil
	}
	if f.printPrompt || f.verbose {
		fmt.Fprintf(r.errOut, "%s\n\n", p.Prompt)
	}

	chunks, err := r.runner.Send(ctx, p)
	if err != nil {
		return err
	}

	if r.extractor != nil {
		err = r.printExtracted(chunks)
	} else {
		err = r.stream(chunks)
	}
	if err != nil {
		return err
	}

	if f.verbose {
		u := r.runner.Usage().Usage(p.Spec)
		fmt.Fprintf(r.errOut, "usage: %d prompt + %d completion tokens\n", u.PromptTokens, u.CompletionTokens)
	}
	return nil
}

func (r *runOutput) stream(chunks <-chan host.Chunk) error {
	var last string
	for chunk := range chunks {
		if chunk.Err != nil {
			drain(chunks)
			return chunk.Err
		}
		if chunk.Content == "" {
			continue
		}
		if _, err := io.WriteString(r.out, chunk.Content); err != nil {
			drain(chunks)
			return err
		}
		last = chunk.Content
	}
	if !strings.HasSuffix(last, "\n") {
		fmt.Fprintln(r.out)
	}
	return nil
}

func (r *runOutput) printExtracted(chunks <-chan host.Chunk) error {
	resp, err := host.Collect(chunks, nil)
	if err != nil {
		drain(chunks)
		return err
	}
	text, err := r.extractor.Apply(resp.Content)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, text)
	return nil
}

// watch runs req again each time the template named name changes, until
// ctx is cancelled. Failed runs are logged.
func (r *runOutput) watch(ctx context.Context, req prompt.Request, name string, logger *slog.Logger) error {
	changes, err := r.runner.Library().Watch(ctx)
	if err != nil {
		return err
	}
	logger.Info("watching template", slog.String("name", name))

	for changed := range changes {
		if changed != name {
			continue
		}
		if err := r.once(ctx, req); err != nil {
			logger.Error("run failed", slog.Any("error", err))
		}
	}
	return nil
}

func modelLabel(p *prompt.Prepared) string {
	if p.Spec.Model == "" {
		return "(none)"
	}
	return p.Spec.String()
}

func drain(chunks <-chan host.Chunk) {
	for range chunks {
	}
}
