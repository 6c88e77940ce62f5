package main

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stepbot/pattern/command"
	"github.com/stepbot/pattern/config"
	"github.com/stepbot/pattern/midiexport"
	"github.com/stepbot/pattern/noteskin"
	"github.com/stepbot/pattern/render"
	"github.com/stepbot/pattern/reply"
	"github.com/stepbot/pattern/server"
	"github.com/stepbot/pattern/version"
)

// app is the state shared by the subcommands, set up before any of them
// runs.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "pattern-draw",
		Short: "Draw rhythm game note patterns",
		Long: `pattern-draw draws note patterns written in a terse notation, e.g.
"[13]4[32]1", as images or MIDI drum loops, or serves them over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "pattern-draw.yml", "Configuration file. Defaults are used if it doesn't exist.")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error. Overrides the configuration.")
	root.AddCommand(a.renderCmd(), a.midiCmd(), a.serveCmd(), a.noteskinsCmd(), versionCmd())
	return root
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return nil
}

// userError prints the user facing explanation of err before returning it.
func (a *app) userError(cmd *cobra.Command, err error, skins []string) error {
	if reply.Known(err) {
		fmt.Fprintln(cmd.ErrOrStderr(), reply.Messages{Noteskins: skins}.Error(err))
	}
	return err
}

// output opens path for writing; "-" is standard output.
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create output file: %w", err)
	}
	return f, f.Close, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	w, closeFn, err := output(cmd, path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		closeFn()
		return fmt.Errorf("could not write output: %w", err)
	}
	return closeFn()
}

func (a *app) renderCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "render [modifiers and pattern...]",
		Short: "Render a pattern as a PNG image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skins, err := a.cfg.Registry()
			if err != nil {
				return err
			}
			req, err := command.Parse(strings.Join(args, " "), skins.Names())
			if err != nil {
				return a.userError(cmd, err, skins.Names())
			}
			recipe, err := req.Recipe(skins, a.cfg.Limits)
			if err != nil {
				return a.userError(cmd, err, skins.Names())
			}
			img, err := render.Draw(recipe)
			if err != nil {
				return a.userError(cmd, err, skins.Names())
			}
			var buf bytes.Buffer
			if err := png.Encode(&buf, img); err != nil {
				return fmt.Errorf("could not encode png: %w", err)
			}
			a.logger.Debug("rendered", "width", img.Bounds().Dx(), "height", img.Bounds().Dy(), "keymode", recipe.Keymode)
			return writeOutput(cmd, outPath, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "pattern.png", `Output file, or "-" for standard output.`)
	return cmd
}

func (a *app) midiCmd() *cobra.Command {
	var (
		outPath string
		bpm     float64
	)
	cmd := &cobra.Command{
		Use:   "midi [modifiers and pattern...]",
		Short: "Write a pattern as a MIDI drum loop",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := command.Parse(strings.Join(args, " "), nil)
			if err != nil {
				return a.userError(cmd, err, nil)
			}
			segments, err := req.Patterns(a.cfg.Limits.MaxRows)
			if err != nil {
				return a.userError(cmd, err, nil)
			}
			var buf bytes.Buffer
			if err := midiexport.Write(&buf, segments, midiexport.Options{BPM: bpm, Keymode: req.Keymode}); err != nil {
				return a.userError(cmd, err, nil)
			}
			return writeOutput(cmd, outPath, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "pattern.mid", `Output file, or "-" for standard output.`)
	cmd.Flags().Float64Var(&bpm, "bpm", 120, "Tempo in beats per minute.")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve patterns over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			skins, err := a.cfg.Registry()
			if err != nil {
				return err
			}
			a.logger.Info("loaded noteskins", "names", skins.Names())
			if listen == "" {
				listen = a.cfg.Listen
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(skins, a.cfg.Limits, a.logger).Run(ctx, listen)
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Address to listen on. Overrides the configuration.")
	return cmd
}

func (a *app) noteskinsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "noteskins",
		Short: "List the configured noteskins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			skins, err := a.cfg.Registry()
			if err != nil {
				return err
			}
			for _, name := range skins.Names() {
				skin, _ := skins.Get(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-10s %dpx%s\n", name, skin.Family(), skin.SpriteResolution(), keymodes(skin))
			}
			return nil
		},
	}
}

func keymodes(skin *noteskin.Noteskin) string {
	var ret []string
	for k := 1; k <= server.MaxKeymodeListed; k++ {
		if skin.SupportsKeymode(k) {
			ret = append(ret, fmt.Sprintf("%dk", k))
		}
	}
	if skin.SupportsKeymode(server.MaxKeymodeListed + 1) {
		return "  any keymode"
	}
	return "  " + strings.Join(ret, " ")
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.VersionOrHash)
		},
	}
}
