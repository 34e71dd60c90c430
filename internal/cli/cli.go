// Package cli defines the courtside command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rbright/courtside/internal/version"
)

// Global carries persistent flags shared by every command.
type Global struct {
	ConfigPath string
}

// AnalyzeOptions are the one-shot analyze inputs. Empty strings mean "use config default".
type AnalyzeOptions struct {
	ImagePath      string
	VideoPath      string
	TranscriptFile string
	Transcript     string
	Quarter        string
	Category       string
	Policy         string
	// Copy pipes the insight to the clipboard command after printing it.
	Copy bool
}

// ServeOptions override the [server] config section.
type ServeOptions struct {
	Bind   string
	Engine string
}

// ConfigInitOptions control `config init`.
type ConfigInitOptions struct {
	Path      string
	Overwrite bool
}

// Handlers executes parsed commands.
type Handlers interface {
	Analyze(ctx context.Context, global Global, opts AnalyzeOptions) error
	Session(ctx context.Context, global Global) error
	Serve(ctx context.Context, global Global, opts ServeOptions) error
	Doctor(ctx context.Context, global Global) error
	ConfigInit(ctx context.Context, global Global, opts ConfigInitOptions) error
	ConfigValidate(ctx context.Context, global Global) error
}

// UsageError marks invalid invocations; callers exit with status 2.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

// IsUsage reports whether err came from an invalid invocation.
func IsUsage(err error) bool {
	var usage *UsageError
	return errors.As(err, &usage)
}

// ErrFailed signals a command that already reported its failure and only needs a non-zero exit.
var ErrFailed = errors.New("command failed")

// NewRoot builds the courtside command tree bound to handlers.
func NewRoot(handlers Handlers) *cobra.Command {
	global := &Global{}

	root := &cobra.Command{
		Use:           "courtside",
		Short:         "Find the momentum-shifting three in a basketball game",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetVersionTemplate(version.String() + "\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})
	root.PersistentFlags().StringVarP(&global.ConfigPath, "config", "c", "", "Config file path (default: $XDG_CONFIG_HOME/courtside/config.toml)")

	root.AddCommand(newAnalyzeCommand(handlers, global))
	root.AddCommand(newSessionCommand(handlers, global))
	root.AddCommand(newServeCommand(handlers, global))
	root.AddCommand(newDoctorCommand(handlers, global))
	root.AddCommand(newConfigCommand(handlers, global))
	root.AddCommand(newVersionCommand())

	return root
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return &UsageError{Err: err}
	}
	return nil
}

func newAnalyzeCommand(handlers Handlers, global *Global) *cobra.Command {
	var opts AnalyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Submit one analysis and print the insight",
		Long: `Submit one analysis request and print the insight verbatim to stdout.

A court image or a game video may be attached (not both). The transcript comes from
--transcript or --transcript-file (not both).`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := exclusive("image", opts.ImagePath, "video", opts.VideoPath); err != nil {
				return err
			}
			if err := exclusive("transcript", opts.Transcript, "transcript-file", opts.TranscriptFile); err != nil {
				return err
			}
			return handlers.Analyze(cmd.Context(), *global, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.ImagePath, "image", "", "Court diagram image file")
	flags.StringVar(&opts.VideoPath, "video", "", "Game video file")
	flags.StringVar(&opts.TranscriptFile, "transcript-file", "", "Play-by-play transcript file")
	flags.StringVar(&opts.Transcript, "transcript", "", "Play-by-play transcript text")
	flags.StringVarP(&opts.Quarter, "quarter", "q", "", `Quarter filter ("Full Game", Q1-Q4)`)
	flags.StringVar(&opts.Category, "category", "", `Court category ("High School", College, Professional)`)
	flags.StringVar(&opts.Policy, "policy", "", "Validation policy override (strict, media_optional, image_required)")
	flags.BoolVar(&opts.Copy, "copy", false, "Also copy the insight with output.clipboard_cmd")
	return cmd
}

func exclusive(nameA, valueA, nameB, valueB string) error {
	if strings.TrimSpace(valueA) != "" && strings.TrimSpace(valueB) != "" {
		return &UsageError{Err: fmt.Errorf("--%s and --%s are mutually exclusive", nameA, nameB)}
	}
	return nil
}

func newSessionCommand(handlers Handlers, global *Global) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Run an interactive analysis session on stdin",
		Long: `Run a line-oriented analysis session. Commands:

  image PATH            load a court image (clears the video)
  video PATH            load a game video (clears the image)
  clear                 drop the selected media
  transcript-file PATH  load the transcript from a file
  transcript TEXT       set the transcript text
  quarter Q             "Full Game", Q1, Q2, Q3, Q4
  category C            "High School", College, Professional
  show                  print the pending request
  submit                send the analysis request
  status                print the submission status
  result                print the last insight
  copy                  copy the last insight with output.clipboard_cmd
  wait                  wait for pending loads and submissions
  quit                  leave the session`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Session(cmd.Context(), *global)
		},
	}
}

func newServeCommand(handlers Handlers, global *Global) *cobra.Command {
	var opts ServeOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis service",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Serve(cmd.Context(), *global, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Bind, "bind", "", "Listen address override")
	cmd.Flags().StringVar(&opts.Engine, "engine", "", "Engine override (openai, gemini)")
	return cmd
}

func newDoctorCommand(handlers Handlers, global *Global) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run configuration and service checks",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), *global)
		},
	}
}

func newConfigCommand(handlers Handlers, global *Global) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var initOpts ConfigInitOptions
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ConfigInit(cmd.Context(), *global, initOpts)
		},
	}
	initCmd.Flags().StringVarP(&initOpts.Path, "path", "p", "", "Destination (default: resolved config path)")
	initCmd.Flags().BoolVar(&initOpts.Overwrite, "overwrite", false, "Replace an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ConfigValidate(cmd.Context(), *global)
		},
	}

	configCmd.AddCommand(initCmd, validateCmd)
	return configCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
