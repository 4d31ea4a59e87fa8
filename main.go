package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"go-pianoroll/debug"
)

// Command-line configuration. Empty values fall back to config.json.
var opts struct {
	project string
	resume  bool
	synth   string
	port    string
	channel int
	model   string
	palette string
	noMIDI  bool
	debug   bool
}

var rootCmd = &cobra.Command{
	Use:   "go-pianoroll [file.mid]",
	Short: "A terminal piano roll that continues your melodies",
	Long: `go-pianoroll is a looping piano-roll sketchpad for the terminal.

Draw notes with the mouse or keyboard, play along on a MIDI keyboard or
the home row, and press n to have a Markov model continue the melody.
An optional .mid argument is imported as the starting sequence.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: enableDebug,
	RunE:              run,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the key bindings",
	Run: func(cmd *cobra.Command, args []string) {
		printKeys(cmd.OutOrStdout())
	},
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI input and output ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printPorts(cmd.OutOrStdout())
	},
}

var projectsCmd = &cobra.Command{
	Use:   "projects [name]",
	Short: "List saved projects, or the saves of one project",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withStore(printProjects),
}

var projectsNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create an empty project",
	Args:  cobra.ExactArgs(1),
	RunE:  withStore(createProject),
}

var projectsRmCmd = &cobra.Command{
	Use:   "rm <name> [save.json]",
	Short: "Delete a project, or one of its saves",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  withStore(removeProject),
}

var projectsMvCmd = &cobra.Command{
	Use:   "mv <name> <new-name> | mv <name> <save.json> <save-name>",
	Short: "Rename a project, or the name of one of its saves",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  withStore(moveProject),
}

var trainCmd = &cobra.Command{
	Use:   "train <out.json> <source>...",
	Short: "Build a Markov checkpoint from .mid files or directories",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return trainCheckpoint(cmd.OutOrStdout(), args[0], args[1:])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&opts.project, "project", "p", "",
		"Project name for saves and exports")
	rootCmd.Flags().BoolVarP(&opts.resume, "resume", "r", false,
		"Load the latest save of the project")
	rootCmd.Flags().StringVar(&opts.synth, "synth", "",
		"Output engine: synth, midi or none")
	rootCmd.Flags().StringVar(&opts.port, "port", "",
		"MIDI output port (with --synth midi; empty picks the first)")
	rootCmd.Flags().IntVar(&opts.channel, "channel", 0,
		"MIDI output channel 1-16")
	rootCmd.Flags().StringVarP(&opts.model, "model", "m", "",
		"Model checkpoint: basic, a .json checkpoint, a .mid file or a directory")
	rootCmd.Flags().StringVar(&opts.palette, "palette", "",
		"GIMP .gpl palette for the UI")
	rootCmd.Flags().BoolVar(&opts.noMIDI, "no-midi", false,
		"Do not scan for MIDI keyboards")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false,
		"Write debug log to ~/.config/go-pianoroll/debug.log")

	projectsCmd.AddCommand(projectsNewCmd, projectsRmCmd, projectsMvCmd)
	rootCmd.AddCommand(keysCmd, portsCmd, projectsCmd, trainCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
