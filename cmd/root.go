package cmd

import (
	"context"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"go-pianoroll/config"
	"go-pianoroll/debug"
	"go-pianoroll/midi"
	"go-pianoroll/sequencer"
	"go-pianoroll/transport"
)

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "go-pianoroll",
	Short: "Piano-roll sequencer",
	Long:  `Edit a one-measure piano roll, loop it through a MIDI output and export it as a .mid file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugFlag {
			if err := debug.Enable(); err != nil {
				return err
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		debug.Disable()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(commandContext(cmd))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "write a debug log to ~/.config/go-pianoroll/debug.log")
}

func Execute() {
	cobra.CheckErr(rootCmd.ExecuteContext(context.Background()))
}

// commandContext carries the debug logger for charmlog.FromContext
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return charmlog.WithContext(ctx, debug.Logger())
}

// session is everything a surface needs to drive playback
type session struct {
	cfg      *config.Config
	player   *sequencer.PlaybackController
	exporter *sequencer.MidiExporter
	close    func()
}

func openSession(ctx context.Context) (*session, error) {
	logger := charmlog.FromContext(ctx)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	mc, err := cfg.MusicContext()
	if err != nil {
		return nil, err
	}

	clock := transport.NewClock(cfg.Music.Tempo)

	var synth sequencer.Synthesizer = midi.NullSynth{}
	closeSynth := func() {}
	if port := cfg.SynthOutput.PortName; port != "" {
		out, err := midi.OpenOutput(port, uint8(cfg.SynthOutput.Channel), clock)
		if err != nil {
			return nil, err
		}
		synth = out
		closeSynth = out.Close
	}
	logger.Debug("session", "tempo", cfg.Music.Tempo, "division", mc.Division(), "port", cfg.SynthOutput.PortName)

	player := sequencer.NewPlaybackController(sequencer.NewTrack(), mc, clock, synth)
	return &session{
		cfg:      cfg,
		player:   player,
		exporter: sequencer.NewMidiExporter(midi.SMFEncoder{Name: "go-pianoroll"}, nil),
		close: func() {
			player.Stop()
			closeSynth()
			midi.CloseDriver()
		},
	}, nil
}
