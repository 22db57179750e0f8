package commands

import (
	"github.com/spf13/cobra"

	"github.com/sweeplab/sweeper/internal/config"
)

// boardFlags are the flags shared by commands that need a board to play on.
type boardFlags struct {
	configPath string
	preset     string
	height     int
	width      int
	mines      int
}

func (f *boardFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to sweeper.yml")
	cmd.Flags().StringVar(&f.preset, "preset", "", "Board preset: beginner, intermediate, or expert")
	cmd.Flags().IntVar(&f.height, "height", 0, "Board height (use with --width and --mines)")
	cmd.Flags().IntVar(&f.width, "width", 0, "Board width (use with --height and --mines)")
	cmd.Flags().IntVar(&f.mines, "mines", 0, "Mine count (use with --height and --width)")
}

// load resolves the effective configuration: the config file (or defaults)
// with any board flags layered on top. Flags replace the file's board
// wholesale, so a preset flag cannot mix with the file's explicit dimensions.
func (f *boardFlags) load() (*config.SweeperConfig, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	switch {
	case f.preset != "":
		cfg.Board = config.BoardConfig{Preset: f.preset}
	case f.height != 0 || f.width != 0 || f.mines != 0:
		cfg.Board = config.BoardConfig{Height: f.height, Width: f.width, Mines: f.mines}
	}

	if err := cfg.Board.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
