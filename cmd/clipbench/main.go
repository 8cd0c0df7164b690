package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/keagan/clipbench/internal/config"
	"github.com/keagan/clipbench/internal/gui"
	"github.com/keagan/clipbench/internal/logging"
	"github.com/keagan/clipbench/internal/media"
	"github.com/keagan/clipbench/internal/thumbs"
	"github.com/keagan/clipbench/pkg/util"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clipbench",
	Short: "clipbench - video timeline editor",
	Long:  "An interactive timeline editor that previews a video with a thumbnail strip and marks non-overlapping chunks for extraction.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(thumbsCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(configCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit [input video]",
	Short: "Open the timeline editor",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		input := ""
		if len(args) > 0 {
			input = args[0]
		}

		gui.Run(log.Logger, cfg, input)
		return nil
	},
}

var thumbsOutDir string

var thumbsCmd = &cobra.Command{
	Use:   "thumbs [input video]",
	Short: "Generate the thumbnail strip and write it as JPEG files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		ctx := cmd.Context()

		src, err := media.Open(log.Logger, args[0], media.Options{
			FFmpegPath: cfg.FFmpeg.BinaryPath,
			ProbePath:  cfg.FFmpeg.ProbePath,
		})
		if err != nil {
			return err
		}
		if err := src.Refresh(ctx); err != nil {
			return err
		}

		dur := src.Duration()
		if !(dur > 0) {
			return fmt.Errorf("could not determine duration of %s", args[0])
		}

		sampler := thumbs.NewSampler(log.Logger, thumbs.Options{
			Width:       cfg.Thumbnails.Width,
			Height:      cfg.Thumbnails.Height,
			Quality:     cfg.Thumbnails.Quality,
			SettleDelay: cfg.Thumbnails.SettleDelayDuration(),
			SeekTimeout: cfg.Seek.TimeoutDuration(),
		})

		strip, err := sampler.Generate(ctx, src, dur, cfg.Thumbnails.Count)
		if err != nil {
			return err
		}

		if err := util.EnsureDir(thumbsOutDir); err != nil {
			return err
		}
		for _, t := range strip {
			name := filepath.Join(thumbsOutDir, fmt.Sprintf("thumb_%02d.jpg", t.Index))
			if err := os.WriteFile(name, t.JPEG, 0644); err != nil {
				return err
			}
		}

		log.Info().
			Int("captured", len(strip)).
			Str("dir", thumbsOutDir).
			Msg("thumbnail strip written")
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [input video]",
	Short: "Print media metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		src, err := media.Open(log.Logger, args[0], media.Options{
			FFmpegPath: cfg.FFmpeg.BinaryPath,
			ProbePath:  cfg.FFmpeg.ProbePath,
		})
		if err != nil {
			return err
		}

		info, err := src.Info(cmd.Context())
		if err != nil {
			return err
		}

		log.Info().
			Str("file", info.FilePath).
			Float64("duration", info.Duration).
			Int("width", info.Width).
			Int("height", info.Height).
			Float64("fps", info.FPS).
			Str("codec", info.Codec).
			Msg("probe complete")
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to ./config.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		if err := cfg.Save("./config.yaml"); err != nil {
			return err
		}
		log.Info().Str("path", "./config.yaml").Msg("config written")
		return nil
	},
}

func init() {
	thumbsCmd.Flags().StringVarP(&thumbsOutDir, "out", "o", "./thumbs", "output directory")
	configCmd.AddCommand(configInitCmd)
}
