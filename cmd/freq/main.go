package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hoangsonww/freq/config"
	"github.com/hoangsonww/freq/internal/agent"
	"github.com/hoangsonww/freq/internal/history"
	"github.com/hoangsonww/freq/internal/reader"
)

var (
	cfgFile      string
	bufferSize   int
	noDecompress bool
	quiet        bool
	historyLimit int
)

// loadConfig falls back to pure defaults when the default config file is
// absent; an explicitly given path must exist.
func loadConfig() (*config.Config, error) {
	if cfgFile == config.DefaultPath {
		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	return config.Load(cfgFile)
}

func main() {
	root := &cobra.Command{
		Use:   "freq <pattern> [file...]",
		Short: "freq - count the occurrences of a literal pattern",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := []byte(args[0])
			if len(pattern) == 0 {
				return fmt.Errorf("pattern must be non-empty")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("buffer-size") {
				cfg.Reader.BufferSize = bufferSize
				if cfg.Limits.Burst < bufferSize {
					cfg.Limits.Burst = bufferSize
				}
			}
			if noDecompress {
				off := false
				cfg.Input.AutoDecompress = &off
			}
			if quiet {
				cfg.Monitoring.LogLevel = "error"
			}

			a, err := agent.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			total, err := a.Count(context.Background(), pattern, args[1:])
			if err != nil {
				return err
			}
			fmt.Println(total)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath, "Path to config file")
	root.Flags().IntVarP(&bufferSize, "buffer-size", "b", reader.DefaultChunkSize,
		"The size of the buffer used to read the file. Larger buffers use more memory, but might be faster.")
	root.Flags().BoolVar(&noDecompress, "no-decompress", false, "Do not auto-decompress gzip/zstd inputs")
	root.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")

	histCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(historyLimit)
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Printf("%s  pattern=%q input=%s count=%d bytes=%d duration=%s\n",
					rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
					rec.Pattern, rec.Input, rec.Count, rec.Bytes, rec.Duration)
			}
			return nil
		},
	}
	histCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of records to show")

	root.AddCommand(histCmd)
	if err := root.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
