package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rizkirmdhn/vidloader/internal/common/config"
	"github.com/rizkirmdhn/vidloader/internal/common/logger"
	"github.com/rizkirmdhn/vidloader/internal/common/messaging"
	"github.com/rizkirmdhn/vidloader/internal/controller"
	"github.com/rizkirmdhn/vidloader/internal/launcher"
	"github.com/rizkirmdhn/vidloader/internal/video"
	"github.com/rizkirmdhn/vidloader/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// eventSource tags bus events published by the CLI
const eventSource = "cli"

// newLauncher builds the launcher used by the download command
var newLauncher = func(cfg *config.BrowserConfig, log *logrus.Logger) video.Launcher {
	return launcher.NewChromeLauncher(cfg, log)
}

// app holds what every command needs once the configuration is loaded
type app struct {
	cfg  *config.Config
	log  *logrus.Logger
	out  io.Writer
	bus  *messaging.RabbitMQClient
	ctrl *controller.Controller
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		configDir string
		a         = &app{out: out}
	)

	rootCmd := &cobra.Command{
		Use:          "vidloader",
		Short:        "Look up and download videos through the backend",
		Long:         "vidloader validates a video URL, looks up its metadata and starts the backend download in a headless browser.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFrom(configDir)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.New(cfg)
			a.log.SetOutput(cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.bus != nil {
				a.bus.Close()
			}
		},
	}

	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding config.json and .env")

	rootCmd.AddCommand(infoCmd(a))
	rootCmd.AddCommand(downloadCmd(a))

	return rootCmd
}

// setup wires the controller. The event bus is only dialed when publish is set.
func (a *app) setup(publish bool) {
	httpClient := &http.Client{Timeout: a.cfg.Backend.RequestTimeout}
	remote := video.NewRemoteFetcher(a.cfg.Backend.BaseURL, httpClient, a.log)
	trigger := video.NewTrigger(a.cfg.Backend.BaseURL, newLauncher(&a.cfg.Browser, a.log), a.log)
	a.ctrl = controller.New(remote, video.NewSyntheticFetcher(), trigger, a.log)

	if publish && a.cfg.RabbitMq.URL != "" {
		bus, err := messaging.NewRabbitMQClient(&a.cfg.RabbitMq, a.log)
		if err != nil {
			// Publishing is best effort
			a.log.WithFields(logrus.Fields{
				"component": "cli",
				"error":     err,
			}).Warn("Event bus unavailable, continuing without it")
			return
		}
		a.bus = bus
		a.ctrl.SetPublisher(bus, eventSource)
	}
}

// infoCmd prints the metadata of a video
func infoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <url>",
		Short: "Show video metadata",
		Long:  "Info looks up the title, duration and available qualities of a video URL.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if video.DetectPlatform(args[0]) == models.PlatformInstagram {
				return fmt.Errorf("instagram links have no lookup, use the download command")
			}
			a.setup(false)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := a.ctrl.SetURL(args[0]); err != nil {
				return err
			}
			if err := a.ctrl.Submit(ctx); err != nil {
				return err
			}

			printInfo(a.out, a.ctrl.Snapshot().VideoInfo)
			return nil
		},
	}
}

// downloadCmd looks up a video and downloads it with the chosen options
func downloadCmd(a *app) *cobra.Command {
	var format, quality, outDir string

	downloadCmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a video",
		Long:  "Download looks up a video URL and saves the backend download into the output directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir != "" {
				a.cfg.Browser.DownloadDir = outDir
			}
			a.setup(true)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.download(ctx, args[0], format, quality)
		},
	}

	downloadCmd.Flags().StringVarP(&format, "format", "f", models.DefaultFormat, "Output format (mp4 or mp3)")
	downloadCmd.Flags().StringVarP(&quality, "quality", "q", models.DefaultQuality, "Quality label, e.g. 720p")
	downloadCmd.Flags().StringVarP(&outDir, "output", "o", "", "Download directory (defaults to browser.downloadDir)")

	return downloadCmd
}

func (a *app) download(ctx context.Context, rawURL, format, quality string) error {
	if err := a.ctrl.SetFormat(strings.ToLower(format)); err != nil {
		return err
	}
	if err := a.ctrl.SetQuality(quality); err != nil {
		return err
	}
	if err := a.ctrl.SetURL(rawURL); err != nil {
		return err
	}

	// Instagram downloads during Submit
	if err := a.ctrl.Submit(ctx); err != nil {
		return err
	}

	s := a.ctrl.Snapshot()
	if s.VideoInfo == nil {
		fmt.Fprintln(a.out, "Download started")
		return nil
	}

	printInfo(a.out, s.VideoInfo)
	if err := a.ctrl.Download(ctx); err != nil {
		return err
	}

	s = a.ctrl.Snapshot()
	if len(s.History) > 0 {
		entry := s.History[0]
		fmt.Fprintf(a.out, "Downloaded %q as %s into %s\n", entry.Title, entry.Format, a.cfg.Browser.DownloadDir)
	}
	return nil
}

func printInfo(out io.Writer, info *models.VideoInfo) {
	if info == nil {
		return
	}

	fmt.Fprintf(out, "Title:     %s\n", info.Title)
	fmt.Fprintf(out, "Platform:  %s\n", info.Platform)
	if info.Duration != "" {
		fmt.Fprintf(out, "Duration:  %s\n", video.FormatDuration(info.Duration))
	}
	if len(info.Quality) > 0 {
		fmt.Fprintf(out, "Qualities: %s\n", strings.Join(info.Quality, ", "))
	}
	if info.Synthetic {
		fmt.Fprintln(out, "Note:      placeholder metadata, the backend has no lookup for this platform")
	}
}
