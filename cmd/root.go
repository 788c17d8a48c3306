// Package cmd implements the command-line interface for tokgrab.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tokgrab-cli/tokgrab/color"
	"github.com/tokgrab-cli/tokgrab/constant"
	"github.com/tokgrab-cli/tokgrab/downloader"
	"github.com/tokgrab-cli/tokgrab/engine"
	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/icon"
	"github.com/tokgrab-cli/tokgrab/key"
	"github.com/tokgrab-cli/tokgrab/log"
	"github.com/tokgrab-cli/tokgrab/media"
	"github.com/tokgrab-cli/tokgrab/style"
	"github.com/tokgrab-cli/tokgrab/util"
	"github.com/tokgrab-cli/tokgrab/version"
	"github.com/tokgrab-cli/tokgrab/where"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, plain)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.Flags().StringP("quality", "q", "", "Preferred media quality (low, medium, high)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("quality", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"low", "medium", "high"}, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.DownloaderQuality, rootCmd.Flags().Lookup("quality")))

	rootCmd.Flags().StringP("output", "o", "", "Directory to save the downloaded media into")
	lo.Must0(viper.BindPFlag(key.DownloaderPath, rootCmd.Flags().Lookup("output")))

	rootCmd.Flags().BoolP("write-history", "H", true, "Persist completed downloads to the localized history")
	lo.Must0(viper.BindPFlag(key.HistorySaveOnDownload, rootCmd.Flags().Lookup("write-history")))

	rootCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file without confirmation")
	rootCmd.Flags().Bool("resolve-only", false, "Print the resolved media location instead of downloading it")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	// Initialize cleanup of localized temporary files on application startup.
	go func() {
		_ = util.Delete(where.Temp())
	}()
}

// rootCmd defines the entry point for the tokgrab application.
var rootCmd = &cobra.Command{
	Use:   constant.Tokgrab + " [url]",
	Short: "A multi-source command-line downloader for short-form videos",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - A multi-source command-line downloader for short-form videos"),
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		if len(args) == 0 {
			handleErr(cmd.Help())
			return
		}

		var (
			force       = lo.Must(cmd.Flags().GetBool("force"))
			resolveOnly = lo.Must(cmd.Flags().GetBool("resolve-only"))
		)

		handleErr(grab(args[0], force, resolveOnly))
	},
}

// grab resolves a reference through the engine and streams the winning
// candidate to disk.
func grab(reference string, force, resolveOnly bool) error {
	e, err := engine.New(engineConfig())
	if err != nil {
		return err
	}
	defer e.Close()
	e.Subscribe(&consoleListener{})

	defer func() { saveStats(e.Snapshot()) }()

	reference, err = e.Canonicalize(context.Background(), reference)
	if err != nil {
		return err
	}

	result, err := e.Resolve(context.Background(), reference)
	if err != nil {
		return err
	}

	if resolveOnly {
		fmt.Println(result.String())
		fmt.Println(result.URL)
		return nil
	}

	path := downloader.Destination(reference, *result)
	if exists, _ := filesystem.API().Exists(path); exists && !force {
		overwrite := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("%s already exists, overwrite it?", path),
		}
		if err = survey.AskOne(prompt, &overwrite); err != nil {
			return err
		}
		if !overwrite {
			return nil
		}
	}

	eraser := func() {}
	path, err = downloader.Download(context.Background(), e.Client(), reference, *result, func(written, total int64) {
		eraser()
		eraser = util.PrintErasable(fmt.Sprintf(
			"%s Downloading %s",
			icon.Get(icon.Download),
			progressLabel(written, total),
		))
	})
	eraser()
	if err != nil {
		return err
	}

	fmt.Printf(
		"%s saved %s to %s\n",
		style.Fg(color.Green)(icon.Get(icon.Success)),
		style.Fg(color.Purple)(result.String()),
		style.Fg(color.Yellow)(path),
	)
	return nil
}

func progressLabel(written, total int64) string {
	const megabyte = 1 << 20
	if total <= 0 {
		return fmt.Sprintf("%.1f MiB", float64(written)/megabyte)
	}
	return fmt.Sprintf("%.0f%% of %.1f MiB", float64(written)/float64(total)*100, float64(total)/megabyte)
}

// engineConfig translates the viper-backed settings into an immutable engine
// configuration. Durations are configured in milliseconds.
func engineConfig() engine.Config {
	config := engine.DefaultConfig()

	config.Timeout = time.Duration(viper.GetInt(key.DownloaderTimeout)) * time.Millisecond
	config.MaxRetries = viper.GetInt(key.DownloaderRetries)
	config.Concurrency = viper.GetInt(key.DownloaderConcurrency)
	config.CacheResults = viper.GetBool(key.CacheEnabled)
	config.MaxCacheAge = time.Duration(viper.GetInt(key.CacheMaxAge)) * time.Millisecond
	config.Proxy = viper.GetString(key.DownloaderProxy)
	config.ExtraHeaders = parseHeaders(viper.GetStringSlice(key.DownloaderHeaders))

	if quality, err := media.ParseQuality(viper.GetString(key.DownloaderQuality)); err == nil {
		config.PreferredQuality = quality
	} else {
		log.Warnf("falling back to high quality: %v", err)
	}

	return config
}

// parseHeaders splits "Name: Value" pairs, skipping malformed entries.
func parseHeaders(pairs []string) map[string]string {
	headers := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, ":")
		if !ok || strings.TrimSpace(name) == "" {
			log.Warnf("skipping malformed header %q", pair)
			continue
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers
}

// consoleListener renders engine lifecycle notifications as ephemeral
// terminal lines.
type consoleListener struct {
	engine.BaseListener
	eraser func()
}

func (c *consoleListener) Started(reference string) {
	c.erase()
	c.eraser = util.PrintErasable(fmt.Sprintf("%s Resolving %s...", icon.Get(icon.Progress), reference))
}

func (c *consoleListener) Progressed(message string) {
	c.erase()
	c.eraser = util.PrintErasable(fmt.Sprintf("%s %s...", icon.Get(icon.Lightning), util.Capitalize(message)))
}

func (c *consoleListener) Succeeded(result media.Media, elapsed time.Duration) {
	c.erase()
	fmt.Printf(
		"%s Resolved via %s in %s\n",
		icon.Get(icon.Success),
		style.Fg(color.Purple)(result.Provider),
		style.Faint(elapsed.Round(time.Millisecond).String()),
	)
}

func (c *consoleListener) Failed(error) {
	c.erase()
}

func (c *consoleListener) DebugLogged(level, message string) {
	if level == "warn" {
		log.Warn(message)
		return
	}
	log.Debug(message)
}

func (c *consoleListener) erase() {
	if c.eraser != nil {
		c.eraser()
		c.eraser = nil
	}
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
