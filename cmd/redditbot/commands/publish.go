package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"redditbot/internal/components/serviceutil"
	"redditbot/internal/post"
	"redditbot/internal/publish"
	"redditbot/internal/publish/browser"

	"github.com/spf13/cobra"
)

var (
	publishSubreddit string
	publishDryRun    bool
	publishBrowser   bool
	publishHold      bool
	publishForce     bool
)

func init() {
	publishCmd.Flags().StringVarP(&publishSubreddit, "subreddit", "s", "", "The subreddit to post to, defaults to publish.subreddit.")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "Only print the parsed post.")
	publishCmd.Flags().BoolVar(&publishBrowser, "browser", false, "Post through the web UI in a browser instead of the API.")
	publishCmd.Flags().BoolVar(&publishHold, "hold", false, "With --browser, keep the browser open until Enter is pressed.")
	publishCmd.Flags().BoolVar(&publishForce, "force", false, "Publish even if a similar title went to the subreddit recently.")
	rootCmd.AddCommand(publishCmd)
}

func newPublisher() publish.Publisher {
	settings := mustSettings()
	creds := mustCredentials()

	if !publishBrowser {
		client, err := newRedditClient(creds)
		if err != nil {
			serviceutil.Fatal("failed to create reddit client", err)
		}
		return publish.NewAPIPublisher(client, tel)
	}

	err := creds.ValidateLogin()
	if err != nil {
		serviceutil.Fatal("browser publishing needs a login", err)
	}
	if creds.ProxyServer != "" {
		slog.Info("using proxy", "server", creds.ProxyServer)
	}
	slog.Info("using browser profile", "dir", settings.Browser.ProfileDir)

	opts := browser.Options{
		LaunchOptions: browser.LaunchOptions{
			ProfileDir:  settings.Browser.ProfileDir,
			Headless:    settings.Browser.Headless,
			SlowMo:      time.Duration(settings.Browser.SlowMoMs) * time.Millisecond,
			ProxyServer: creds.ProxyServer,
		},
		ScreenshotDir: settings.Browser.ScreenshotDir,
		Username:      creds.Username,
		Password:      creds.Password,
	}
	if publishHold {
		opts.Hold = os.Stdin
	}
	return browser.NewPublisher(opts, tel)
}

var publishCmd = &cobra.Command{
	Use:   "publish <template.md> [--subreddit <name>] [--dry-run] [--browser]",
	Short: "Publishes a markdown template post to a subreddit.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		content, err := post.ParseFile(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read template", err)
		}

		settings := mustSettings()
		if publishSubreddit == "" {
			publishSubreddit = settings.Publish.Subreddit
		}

		method := "api"
		if publishBrowser {
			method = "browser"
		}
		fmt.Printf("--- Preparing to post to r/%s via %s ---\n", publishSubreddit, method)
		fmt.Printf("Title: %s\n", content.Title)
		fmt.Printf("Body Preview: %s\n", content.Preview(100))

		if publishDryRun {
			fmt.Println("[DRY RUN] Nothing was published.")
			return
		}

		db := mustStore(settings)
		defer db.Close()

		guard := publish.NewGuard(newPublisher(), db, publishForce, tel)
		result, err := guard.Publish(cmd.Context(), content, publishSubreddit)
		if result.Screenshot != "" {
			fmt.Printf("Screenshot: %s\n", result.Screenshot)
		}
		if err != nil {
			serviceutil.Fatal("failed to publish", err)
		}

		switch result.Status {
		case publish.StatusSubmitted:
			fmt.Printf("Post submitted successfully: %s\n", result.URL)
		case publish.StatusUnverified:
			slog.Warn("submission could not be verified, the post may still exist, check the screenshot")
		default:
			slog.Error("publishing failed", "status", result.Status)
			os.Exit(1)
		}
	},
}
