package commands

import (
	"redditbot/internal/components/serviceutil"
	"redditbot/internal/publish/browser"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(installBrowserCmd)
}

var installBrowserCmd = &cobra.Command{
	Use:   "install-browser",
	Short: "Downloads the browser driver and chromium used by publish --browser.",
	Run: func(cmd *cobra.Command, args []string) {
		err := browser.Install()
		if err != nil {
			serviceutil.Fatal("failed to install browser", err)
		}
	},
}
