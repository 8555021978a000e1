package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// command for inspecting one account from the terminal
var accountCmd = &cobra.Command{
	Use:   "account <user>",
	Short: "show debt, collateral and health factor of one account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		eng := provideEngine(database, provideSystem())
		summary, err := eng.AccountSummary(ctx, args[0])
		if err != nil {
			cmd.PrintErrln("fetch account error:", err)
			return
		}

		data, _ := json.MarshalIndent(summary, "", "  ")
		cmd.Println(string(data))
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
}
