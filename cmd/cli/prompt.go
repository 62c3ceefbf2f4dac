package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "View and respond to the current nudge",
}

var promptShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the prompt currently waiting for a response",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiRequest("GET", "/api/v1/prompt", nil)
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(resp)
		}
		task, _ := resp["task"].(map[string]interface{})
		if task == nil {
			fmt.Println("No active prompt.")
			return nil
		}
		fmt.Printf("Revisit: %s (%s)\n", task["title"], task["id"])
		return nil
	},
}

var promptRespondCmd = &cobra.Command{
	Use:   "respond <done|snooze|dismiss>",
	Short: "Respond to the current prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiRequest("POST", "/api/v1/prompt/respond", map[string]string{
			"action": args[0],
		})
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(resp)
		}
		if c, ok := resp["celebration"].(map[string]interface{}); ok {
			fmt.Println(c["message"])
		} else {
			fmt.Printf("Recorded: %s\n", args[0])
		}
		return nil
	},
}

func init() {
	promptCmd.AddCommand(promptShowCmd)
	promptCmd.AddCommand(promptRespondCmd)
}
