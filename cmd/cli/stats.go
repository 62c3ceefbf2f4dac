package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task and prompt statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := apiRequest("GET", "/api/v1/analytics/summary", nil)
		if err != nil {
			return err
		}
		prompts, err := apiRequest("GET", "/api/v1/analytics/prompts", nil)
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(map[string]interface{}{"summary": summary, "prompts": prompts})
		}

		fmt.Printf("Tasks:   %v total, %v open, %v active, %v done (%.0f%% completion)\n",
			summary["total_tasks"], summary["open_tasks"], summary["active_tasks"],
			summary["done_tasks"], toFloat(summary["completion_rate"])*100)
		fmt.Printf("Streak:  %v days, %v completed today, %v this week\n",
			summary["current_streak"], summary["completions_today"], summary["completions_this_week"])
		fmt.Printf("Prompts: %v sent, %v responded (%.0f%% response rate)\n",
			prompts["prompts_sent"], prompts["responded"], toFloat(prompts["response_rate"])*100)
		return nil
	},
}

func toFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}
