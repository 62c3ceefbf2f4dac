package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var (
	taskNotes    string
	taskStatus   string
	taskOverride bool
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally filtered by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/api/v1/tasks"
		if taskStatus != "" {
			path += "?status=" + url.QueryEscape(taskStatus)
		}
		resp, err := apiRequest("GET", path, nil)
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(resp)
		}

		tasks, _ := resp["tasks"].([]interface{})
		if len(tasks) == 0 {
			fmt.Println("No tasks.")
			return nil
		}
		for _, raw := range tasks {
			t, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			fmt.Printf("%-8s %-36s %s\n", t["status"], t["id"], t["title"])
		}
		return nil
	},
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiRequest("POST", "/api/v1/tasks", map[string]string{
			"title": strings.Join(args, " "),
			"notes": taskNotes,
		})
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(resp)
		}
		if t, ok := resp["task"].(map[string]interface{}); ok {
			fmt.Printf("Created %s\n", t["id"])
		}
		return nil
	},
}

var taskStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start working on a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/api/v1/tasks/" + args[0] + "/start"
		if taskOverride {
			path += "?override=true"
		}
		resp, err := apiRequest("POST", path, nil)
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(resp)
		}
		fmt.Println("Started.")
		return nil
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Complete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiRequest("POST", "/api/v1/tasks/"+args[0]+"/complete", nil)
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(resp)
		}
		if c, ok := resp["celebration"].(map[string]interface{}); ok {
			fmt.Println(c["message"])
		} else {
			fmt.Println("Done.")
		}
		return nil
	},
}

var taskRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiRequest("DELETE", "/api/v1/tasks/"+args[0], nil)
		if err != nil {
			return err
		}
		if output == "json" {
			return printJSON(resp)
		}
		fmt.Println("Deleted.")
		return nil
	},
}

func init() {
	taskListCmd.Flags().StringVar(&taskStatus, "status", "", "Filter by status: todo, active, done")
	taskAddCmd.Flags().StringVar(&taskNotes, "notes", "", "Notes for the task")
	taskStartCmd.Flags().BoolVar(&taskOverride, "override", false, "Bypass the WIP limit")

	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskStartCmd)
	taskCmd.AddCommand(taskDoneCmd)
	taskCmd.AddCommand(taskRmCmd)
}
