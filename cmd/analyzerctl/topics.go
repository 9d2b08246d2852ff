package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	topicsCmd := &cobra.Command{Use: "topics", Short: "Topic extraction operations"}

	// extract
	extractCmd := &cobra.Command{
		Use:   "extract START_DATE [END_DATE]",
		Short: "Start batch topic extraction for a date or date range (YYYY-MM-DD)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"startDate": args[0]}
			if len(args) == 2 {
				payload["endDate"] = args[1]
			}
			data, err := doPostJSON(apiFlag+"/api/topics/extract", payload)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	topicsCmd.AddCommand(extractCmd)

	// status
	statusCmd := &cobra.Command{
		Use:   "status JOB_ID",
		Short: "Show extraction job progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/topics/jobs/%s", apiFlag, args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	topicsCmd.AddCommand(statusCmd)

	// stop
	stopCmd := &cobra.Command{
		Use:   "stop JOB_ID",
		Short: "Stop a running extraction job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(fmt.Sprintf("%s/api/topics/jobs/%s/stop", apiFlag, args[0]), map[string]interface{}{})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	topicsCmd.AddCommand(stopCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get DATE",
		Short: "Show extracted topics for a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/topics/%s", apiFlag, args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	topicsCmd.AddCommand(getCmd)

	rootCmd.AddCommand(topicsCmd)
}
