package main

import (
	"time"

	"github.com/spf13/cobra"
)

type remindOutput struct {
	Command    string `json:"command"`
	DurationMS int64  `json:"duration_ms"`
	Result     any    `json:"result"`
}

func newRemindCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Queue renewal reminders once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			start := time.Now()
			res, err := a.newReminder().Run(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(remindOutput{
				Command:    "remind",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     res,
			})
		},
	}
}
