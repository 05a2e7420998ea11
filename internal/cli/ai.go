package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/thetask/internal/ai"
	"github.com/sandeepkv93/thetask/internal/model"
	"github.com/sandeepkv93/thetask/internal/views"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan <goal>",
	Short: "Break a goal into tasks with the AI planner",
	Long: `Ask the AI planner to decompose a goal into actionable tasks and add them to the
To do column. Needs THETASK_AI_API_KEY (or GEMINI_API_KEY).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		goal := strings.TrimSpace(strings.Join(args, " "))
		if goal == "" {
			return errors.New("goal is required")
		}
		ctx, cancel := commandContext(cmd, a.cfg.AITimeout+storeTimeout)
		defer cancel()

		drafts, err := a.assistant().DecomposeGoal(ctx, goal)
		if err != nil {
			return aiFailure(err)
		}
		tasks := model.FromDrafts(drafts, time.Now())
		if err := a.store.AddBatch(ctx, tasks); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printf(out, "planner added %d tasks\n", len(tasks))
		for _, t := range tasks {
			printf(out, "  %s [%s] %s\n", shortID(t.ID), t.Priority, t.Title)
		}
		return nil
	},
}

var hintCmd = &cobra.Command{
	Use:   "hint <id>",
	Short: "Ask the AI for an optimisation tip on a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		task, err := findTask(a.store, args[0])
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd, a.cfg.AITimeout)
		defer cancel()

		text, err := a.assistant().SuggestHint(ctx, task.Title, task.Description)
		if err != nil {
			return aiFailure(err)
		}
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			printf(cmd.OutOrStdout(), "%s\n", text)
			return nil
		}
		printf(cmd.OutOrStdout(), "%s\n", views.RenderMarkdown(text, string(a.store.Theme())))
		return nil
	},
}

func init() {
	hintCmd.Flags().Bool("raw", false, "print the hint without markdown rendering")
}

func aiFailure(err error) error {
	var credErr *ai.CredentialError
	if errors.As(err, &credErr) {
		return fmt.Errorf("configuration required: %s", credErr.Remediation)
	}
	return fmt.Errorf("AI service unavailable: %w", err)
}
