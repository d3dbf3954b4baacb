package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/yukikurage/project-task-api/internal/database"
	"github.com/yukikurage/project-task-api/internal/models"
	"github.com/yukikurage/project-task-api/internal/repository"
	"github.com/yukikurage/project-task-api/internal/services"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}

// setRoleCmd changes a user's global role directly in the database. It is how
// the first global admin gets created.
func setRoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-role",
		Short: "Set a user's global role (USER or ADMIN)",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			role, _ := cmd.Flags().GetString("role")

			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}

			authService := services.NewAuthService(repository.NewUserRepository(db))
			user, err := authService.SetRoleByEmail(cmd.Context(), email, models.Role(strings.ToUpper(role)))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
			return nil
		},
	}

	cmd.Flags().String("email", "", "email of the user to update")
	cmd.Flags().String("role", string(models.RoleAdmin), "new global role")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <description...>",
		Short: "Classify task descriptions and print their priorities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			detector := services.NewPriorityService(newClassifier(cfg))

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Description", "Priority", "Time"})
			for _, description := range args {
				result, err := detector.Detect(cmd.Context(), description)
				if err != nil {
					tw.AppendRow(table.Row{description, "-", err.Error()})
					continue
				}
				tw.AppendRow(table.Row{result.Description, result.Priority, result.ProcessingTime.Round(time.Millisecond)})
			}
			tw.Render()
			return nil
		},
	}
}
