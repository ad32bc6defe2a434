package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zulandar/sprintdeck/internal/db"
	"github.com/zulandar/sprintdeck/internal/importer"
)

func newImportCmd() *cobra.Command {
	var (
		configPath string
		repo       string
		spaceID    string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import open GitHub issues into a space's backlog",
		Long:  "Fetches open issues from a GitHub repository and creates backlog items for them. Requires GITHUB_TOKEN in the environment.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, configPath, repo, spaceID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "sprintdeck.yaml", "path to Sprintdeck config file")
	cmd.Flags().StringVarP(&repo, "repo", "r", "", "repository as owner/name (required)")
	cmd.Flags().StringVarP(&spaceID, "space", "s", "", "target space id (required)")
	cmd.MarkFlagRequired("repo")
	cmd.MarkFlagRequired("space")
	return cmd
}

func runImport(cmd *cobra.Command, configPath, repo, spaceID string) error {
	godotenv.Load()

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return fmt.Errorf("GITHUB_TOKEN is not set")
	}
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return fmt.Errorf("invalid repo %q, expected owner/name", repo)
	}

	cfg, err := loadConfigOrDefault(configPath)
	if err != nil {
		return err
	}
	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	gh := importer.NewGitHub(token, gormDB)
	res, err := gh.Import(cmd.Context(), owner, name, spaceID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d issue(s) from %s, skipped %d\n", res.Imported, repo, res.Skipped)
	return nil
}
