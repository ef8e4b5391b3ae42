// Package main provides the standards CLI for importing notation templates
// and managing assignments.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/lawstack/standards/pkg/importer"
	"github.com/lawstack/standards/pkg/standards"
)

var (
	version = "dev"

	configPath string
)

// openEngine loads configuration, opens the database, and runs migrations.
func openEngine() (*gorm.DB, *standards.NotationStore, *standards.AssignmentStore, error) {
	cfg, err := standards.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := standards.OpenDatabase(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := standards.Migrate(db); err != nil {
		return nil, nil, nil, err
	}
	return db, standards.NewNotationStore(db), standards.NewAssignmentStore(db), nil
}

func parseOptionalID(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return &id, nil
}

func newImportCmd(logger *slog.Logger) *cobra.Command {
	var repoID int64

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import notation templates from a checked-out git repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, notations, _, err := openEngine()
			if err != nil {
				return err
			}
			repo, err := notations.GetRepository(repoID)
			if err != nil {
				return err
			}
			if repo == nil {
				return fmt.Errorf("source repository %d not found", repoID)
			}

			imp := importer.NewImporter(notations, logger)
			result, err := imp.ImportRepository(args[0], repoID)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d notation(s) at version %s (%d skipped)\n",
				len(result.Imported), result.Version, len(result.Skipped))
			return nil
		},
	}
	cmd.Flags().Int64Var(&repoID, "repo-id", 0, "Source repository ID")
	_ = cmd.MarkFlagRequired("repo-id")
	return cmd
}

func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions <repo-id> <code>",
		Short: "List all versions of a notation, newest first",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid repo id %q: %w", args[0], err)
			}

			_, notations, _, err := openEngine()
			if err != nil {
				return err
			}
			all, err := notations.FindAllVersions(repoID, args[1])
			if err != nil {
				return err
			}
			if len(all) == 0 {
				return &standards.NoVersionsFoundError{RepositoryID: repoID, Code: args[1]}
			}
			for i, n := range all {
				marker := " "
				if i == 0 {
					marker = "*"
				}
				fmt.Printf("%s %d  %s  %s  %s\n", marker, n.ID, n.Version,
					n.InsertedAt.Format("2006-01-02 15:04:05"), n.Title)
			}
			return nil
		},
	}
}

func newAssignCmd(logger *slog.Logger) *cobra.Command {
	var (
		repoID    int64
		code      string
		personStr string
		entityStr string
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign the latest version of a notation to a respondent",
		RunE: func(cmd *cobra.Command, args []string) error {
			personID, err := parseOptionalID(personStr)
			if err != nil {
				return err
			}
			entityID, err := parseOptionalID(entityStr)
			if err != nil {
				return err
			}

			_, notations, assignments, err := openEngine()
			if err != nil {
				return err
			}
			svc := standards.NewAssignmentService(notations, assignments, logger)

			assignment, err := svc.CreateAssignmentByCode(repoID, code, personID, entityID, standards.StateOpen)
			if err != nil {
				var outdated *standards.OutdatedVersionError
				if errors.As(err, &outdated) {
					return fmt.Errorf("%w\nretry with notation id %d", err, outdated.LatestNotationID)
				}
				return err
			}

			fmt.Printf("assignment %d created for notation %d (state %s)\n",
				assignment.ID, assignment.NotationID, assignment.State)
			return nil
		},
	}
	cmd.Flags().Int64Var(&repoID, "repo-id", 0, "Source repository ID")
	cmd.Flags().StringVar(&code, "code", "", "Notation code")
	cmd.Flags().StringVar(&personStr, "person", "", "Person ID to assign to")
	cmd.Flags().StringVar(&entityStr, "entity", "", "Entity ID to assign to")
	_ = cmd.MarkFlagRequired("repo-id")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func newCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <assignment-id>",
		Short: "Close an assignment, freeing its respondent for reassignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid assignment id %q: %w", args[0], err)
			}

			_, _, assignments, err := openEngine()
			if err != nil {
				return err
			}
			if err := assignments.TransitionState(id, standards.StateClosed); err != nil {
				return err
			}
			fmt.Printf("assignment %d closed\n", id)
			return nil
		},
	}
}

func newRepoAddCmd() *cobra.Command {
	var (
		accountID  string
		region     string
		providerID string
		name       string
		arn        string
	)

	cmd := &cobra.Command{
		Use:   "repo-add",
		Short: "Register a source repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, notations, _, err := openEngine()
			if err != nil {
				return err
			}
			repo := &standards.SourceRepository{
				AccountID:            accountID,
				Region:               region,
				ProviderRepositoryID: providerID,
				Name:                 name,
				ARN:                  arn,
			}
			if err := notations.CreateRepository(repo); err != nil {
				return err
			}
			fmt.Printf("source repository %d registered\n", repo.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "Provider account ID")
	cmd.Flags().StringVar(&region, "region", "", "Provider region")
	cmd.Flags().StringVar(&providerID, "provider-id", "", "Provider repository ID")
	cmd.Flags().StringVar(&name, "name", "", "Repository name")
	cmd.Flags().StringVar(&arn, "arn", "", "Repository ARN")
	_ = cmd.MarkFlagRequired("provider-id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:     "standards",
		Short:   "CLI for the standards notation registry",
		Version: version,
		Long: `standards manages versioned notation templates and their assignment
to respondents.

Templates live in a version-controlled repository as markdown files with YAML
frontmatter; importing tags each document with the repository's HEAD commit
SHA. Assignments always target the latest version of a notation.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "standards.yaml", "Path to config file")

	rootCmd.AddCommand(newRepoAddCmd())
	rootCmd.AddCommand(newImportCmd(logger))
	rootCmd.AddCommand(newVersionsCmd())
	rootCmd.AddCommand(newAssignCmd(logger))
	rootCmd.AddCommand(newCloseCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
