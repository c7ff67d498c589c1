package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/hlsx/internal/formatter"
	"github.com/desertthunder/hlsx/internal/models"
	"github.com/desertthunder/hlsx/internal/repositories"
	"github.com/desertthunder/hlsx/internal/shared"
	"github.com/desertthunder/hlsx/internal/ui"
	"github.com/urfave/cli/v3"
)

// historyDoc is the JSON form of a recorded check run.
type historyDoc struct {
	ID        string                 `json:"id"`
	RunID     string                 `json:"run_id"`
	Kind      string                 `json:"kind"`
	URL       string                 `json:"url"`
	Profile   string                 `json:"profile,omitempty"`
	Status    string                 `json:"status"`
	Message   string                 `json:"message"`
	Findings  []formatter.FindingDoc `json:"findings,omitempty"`
	CreatedAt string                 `json:"created_at"`
}

func newHistoryDoc(run *models.CheckRun) (historyDoc, error) {
	findings, err := repositories.DecodeFindings(run)
	if err != nil {
		return historyDoc{}, err
	}
	return historyDoc{
		ID:        run.ID(),
		RunID:     run.RunID(),
		Kind:      string(run.Kind()),
		URL:       run.URL(),
		Profile:   run.Profile(),
		Status:    run.Severity().String(),
		Message:   run.Message(),
		Findings:  findings,
		CreatedAt: formatter.Timestamp(run.CreatedAt()),
	}, nil
}

// HistoryList prints recorded results, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	runs, err := repo.List(map[string]any{
		"url":    cmd.String("url"),
		"run_id": cmd.String("run"),
		"limit":  int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		docs := make([]historyDoc, 0, len(runs))
		for _, run := range runs {
			doc, err := newHistoryDoc(run)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return r.writeJSON(docs, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No recorded results\n")
	}

	palette := ui.DefaultPalette()
	for _, run := range runs {
		line := fmt.Sprintf("%s %s %-12s %s", formatter.Timestamp(run.CreatedAt()), palette.Label(run.Severity()), run.Kind(), run.URL())
		if run.Message() != "" {
			line += " >> " + run.Message()
		}
		if err := r.writePlain("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// HistoryShow prints one recorded result with its findings.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return cli.Exit(fmt.Sprintf("%v: id", shared.ErrMissingArgument), usageExitCode)
	}

	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	run, err := repo.Get(id)
	if err != nil {
		return err
	}
	doc, err := newHistoryDoc(run)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(doc, true)
	}

	r.writePlain("ID:       %s\n", doc.ID)
	r.writePlain("Run:      %s\n", doc.RunID)
	r.writePlain("Checked:  %s\n", doc.CreatedAt)
	r.writePlain("Kind:     %s\n", doc.Kind)
	r.writePlain("URL:      %s\n", doc.URL)
	if doc.Profile != "" {
		r.writePlain("Profile:  %s\n", doc.Profile)
	}
	r.writePlain("Status:   %s\n", doc.Status)
	if doc.Message != "" {
		r.writePlain("Message:  %s\n", doc.Message)
	}
	for _, f := range doc.Findings {
		r.writePlain("\t%s\n", f.Detail)
	}
	return nil
}

// HistoryDelete removes a recorded result.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return cli.Exit(fmt.Sprintf("%v: id", shared.ErrMissingArgument), usageExitCode)
	}

	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := repo.Delete(id); err != nil {
		return err
	}
	r.logger.Info("deleted check run", "id", id)
	return nil
}

// HistoryUI launches the interactive history browser.
func (r *Runner) HistoryUI(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openRepository()
	if err != nil {
		return err
	}
	defer closeDB()

	p := tea.NewProgram(ui.NewHistoryModel(repo, int(cmd.Int("limit"))), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
