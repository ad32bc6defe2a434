// Package importer pulls open GitHub issues into a space's backlog.
package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/zulandar/sprintdeck/internal/models"
	"github.com/zulandar/sprintdeck/internal/suggest"
)

// issuesLister abstracts the GitHub issues API, enabling test mocks.
type issuesLister interface {
	ListByRepo(ctx context.Context, owner, repo string, opts *github.IssueListByRepoOptions) ([]*github.Issue, *github.Response, error)
}

// GitHub imports issues from one repository into a space.
type GitHub struct {
	issues issuesLister
	db     *gorm.DB
}

// NewGitHub builds an importer authenticated with a personal access token.
func NewGitHub(token string, db *gorm.DB) *GitHub {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	client := github.NewClient(oauth2.NewClient(context.Background(), ts))
	return &GitHub{issues: client.Issues, db: db}
}

// Result summarizes one import run.
type Result struct {
	Imported int
	Skipped  int
}

// Import fetches all open issues from owner/repo and creates backlog items
// for them in the space. Pull requests and issues already imported (matched
// by title) are skipped.
func (g *GitHub) Import(ctx context.Context, owner, repo, spaceID string) (*Result, error) {
	var space models.Space
	if err := g.db.First(&space, "id = ?", spaceID).Error; err != nil {
		return nil, fmt.Errorf("importer: load space: %w", err)
	}

	res := &Result{}
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		issues, resp, err := g.issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("importer: list issues %s/%s: %w", owner, repo, err)
		}
		for _, issue := range issues {
			if issue.IsPullRequest() {
				res.Skipped++
				continue
			}
			item := MapIssue(issue, spaceID)

			var count int64
			g.db.Model(&models.BacklogItem{}).
				Where("space_id = ? AND title = ?", spaceID, item.Title).
				Count(&count)
			if count > 0 {
				res.Skipped++
				continue
			}
			if err := g.db.Create(item).Error; err != nil {
				return nil, fmt.Errorf("importer: create item %q: %w", item.Title, err)
			}
			res.Imported++
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return res, nil
}

// MapIssue converts a GitHub issue into an unassigned backlog item. Labels
// drive the item type and priority; story points come from the keyword
// estimator when the issue has a body.
func MapIssue(issue *github.Issue, spaceID string) *models.BacklogItem {
	item := &models.BacklogItem{
		SpaceID:     spaceID,
		Title:       issue.GetTitle(),
		Description: issue.GetBody(),
		Type:        models.TypeTask,
		Priority:    models.PriorityMedium,
		StoryPoints: 1,
		Status:      models.StatusTodo,
	}

	for _, label := range issue.Labels {
		switch strings.ToLower(label.GetName()) {
		case "bug", "defect":
			item.Type = models.TypeBug
		case "enhancement", "feature", "story":
			item.Type = models.TypeStory
		case "critical", "p0", "urgent":
			item.Priority = models.PriorityCritical
		case "high", "p1":
			item.Priority = models.PriorityHigh
		case "low", "p3", "nice-to-have":
			item.Priority = models.PriorityLow
		}
	}

	if item.Description != "" {
		if est, err := suggest.Estimate(item.Title, item.Description); err == nil {
			item.StoryPoints = est.Points
		}
	}
	return item
}
