package github

import (
	"time"

	"github.com/google/go-github/v57/github"
)

// Issue represents a GitHub issue
type Issue struct {
	Number    int
	Title     string
	Body      string
	URL       string
	State     string // "open" or "closed"
	Assignee  string // login, empty when unassigned
	Milestone string // title, empty when none
	Labels    []string
}

// HasLabel reports whether the issue carries the named label
func (i *Issue) HasLabel(name string) bool {
	for _, label := range i.Labels {
		if label == name {
			return true
		}
	}
	return false
}

// IssueRequest describes a new issue
type IssueRequest struct {
	Title     string
	Body      string
	Labels    []string
	Assignee  string // omitted when empty
	Milestone int    // milestone number, omitted when zero
}

// Label represents a repository label
type Label struct {
	Name  string
	Color string
	URL   string
}

// Milestone represents a repository milestone
type Milestone struct {
	Number int
	Title  string
	State  string
}

// Comment represents an issue comment
type Comment struct {
	ID        int64
	Body      string
	User      string
	CreatedAt time.Time
}

func newIssue(issue *github.Issue) *Issue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.GetName())
	}

	return &Issue{
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		URL:       issue.GetHTMLURL(),
		State:     issue.GetState(),
		Assignee:  issue.GetAssignee().GetLogin(),
		Milestone: issue.GetMilestone().GetTitle(),
		Labels:    labels,
	}
}

func newLabel(label *github.Label) *Label {
	return &Label{
		Name:  label.GetName(),
		Color: label.GetColor(),
		URL:   label.GetURL(),
	}
}

func newMilestone(milestone *github.Milestone) *Milestone {
	return &Milestone{
		Number: milestone.GetNumber(),
		Title:  milestone.GetTitle(),
		State:  milestone.GetState(),
	}
}

func newComment(comment *github.IssueComment) *Comment {
	return &Comment{
		ID:        comment.GetID(),
		Body:      comment.GetBody(),
		User:      comment.GetUser().GetLogin(),
		CreatedAt: comment.GetCreatedAt().Time,
	}
}
