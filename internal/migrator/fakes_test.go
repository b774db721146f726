package migrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alan/trac2github/internal/github"
	"github.com/alan/trac2github/internal/trac"
)

type fakeTrac struct {
	tickets    []trac.Ticket
	changelogs map[int][]trac.ChangeLogEntry
	filter     string
}

func (f *fakeTrac) QueryTickets(_ context.Context, filter string) ([]int, error) {
	f.filter = filter
	ids := make([]int, 0, len(f.tickets))
	for _, ticket := range f.tickets {
		ids = append(ids, ticket.ID)
	}
	return ids, nil
}

func (f *fakeTrac) GetTickets(_ context.Context, ids []int) ([]trac.Ticket, error) {
	byID := make(map[int]trac.Ticket, len(f.tickets))
	for _, ticket := range f.tickets {
		byID[ticket.ID] = ticket
	}
	out := make([]trac.Ticket, 0, len(ids))
	for _, id := range ids {
		out = append(out, byID[id])
	}
	return out, nil
}

func (f *fakeTrac) ChangeLog(_ context.Context, id int) ([]trac.ChangeLogEntry, error) {
	return f.changelogs[id], nil
}

// fakeGitHub is an in-memory repository. Issue numbers start at 1.
type fakeGitHub struct {
	users      map[string]string // lowercase login -> canonical login
	milestones []github.Milestone
	labels     []github.Label
	issues     []*github.Issue
	comments   map[int][]string
	calls      []string
	failOn     string
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		users:    make(map[string]string),
		comments: make(map[int][]string),
	}
}

func (f *fakeGitHub) record(call string, args ...any) error {
	entry := call
	if len(args) > 0 {
		entry = fmt.Sprintf("%s %v", call, args)
	}
	f.calls = append(f.calls, entry)
	if f.failOn != "" && call == f.failOn {
		return errors.New("boom")
	}
	return nil
}

func (f *fakeGitHub) countCalls(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call || strings.HasPrefix(c, call+" ") {
			n++
		}
	}
	return n
}

func (f *fakeGitHub) issue(number int) (*github.Issue, error) {
	if number < 1 || number > len(f.issues) {
		return nil, fmt.Errorf("issue #%d not found", number)
	}
	return f.issues[number-1], nil
}

func (f *fakeGitHub) issueByTitle(title string) *github.Issue {
	for _, issue := range f.issues {
		if issue.Title == title {
			return issue
		}
	}
	return nil
}

func cloneIssue(issue *github.Issue) *github.Issue {
	c := *issue
	c.Labels = append([]string(nil), issue.Labels...)
	return &c
}

func (f *fakeGitHub) ListMilestones(context.Context) ([]github.Milestone, error) {
	if err := f.record("ListMilestones"); err != nil {
		return nil, err
	}
	return append([]github.Milestone(nil), f.milestones...), nil
}

func (f *fakeGitHub) ListLabels(context.Context) ([]github.Label, error) {
	if err := f.record("ListLabels"); err != nil {
		return nil, err
	}
	return append([]github.Label(nil), f.labels...), nil
}

func (f *fakeGitHub) ListIssues(context.Context) ([]github.Issue, error) {
	if err := f.record("ListIssues"); err != nil {
		return nil, err
	}
	out := make([]github.Issue, 0, len(f.issues))
	for _, issue := range f.issues {
		out = append(out, *cloneIssue(issue))
	}
	return out, nil
}

func (f *fakeGitHub) CreateMilestone(_ context.Context, title string) (*github.Milestone, error) {
	if err := f.record("CreateMilestone", title); err != nil {
		return nil, err
	}
	milestone := github.Milestone{Number: len(f.milestones) + 1, Title: title, State: "open"}
	f.milestones = append(f.milestones, milestone)
	return &milestone, nil
}

func (f *fakeGitHub) CreateLabel(_ context.Context, name, color string) (*github.Label, error) {
	if err := f.record("CreateLabel", name); err != nil {
		return nil, err
	}
	label := github.Label{Name: name, Color: color}
	f.labels = append(f.labels, label)
	return &label, nil
}

func (f *fakeGitHub) CreateIssue(_ context.Context, req github.IssueRequest) (*github.Issue, error) {
	if err := f.record("CreateIssue", req.Title); err != nil {
		return nil, err
	}
	issue := &github.Issue{
		Number:   len(f.issues) + 1,
		Title:    req.Title,
		Body:     req.Body,
		State:    "open",
		Assignee: req.Assignee,
		Labels:   append([]string(nil), req.Labels...),
	}
	issue.URL = fmt.Sprintf("https://github.com/acme/widgets/issues/%d", issue.Number)
	for _, milestone := range f.milestones {
		if milestone.Number == req.Milestone {
			issue.Milestone = milestone.Title
		}
	}
	f.issues = append(f.issues, issue)
	return cloneIssue(issue), nil
}

func (f *fakeGitHub) edit(call string, number int, apply func(issue *github.Issue)) (*github.Issue, error) {
	if err := f.record(call, number); err != nil {
		return nil, err
	}
	issue, err := f.issue(number)
	if err != nil {
		return nil, err
	}
	apply(issue)
	return cloneIssue(issue), nil
}

func (f *fakeGitHub) SetAssignee(_ context.Context, number int, login string) (*github.Issue, error) {
	return f.edit("SetAssignee", number, func(issue *github.Issue) { issue.Assignee = login })
}

func (f *fakeGitHub) SetBody(_ context.Context, number int, body string) (*github.Issue, error) {
	return f.edit("SetBody", number, func(issue *github.Issue) { issue.Body = body })
}

func (f *fakeGitHub) CloseIssue(_ context.Context, number int) (*github.Issue, error) {
	return f.edit("CloseIssue", number, func(issue *github.Issue) { issue.State = "closed" })
}

func (f *fakeGitHub) RemoveLabelFromIssue(_ context.Context, number int, label string) error {
	_, err := f.edit("RemoveLabelFromIssue", number, func(issue *github.Issue) {
		issue.Labels = removeString(issue.Labels, label)
	})
	return err
}

func (f *fakeGitHub) CreateIssueComment(_ context.Context, number int, body string) (*github.Comment, error) {
	if err := f.record("CreateIssueComment", number); err != nil {
		return nil, err
	}
	f.comments[number] = append(f.comments[number], body)
	return &github.Comment{ID: int64(len(f.comments[number])), Body: body}, nil
}

func (f *fakeGitHub) LookupUser(_ context.Context, login string) (string, error) {
	if err := f.record("LookupUser", login); err != nil {
		return "", err
	}
	canonical, ok := f.users[strings.ToLower(login)]
	if !ok {
		return "", fmt.Errorf("user %s not found", login)
	}
	return canonical, nil
}
