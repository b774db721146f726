// Package wiki rewrites Trac wiki markup into GitHub-flavored markdown.
//
// Conversion is a fixed, ordered list of text rewrites. There is no parser: Trac
// syntax coverage is intentionally partial, and each rule only sees the output
// of the rules before it.
package wiki

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// TicketResolver returns the GitHub issue number for a Trac ticket ID,
// or false when the ticket has not been migrated.
type TicketResolver func(tracID int) (int, bool)

// rule is a single rewrite step
type rule func(c *Converter, markup string) string

var (
	ticketRefPattern       = regexp.MustCompile(`(?:refs #?|#)(\d+)`)
	commitTicketRefPattern = regexp.MustCompile(`(?m)#!CommitTicketReference.*rev=([^\s]+)\n`)
	changesetPattern       = regexp.MustCompile(`\[changeset:"([^"/]+?)(?:/[^"]+)?"]`)
)

// Ticket references must be rewritten first: later rules emit text that
// must not be matched as a reference again.
var rules = []rule{
	(*Converter).rewriteTicketReferences,
	rewriteCommitTicketReferences,
	rewriteCodeFences,
	rewriteLineBreaks,
	rewriteChangesets,
}

// Converter translates Trac wiki markup for one migration run
type Converter struct {
	tracURL string
	resolve TicketResolver
}

// NewConverter creates a converter that links unmigrated tickets back to tracURL
func NewConverter(tracURL string, resolve TicketResolver) *Converter {
	if resolve == nil {
		resolve = func(int) (int, bool) { return 0, false }
	}
	return &Converter{
		tracURL: strings.TrimRight(tracURL, "/"),
		resolve: resolve,
	}
}

// Convert applies every rule in order
func (c *Converter) Convert(markup string) string {
	for _, apply := range rules {
		markup = apply(c, markup)
	}
	return markup
}

// TicketURL returns the Trac URL of a ticket
func (c *Converter) TicketURL(tracID int) string {
	return fmt.Sprintf("%s/ticket/%d", c.tracURL, tracID)
}

// TicketReference renders a reference to a Trac ticket as GitHub sees it
func (c *Converter) TicketReference(tracID int) string {
	if number, ok := c.resolve(tracID); ok {
		return fmt.Sprintf("#%d", number)
	}
	return c.TicketURL(tracID)
}

func (c *Converter) rewriteTicketReferences(markup string) string {
	return ticketRefPattern.ReplaceAllStringFunc(markup, func(match string) string {
		digits := ticketRefPattern.FindStringSubmatch(match)[1]
		tracID, err := strconv.Atoi(digits)
		if err != nil {
			// too many digits to be a ticket
			return match
		}
		return c.TicketReference(tracID)
	})
}

func rewriteCommitTicketReferences(_ *Converter, markup string) string {
	return commitTicketRefPattern.ReplaceAllString(markup, "${1}")
}

func rewriteCodeFences(_ *Converter, markup string) string {
	markup = strings.ReplaceAll(markup, "{{{\n", "\n```text\n")
	markup = strings.ReplaceAll(markup, "{{{", "```")
	return strings.ReplaceAll(markup, "}}}", "```")
}

func rewriteLineBreaks(_ *Converter, markup string) string {
	return strings.ReplaceAll(markup, "[[BR]]", "\n")
}

func rewriteChangesets(_ *Converter, markup string) string {
	return changesetPattern.ReplaceAllString(markup, "changeset ${1}")
}

// Blockquote prefixes every line of text with "> "
func Blockquote(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}
