// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// ActionableError is a user-facing failure: what linthub was doing, on
	// which resource, why it failed and what the user can try next.
	//
	//	return issue.NewErrorContext().
	//		WithOperation("load workspace").
	//		WithResource(dir).
	//		WithIssue(issue.WorkspaceLoadFailedId).
	//		WithSuggestion("Run 'go mod init' in the project root").
	//		Wrap(err).
	//		BuildError()
	ActionableError struct {
		// Operation is a verb phrase such as "load workspace".
		Operation string
		// Resource is the path or entity involved, if any.
		Resource string
		// Issue links a catalog entry with longer guidance, if any.
		Issue       Id
		Suggestions []string
		Cause       error
	}

	// ErrorContext builds an ActionableError incrementally.
	ErrorContext struct {
		ae ActionableError
	}
)

// NewErrorContext starts an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// Error renders "failed to <operation>[: <resource>][: <cause>]".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the cause.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// Format renders Error followed by one bullet per suggestion. verbose adds
// the numbered chain of wrapped causes.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		b.WriteString("\n")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • ")
			b.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
			fmt.Fprintf(&b, "\n  %d. %s", depth, err.Error())
		}
	}
	return b.String()
}

// Guide returns the linked catalog entry, or nil.
func (e *ActionableError) Guide() *Issue {
	if e.Issue == 0 {
		return nil
	}
	return Get(e.Issue)
}

func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.ae.Operation = op
	return c
}

func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.ae.Resource = res
	return c
}

func (c *ErrorContext) WithIssue(id Id) *ErrorContext {
	c.ae.Issue = id
	return c
}

// WithSuggestion appends a hint. It may be called repeatedly.
func (c *ErrorContext) WithSuggestion(s string) *ErrorContext {
	c.ae.Suggestions = append(c.ae.Suggestions, s)
	return c
}

// Wrap sets the cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.ae.Cause = err
	return c
}

// Build returns the error, or nil when no operation was set.
func (c *ErrorContext) Build() *ActionableError {
	if c.ae.Operation == "" {
		return nil
	}
	ae := c.ae
	ae.Suggestions = append([]string(nil), c.ae.Suggestions...)
	return &ae
}

// BuildError is Build typed as error, so that a missing operation yields a
// nil interface rather than a typed nil.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
