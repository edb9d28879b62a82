// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/linthub/linthub/internal/aggregate"
	"github.com/linthub/linthub/internal/fixes"
	"github.com/linthub/linthub/internal/workspace"
)

type (
	// AnalyzeResponse is the outcome of Analyze.
	AnalyzeResponse struct {
		RequestID string             `json:"requestId"`
		Ruleset   string             `json:"ruleset,omitempty"`
		Results   []aggregate.Result `json:"results"`
		Warnings  []string           `json:"warnings"`
	}

	// FixesResponse is the outcome of GetFixes.
	FixesResponse struct {
		RequestID string        `json:"requestId"`
		Offers    []fixes.Offer `json:"offers"`
		Warnings  []string      `json:"warnings"`
	}

	// ApplyResponse is the outcome of ApplyFix. Outcome is nil when no
	// offered fix matched the key.
	ApplyResponse struct {
		RequestID string         `json:"requestId"`
		Outcome   *fixes.Outcome `json:"outcome"`
		Warnings  []string       `json:"warnings"`
	}
)

// Analyze runs every applicable rule over the project. A relative opts.File
// is resolved against the project directory.
func (e *Engine) Analyze(ctx context.Context, req Request, opts aggregate.Options) (*AnalyzeResponse, error) {
	sess, unit, err := e.open(ctx, req)
	if err != nil {
		return nil, err
	}
	if opts.File != "" {
		opts.File = sess.resolve(opts.File)
	}

	rep, err := aggregate.Run(ctx, unit, sess.Set, opts)
	if err != nil {
		return nil, err
	}

	warnings := sess.Set.Warnings()
	for _, err := range rep.Errors {
		warnings = append(warnings, err.Error())
	}
	sess.Logger.Info("analysis complete", "results", len(rep.Results), "warnings", len(warnings))

	results := rep.Results
	if results == nil {
		results = []aggregate.Result{}
	}
	return &AnalyzeResponse{
		RequestID: sess.ID,
		Ruleset:   sess.Ruleset,
		Results:   results,
		Warnings:  nonNil(warnings),
	}, nil
}

// GetFixes lists the fixes offered for one diagnostic. A file outside the
// compiled unit has no diagnostics; the offers are empty and a warning says so.
func (e *Engine) GetFixes(ctx context.Context, req Request, target fixes.Target) (*FixesResponse, error) {
	sess, unit, err := e.open(ctx, req)
	if err != nil {
		return nil, err
	}
	target.File = sess.resolve(target.File)
	if !unit.HasFile(target.File) {
		return &FixesResponse{RequestID: sess.ID, Offers: []fixes.Offer{}, Warnings: sess.unknownFile(target.File)}, nil
	}

	offers, err := fixes.List(ctx, unit, sess.Set, target)
	if err != nil {
		return nil, err
	}
	if offers == nil {
		offers = []fixes.Offer{}
	}
	return &FixesResponse{RequestID: sess.ID, Offers: offers, Warnings: nonNil(sess.Set.Warnings())}, nil
}

// ApplyFix computes the text of target.File after the fix keyed key. The
// file is not written. The outcome is nil for a file outside the compiled unit.
func (e *Engine) ApplyFix(ctx context.Context, req Request, target fixes.Target, key string) (*ApplyResponse, error) {
	sess, unit, err := e.open(ctx, req)
	if err != nil {
		return nil, err
	}
	target.File = sess.resolve(target.File)
	if !unit.HasFile(target.File) {
		return &ApplyResponse{RequestID: sess.ID, Warnings: sess.unknownFile(target.File)}, nil
	}

	out, err := fixes.Apply(ctx, unit, sess.Set, target, key)
	if err != nil {
		return nil, err
	}
	if out == nil {
		sess.Logger.Info("no fix matched", "key", key, "rule", target.RuleID)
	}
	return &ApplyResponse{RequestID: sess.ID, Outcome: out, Warnings: nonNil(sess.Set.Warnings())}, nil
}

func (e *Engine) open(ctx context.Context, req Request) (*Session, *workspace.Unit, error) {
	sess, err := e.Prepare(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	unit, err := e.workspace.Load(ctx, sess.Project.Dir)
	if err != nil {
		return nil, nil, err
	}
	for _, perr := range unit.Errors {
		sess.Logger.Debug("package error", "error", perr)
	}
	return sess, unit, nil
}

// unknownFile returns the session warnings plus one for file.
func (s *Session) unknownFile(file string) []string {
	s.Logger.Info("fix target outside the compiled unit", "file", file)
	return append(s.Set.Warnings(), fmt.Sprintf("%v: %s", workspace.ErrUnknownFile, file))
}

// resolve makes a request path absolute relative to the project directory.
func (s *Session) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(s.Project.Dir, p)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clip(s)
}
