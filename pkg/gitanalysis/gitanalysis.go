// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package gitanalysis implements GitAnalyzer: three independent git-log
// passes (risk window, coupling, freshness) and the risk-score formula
// over their output (§4.7).
//
// Each pass builds its argv vector explicitly and runs it with
// exec.CommandContext rooted at the repository directory; nothing is ever
// shell-interpolated. Output is read with bufio.Scanner against a
// --name-only git log whose commit header lines are "COMMIT::<author>::<subject>",
// "COMMIT", or "COMMIT::<unix time>" depending on the pass, each followed
// by the paths that commit touched. Coupling pairs are normalized
// alphabetically before counting so (a, b) and (b, a) accumulate
// together, and commits touching more than DefaultMaxCommitFiles files
// are skipped as noise before pairing.
package gitanalysis

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kraklabs/pyxray/pkg/model"
)

// DefaultTimeout bounds each of the three independent git invocations.
const DefaultTimeout = 60 * time.Second

// DefaultWindow is the risk-window lookback passed to `--since`.
const DefaultWindow = "90 days ago"

// DefaultCouplingSampleSize is N in "log -n <N>" for the coupling pass.
const DefaultCouplingSampleSize = 500

// DefaultMaxCommitFiles: commits touching more than this many files are
// skipped for coupling (§4.7).
const DefaultMaxCommitFiles = 20

// DefaultMinCouplingCount: only pairs co-changing at least this often are
// retained.
const DefaultMinCouplingCount = 3

// DefaultRiskFloor: files at or below this risk score are not surfaced.
const DefaultRiskFloor = 0.1

// hotfixPattern classifies a commit subject as a hotfix/bugfix: it
// matches if the subject contains any of the seven keywords anywhere as
// a substring (§4.7), so "bugfix:" and "hotfix-urgent" both count.
var hotfixPattern = regexp.MustCompile(`(?i)(fix|hotfix|bug|urgent|revert|patch|emergency)`)

// Analyzer runs the three git-log passes against one repository root.
type Analyzer struct {
	repoRoot    string
	timeout     time.Duration
	window      string
	sampleSize  int
	maxFiles    int
	minCoupling int
	riskFloor   float64
	now         time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

func WithTimeout(d time.Duration) Option     { return func(a *Analyzer) { a.timeout = d } }
func WithWindow(since string) Option         { return func(a *Analyzer) { a.window = since } }
func WithCouplingSampleSize(n int) Option    { return func(a *Analyzer) { a.sampleSize = n } }
func WithMaxCommitFiles(n int) Option        { return func(a *Analyzer) { a.maxFiles = n } }
func WithMinCouplingCount(n int) Option      { return func(a *Analyzer) { a.minCoupling = n } }
func WithRiskFloor(f float64) Option         { return func(a *Analyzer) { a.riskFloor = f } }
func WithNow(t time.Time) Option             { return func(a *Analyzer) { a.now = t } }

// New builds an Analyzer rooted at repoRoot.
func New(repoRoot string, opts ...Option) *Analyzer {
	a := &Analyzer{
		repoRoot:    repoRoot,
		timeout:     DefaultTimeout,
		window:      DefaultWindow,
		sampleSize:  DefaultCouplingSampleSize,
		maxFiles:    DefaultMaxCommitFiles,
		minCoupling: DefaultMinCouplingCount,
		riskFloor:   DefaultRiskFloor,
		now:         time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is the full output of GitAnalyzer.
type Result struct {
	Risk      []model.RiskEntry
	Coupling  []model.CouplingPair
	Freshness []model.Freshness
	Warnings  []model.GitWarning
}

// Run executes the three passes independently; a timeout in one does not
// prevent the others from completing. Any other failure of the first pass
// (no git binary, or the root is not a repository) yields an empty Result
// with that single warning (§4.7 failure mode).
func (a *Analyzer) Run(ctx context.Context) Result {
	var res Result

	churn, authors, hotfix, err := a.riskWindowPass(ctx)
	if err != nil {
		res.Warnings = append(res.Warnings, warningFor(err))
		if err != context.DeadlineExceeded {
			return res
		}
	} else {
		res.Risk = computeRisk(churn, authors, hotfix, a.riskFloor)
	}

	coupling, err := a.couplingPass(ctx)
	if err != nil {
		res.Warnings = append(res.Warnings, warningFor(err))
	} else {
		res.Coupling = coupling
	}

	freshness, err := a.freshnessPass(ctx)
	if err != nil {
		res.Warnings = append(res.Warnings, warningFor(err))
	} else {
		res.Freshness = freshness
	}

	return res
}

func warningFor(err error) model.GitWarning {
	kind := "unavailable"
	if err == context.DeadlineExceeded {
		kind = "timeout"
	}
	return model.GitWarning{Kind: kind, Message: err.Error()}
}

func (a *Analyzer) runGit(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = a.repoRoot
	out, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", context.DeadlineExceeded
	}
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}

// riskWindowPass implements §4.7 pass 1: per-file churn, author set, and
// hotfix count over the lookback window.
func (a *Analyzer) riskWindowPass(ctx context.Context) (churn, hotfixCount map[string]int, authors map[string]map[string]struct{}, err error) {
	out, err := a.runGit(ctx, "log",
		"--since="+a.window,
		"--name-only",
		"--format=COMMIT::%an::%s",
	)
	if err != nil {
		return nil, nil, nil, err
	}

	churn = map[string]int{}
	hotfixCount = map[string]int{}
	authors = map[string]map[string]struct{}{}

	var author string
	var isHotfix bool
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "COMMIT::") {
			rest := strings.TrimPrefix(line, "COMMIT::")
			parts := strings.SplitN(rest, "::", 2)
			author = parts[0]
			subject := ""
			if len(parts) == 2 {
				subject = parts[1]
			}
			isHotfix = hotfixPattern.MatchString(subject)
			continue
		}
		path := line
		if !strings.HasSuffix(path, ".py") {
			continue
		}
		churn[path]++
		if authors[path] == nil {
			authors[path] = map[string]struct{}{}
		}
		authors[path][author] = struct{}{}
		if isHotfix {
			hotfixCount[path]++
		}
	}
	return churn, hotfixCount, authors, scanner.Err()
}

// computeRisk applies the §4.7 formula, dropping files at or below the
// configured floor. If max churn is 0 the list is empty.
func computeRisk(churn, hotfix map[string]int, authors map[string]map[string]struct{}, floor float64) []model.RiskEntry {
	maxChurn := 0
	for _, c := range churn {
		if c > maxChurn {
			maxChurn = c
		}
	}
	if maxChurn == 0 {
		return nil
	}

	var out []model.RiskEntry
	for path, c := range churn {
		churnNorm := float64(c) / float64(maxChurn)
		authorScore := float64(min(len(authors[path]), 5)) / 5
		hotfixScore := float64(min(hotfix[path], 3)) / 3
		score := 0.4*churnNorm + 0.4*hotfixScore + 0.2*authorScore
		if score <= floor {
			continue
		}
		out = append(out, model.RiskEntry{
			RelPath: path,
			Score:   score,
			Churn:   c,
			Hotfix:  hotfix[path],
			Authors: len(authors[path]),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].RelPath < out[j].RelPath
	})
	return out
}

// couplingPass implements §4.7 pass 2: co-change counting over the most
// recent N commits, skipping commits touching more than maxFiles files.
func (a *Analyzer) couplingPass(ctx context.Context) ([]model.CouplingPair, error) {
	out, err := a.runGit(ctx, "log",
		"-n", strconv.Itoa(a.sampleSize),
		"--name-only",
		"--format=COMMIT",
	)
	if err != nil {
		return nil, err
	}

	pairCounts := map[[2]string]int{}
	var current []string

	flush := func() {
		if len(current) > 1 && len(current) <= a.maxFiles {
			for i := 0; i < len(current); i++ {
				for j := i + 1; j < len(current); j++ {
					x, y := current[i], current[j]
					if x > y {
						x, y = y, x
					}
					pairCounts[[2]string{x, y}]++
				}
			}
		}
		current = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "COMMIT" {
			flush()
			continue
		}
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, ".py") {
			current = append(current, line)
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var out2 []model.CouplingPair
	for pair, count := range pairCounts {
		if count < a.minCoupling {
			continue
		}
		out2 = append(out2, model.CouplingPair{A: pair[0], B: pair[1], Count: count})
	}
	sort.Slice(out2, func(i, j int) bool {
		if out2[i].Count != out2[j].Count {
			return out2[i].Count > out2[j].Count
		}
		if out2[i].A != out2[j].A {
			return out2[i].A < out2[j].A
		}
		return out2[i].B < out2[j].B
	})
	return out2, nil
}

// freshnessPass implements §4.7 pass 3: the most recent commit timestamp
// per file, categorised against wall-clock time.
func (a *Analyzer) freshnessPass(ctx context.Context) ([]model.Freshness, error) {
	out, err := a.runGit(ctx, "log",
		"--name-only",
		"--format=COMMIT::%at",
	)
	if err != nil {
		return nil, err
	}

	seen := map[string]time.Time{}
	var ts time.Time
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "COMMIT::") {
			unixSec, _ := strconv.ParseInt(strings.TrimPrefix(line, "COMMIT::"), 10, 64)
			ts = time.Unix(unixSec, 0).UTC()
			continue
		}
		path := line
		if !strings.HasSuffix(path, ".py") {
			continue
		}
		// git log without --follow walks newest-first, so the first
		// timestamp seen for a path is its most recent commit.
		if _, ok := seen[path]; !ok {
			seen[path] = ts
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var result []model.Freshness
	for path, t := range seen {
		result = append(result, model.Freshness{RelPath: path, Category: categorize(t, a.now), LastSeen: t})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RelPath < result[j].RelPath })
	return result, nil
}

func categorize(last, now time.Time) model.FreshnessCategory {
	age := now.Sub(last)
	switch {
	case age < 30*24*time.Hour:
		return model.FreshnessActive
	case age < 90*24*time.Hour:
		return model.FreshnessAging
	case age < 180*24*time.Hour:
		return model.FreshnessStale
	default:
		return model.FreshnessDormant
	}
}
