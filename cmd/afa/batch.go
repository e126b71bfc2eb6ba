package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/jacoelho/afa"
)

type queryKind int

const (
	// queryEmpty asks whether Left accepts no word.
	queryEmpty queryKind = iota
	// queryEquiv asks whether Left and Right accept the same words.
	queryEquiv
	// queryMatch runs Left over every entry of Inputs.
	queryMatch
)

func (k queryKind) String() string {
	switch k {
	case queryEquiv:
		return "equiv"
	case queryMatch:
		return "match"
	default:
		return "empty"
	}
}

// query is one batch item.
type query struct {
	Left   string
	Right  string
	Inputs []string
	Kind   queryKind
}

type inputMatch struct {
	Input string `json:"input"`
	Match bool   `json:"match"`
}

type batchResult struct {
	Witness    *string      `json:"witness,omitempty"`
	Query      string       `json:"query"`
	Left       string       `json:"left"`
	Right      string       `json:"right,omitempty"`
	Verdict    string       `json:"verdict,omitempty"`
	Error      string       `json:"error,omitempty"`
	Matches    []inputMatch `json:"matches,omitempty"`
	Index      int          `json:"index"`
	DurationMS float64      `json:"duration_ms"`
}

type batchReport struct {
	RunID     string        `json:"run_id"`
	Semantics string        `json:"semantics"`
	Results   []batchResult `json:"results"`
	Failed    int           `json:"failed"`
}

func newBatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch FILE",
		Short: "Run emptiness, equivalence and match queries from a file",
		Long: "FILE is a JSON array (.json), a YAML list (.yaml, .yml) or one query per line.\n\n" +
			"A lone pattern is an emptiness query: does the pattern accept any word at all.\n" +
			"It does not match the pattern against anything. A pair of patterns is an\n" +
			"equivalence query; lines separate the pair with a tab. A mapping with\n" +
			"\"pattern\" and \"inputs\" (JSON and YAML only) is a match query: the verdict\n" +
			"is \"match\" when every input is accepted, and each input is reported under\n" +
			"\"matches\". A mapping with \"pattern\" and \"other\" is an equivalence query.\n\n" +
			"A JSON report is written to stdout.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := readBatch(args[0])
			if err != nil {
				return err
			}
			report, err := runBatch(cmd.Context(), a, queries)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if report.Failed > 0 {
				return exitCode(exitError)
			}
			return nil
		},
	}
}

func runBatch(ctx context.Context, a *app, queries []query) (batchReport, error) {
	report := batchReport{
		RunID:     uuid.NewString(),
		Semantics: a.config.Semantics,
		Results:   make([]batchResult, len(queries)),
	}
	logger := a.logger.With("run_id", report.RunID)
	logger.Info("batch started", "queries", len(queries), "workers", a.config.Workers)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	if a.config.Workers > 0 {
		g.SetLimit(a.config.Workers)
	}
	opts := append(a.options(), afa.WithLogger(logger))
	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Results[i] = runQuery(gctx, i, q, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return batchReport{}, err
	}
	for _, r := range report.Results {
		if r.Error != "" {
			report.Failed++
		}
	}
	logger.Info("batch finished", "failed", report.Failed, "duration", time.Since(start))
	return report, nil
}

func runQuery(ctx context.Context, index int, q query, opts []afa.Option) batchResult {
	res := batchResult{Index: index, Query: q.Kind.String(), Left: q.Left, Right: q.Right}
	start := time.Now()
	err := evaluate(ctx, q, opts, &res)
	res.DurationMS = float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

// evaluate answers q and fills the verdict fields of res.
func evaluate(ctx context.Context, q query, opts []afa.Option, res *batchResult) error {
	left, err := afa.Compile(ctx, q.Left, opts...)
	if err != nil {
		return err
	}
	var v afa.Verdict
	switch q.Kind {
	case queryMatch:
		res.Verdict = "match"
		res.Matches = make([]inputMatch, len(q.Inputs))
		for i, in := range q.Inputs {
			ok := left.Match(in)
			res.Matches[i] = inputMatch{Input: in, Match: ok}
			if !ok {
				res.Verdict = "no-match"
			}
		}
		return nil
	case queryEquiv:
		right, err := afa.Compile(ctx, q.Right, opts...)
		if err != nil {
			return err
		}
		if v, err = afa.Equivalent(ctx, left, right, opts...); err != nil {
			return err
		}
		res.Verdict = "not-equivalent"
		if v.Equivalent {
			res.Verdict = "equivalent"
		}
	default:
		if v, err = afa.IsEmpty(ctx, left, opts...); err != nil {
			return err
		}
		res.Verdict = "not-empty"
		if v.Equivalent {
			res.Verdict = "empty"
		}
	}
	if v.HasWitness {
		w := v.Witness
		res.Witness = &w
	}
	return nil
}

func readBatch(path string) ([]query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch %s: %w", path, err)
	}
	var queries []query
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		queries, err = parseStructured(data, json.Unmarshal)
	case ".yaml", ".yml":
		queries, err = parseStructured(data, yaml.Unmarshal)
	default:
		queries, err = parseLines(data)
	}
	if err != nil {
		return nil, fmt.Errorf("batch %s: %w", path, err)
	}
	return queries, nil
}

// parseStructured decodes a list whose items are a pattern string, a list
// of one or two patterns, or a mapping with "pattern" and at most one of
// "other" or "inputs".
func parseStructured(data []byte, unmarshal func([]byte, any) error) ([]query, error) {
	var items []any
	if err := unmarshal(data, &items); err != nil {
		return nil, err
	}
	queries := make([]query, 0, len(items))
	for i, item := range items {
		q, err := toQuery(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		queries = append(queries, q)
	}
	return queries, nil
}

func toQuery(item any) (query, error) {
	switch v := item.(type) {
	case string:
		return query{Left: v}, nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			s, ok := p.(string)
			if !ok {
				return query{}, fmt.Errorf("pattern must be a string, got %T", p)
			}
			parts = append(parts, s)
		}
		switch len(parts) {
		case 1:
			return query{Left: parts[0]}, nil
		case 2:
			return query{Left: parts[0], Right: parts[1], Kind: queryEquiv}, nil
		default:
			return query{}, fmt.Errorf("expected 1 or 2 patterns, got %d", len(parts))
		}
	case map[string]any:
		left, ok := v["pattern"].(string)
		if !ok {
			return query{}, fmt.Errorf(`missing string "pattern"`)
		}
		other, hasOther := v["other"]
		inputs, hasInputs := v["inputs"]
		switch {
		case hasOther && hasInputs:
			return query{}, fmt.Errorf(`"other" and "inputs" are exclusive`)
		case hasInputs:
			list, ok := inputs.([]any)
			if !ok {
				return query{}, fmt.Errorf(`"inputs" must be a list, got %T`, inputs)
			}
			q := query{Left: left, Kind: queryMatch, Inputs: make([]string, 0, len(list))}
			for _, in := range list {
				s, ok := in.(string)
				if !ok {
					return query{}, fmt.Errorf("input must be a string, got %T", in)
				}
				q.Inputs = append(q.Inputs, s)
			}
			return q, nil
		case hasOther:
			right, ok := other.(string)
			if !ok {
				return query{}, fmt.Errorf(`"other" must be a string, got %T`, other)
			}
			return query{Left: left, Right: right, Kind: queryEquiv}, nil
		default:
			return query{Left: left}, nil
		}
	default:
		return query{}, fmt.Errorf("unsupported item %T", item)
	}
}

// parseLines reads one query per line. Blank lines and lines starting with
// '#' are skipped.
func parseLines(data []byte) ([]query, error) {
	var queries []query
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		left, right, pair := strings.Cut(line, "\t")
		q := query{Left: left, Right: right}
		if pair {
			q.Kind = queryEquiv
		}
		queries = append(queries, q)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return queries, nil
}
