package postprocess

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mikey/mail-ingress/internal/core"
	"go.uber.org/zap"
)

// Kind names a supported post-processor
type Kind string

const (
	// KindExiftran losslessly rotates images according to their EXIF orientation
	KindExiftran Kind = "exiftran"
	// KindExiftool strips all metadata from images and videos
	KindExiftool Kind = "exiftool"
)

type toolDef struct {
	binary    string
	checkArgs []string
	applyArgs []string
	types     map[string]bool
}

func typeSet(types ...string) map[string]bool {
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

var tools = map[Kind]toolDef{
	KindExiftran: {
		binary:    "exiftran",
		checkArgs: []string{"-h"},
		applyArgs: []string{"-i", "-a"},
		types:     typeSet("image/jpeg", "image/png", "image/heic", "image/webp"),
	},
	KindExiftool: {
		binary:    "exiftool",
		checkArgs: []string{"-ver"},
		// exiftool keeps a "<file>_original" copy unless told otherwise
		applyArgs: []string{"-all=", "-overwrite_original"},
		types: typeSet(
			"image/jpeg", "image/png", "image/heic", "image/webp",
			"video/mp4", "video/heic", "video/mpeg", "video/quicktime", "video/x-quicktime",
		),
	},
}

// ParseKind resolves a processor name from configuration
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := tools[k]; !ok {
		return "", fmt.Errorf("unsupported post-processor: %s", name)
	}
	return k, nil
}

// ToolProcessor is a post-processor that rewrites the file in place with an
// external tool
type ToolProcessor struct {
	kind   Kind
	tool   toolDef
	runner Runner
	logger *zap.Logger
}

var _ core.PostProcessor = (*ToolProcessor)(nil)

// New creates a new post-processor of the given kind
func New(kind Kind, runner Runner, logger *zap.Logger) (*ToolProcessor, error) {
	tool, ok := tools[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported post-processor: %s", kind)
	}
	if runner == nil {
		runner = NewExecRunner()
	}
	return &ToolProcessor{
		kind:   kind,
		tool:   tool,
		runner: runner,
		logger: logger.With(zap.String("processor", string(kind))),
	}, nil
}

// Name returns the tool name
func (p *ToolProcessor) Name() string {
	return string(p.kind)
}

// Applicable reports whether the tool handles the content type
func (p *ToolProcessor) Applicable(contentType string) bool {
	return p.tool.types[contentType]
}

// Check runs the tool's self-test command. A tool that cannot be started is an
// error; a tool that runs but exits non-zero reports false.
func (p *ToolProcessor) Check(ctx context.Context) (bool, error) {
	status := p.runner.Run(ctx, p.tool.binary, p.tool.checkArgs...)
	if status.Error != nil {
		return false, &core.ToolUnavailableError{Tool: p.Name(), Err: status.Error}
	}
	if !status.Complete {
		return false, &core.ToolUnavailableError{Tool: p.Name(), Err: errors.New("check stopped abnormally")}
	}
	if status.Exit != 0 {
		p.logger.Warn("Tool check exited with non-zero status", zap.Int("exit", status.Exit))
		return false, nil
	}
	return true, nil
}

// Apply rewrites the file at path in place and returns the same path
func (p *ToolProcessor) Apply(ctx context.Context, path string) (string, error) {
	p.logger.Debug("Running post-processor", zap.String("path", path))

	args := append(append([]string{}, p.tool.applyArgs...), path)
	status := p.runner.Run(ctx, p.tool.binary, args...)

	switch {
	case status.Error != nil:
		return "", &core.ProcessingFailedError{Processor: p.Name(), Reason: "could not run tool", Err: status.Error}
	case !status.Complete:
		return "", &core.ProcessingFailedError{Processor: p.Name(), Reason: "tool stopped abnormally"}
	case status.Exit != 0:
		p.logger.Debug("Post-processor output",
			zap.Strings("stdout", status.Stdout),
			zap.Strings("stderr", status.Stderr))
		return "", &core.ProcessingFailedError{
			Processor: p.Name(),
			Reason:    fmt.Sprintf("exit code not null: %d", status.Exit),
		}
	}

	return path, nil
}

// NewChain builds the named processors in order. An unknown name is an error.
func NewChain(names []string, runner Runner, logger *zap.Logger) ([]core.PostProcessor, error) {
	chain := make([]core.PostProcessor, 0, len(names))
	for _, name := range names {
		kind, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		p, err := New(kind, runner, logger)
		if err != nil {
			return nil, err
		}
		chain = append(chain, p)
	}
	return chain, nil
}
