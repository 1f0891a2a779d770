package lifeproject

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abdoul12363/mdph/internal/access"
	"github.com/abdoul12363/mdph/internal/formdef"
	"github.com/abdoul12363/mdph/internal/layout"
)

// Rewriter turns raw wizard answers into one compact first-person text.
type Rewriter interface {
	Rewrite(ctx context.Context, answers formdef.Answers) (string, error)
}

// ErrNoGate is returned by GeneratePremium when no payment gate is configured.
var ErrNoGate = errors.New("no payment gate configured")

// Service generates life-project documents from wizard answers.
type Service struct {
	Composer *Composer
	Gate     access.Gate
	Rewriter Rewriter
	PDFPath  string
}

// PremiumResult is a paid document and the decision that unlocked it.
type PremiumResult struct {
	*Result
	Decision access.Decision
}

// Generate composes the free document: the four titled narrative blocks
// taken verbatim from the answers.
func (s *Service) Generate(ctx context.Context, answers formdef.Answers) (*Result, error) {
	family, given := NameFromAnswers(answers)
	return s.composer().Compose(ctx, Request{
		PDFPath:    s.PDFPath,
		FamilyName: family,
		GivenNames: given,
		Blocks:     BlocksFromAnswers(answers),
	})
}

// GeneratePremium composes the paid document. The payment must be
// authorized before the answers are rewritten into a single untitled
// block.
func (s *Service) GeneratePremium(ctx context.Context, paymentID string, answers formdef.Answers) (*PremiumResult, error) {
	if s.Gate == nil {
		return nil, ErrNoGate
	}
	decision, err := access.Check(ctx, s.Gate, paymentID)
	if err != nil {
		return nil, err
	}
	if s.Rewriter == nil {
		return nil, errors.New("no rewriter configured")
	}

	text, err := s.Rewriter.Rewrite(ctx, answers)
	if err != nil {
		return nil, fmt.Errorf("failed to rewrite life project: %w", err)
	}

	family, given := NameFromAnswers(answers)
	res, err := s.composer().Compose(ctx, Request{
		PDFPath:    s.PDFPath,
		FamilyName: family,
		GivenNames: given,
		Blocks:     []layout.Block{{Body: strings.TrimSpace(text)}},
	})
	if err != nil {
		return nil, err
	}
	return &PremiumResult{Result: res, Decision: decision}, nil
}

func (s *Service) composer() *Composer {
	if s.Composer == nil {
		return NewComposer()
	}
	return s.Composer
}
